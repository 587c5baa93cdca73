package chat

import "encoding/json"

// Request is the body of POST /chat. The last entry of Messages is the active user turn.
//
// UID is accepted for compatibility with existing clients. There is no session store, so it
// only shows up in logs.
type Request struct {
	Messages []Message `json:"messages"`
	UID      string    `json:"uid"`
	History  []Message `json:"history"`
}

// UnmarshalJSON applies the default uid and normalises a missing history to an empty slice.
func (r *Request) UnmarshalJSON(data []byte) error {
	type alias Request
	decoded := alias{UID: DefaultUID}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.UID == "" {
		decoded.UID = DefaultUID
	}
	if decoded.History == nil {
		decoded.History = []Message{}
	}
	*r = Request(decoded)
	return nil
}

// Utterance returns the content of the active user turn.
func (r Request) Utterance() (string, bool) {
	if len(r.Messages) == 0 {
		return "", false
	}
	return r.Messages[len(r.Messages)-1].Content, true
}

// Response is the fixed reply contract of POST /chat.
type Response struct {
	Response string `json:"response"`
	Emotion  string `json:"emotion"`
}
