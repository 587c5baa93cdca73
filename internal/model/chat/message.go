package chat

import "encoding/json"

const (
	// DefaultEmotion is assumed for turns that arrive without an emotion tag.
	DefaultEmotion = "neutral"
	// DefaultUID is assumed when the client does not identify itself.
	DefaultUID = "default"
)

// Message is one conversation turn supplied by the client. It lives for a single request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Emotion string `json:"emotion"`
}

// UnmarshalJSON fills in the default emotion for turns that omit it.
func (m *Message) UnmarshalJSON(data []byte) error {
	type alias Message
	decoded := alias{Emotion: DefaultEmotion}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.Emotion == "" {
		decoded.Emotion = DefaultEmotion
	}
	*m = Message(decoded)
	return nil
}
