package emotion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"

	analysis "github.com/zhouzirui/feelbetter/backend/internal/analysis/emotion"
	"github.com/zhouzirui/feelbetter/backend/internal/config"
	"github.com/zhouzirui/feelbetter/backend/internal/service/ai"
)

type hfServer struct {
	*httptest.Server
	hits  atomic.Int32
	input atomic.Value
}

func newHFServer(t *testing.T, status int, body string) *hfServer {
	t.Helper()
	s := &hfServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		if r.URL.Path != "/"+config.DefaultEmotionModel || r.Header.Get("Authorization") != "Bearer hf-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req classificationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			s.input.Store(req.Inputs)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func hfConfig(baseURL, apiKey string) config.EmotionConfig {
	return config.EmotionConfig{
		Enabled:  true,
		Provider: config.EmotionHuggingFace,
		APIKey:   apiKey,
		Model:    config.DefaultEmotionModel,
		BaseURL:  baseURL,
		Timeout:  time.Second,
	}
}

func TestClassifyPicksHighestScore(t *testing.T) {
	srv := newHFServer(t, http.StatusOK,
		`[[{"label":"joy","score":0.91},{"label":"surprise","score":0.05},{"label":"neutral","score":0.04}]]`)
	svc := NewService(hfConfig(srv.URL, "hf-test"), nil)

	require.Equal(t, analysis.Joy, svc.Classify(context.Background(), "I'm so happy today!"))
	require.Equal(t, "I'm so happy today!", srv.input.Load())
	require.EqualValues(t, 1, srv.hits.Load())
}

func TestClassifyAcceptsFlatResponse(t *testing.T) {
	srv := newHFServer(t, http.StatusOK, `[{"label":"neutral","score":0.1},{"label":"ANGER","score":0.8}]`)
	svc := NewService(hfConfig(srv.URL, "hf-test"), nil)

	require.Equal(t, analysis.Anger, svc.Classify(context.Background(), "This makes me really angry"))
}

func TestClassifyWithoutCredentialMakesNoCalls(t *testing.T) {
	srv := newHFServer(t, http.StatusOK, `[[{"label":"joy","score":1}]]`)
	svc := NewService(hfConfig(srv.URL, ""), nil)

	for _, text := range []string{"I'm so happy today!", "This makes me really angry", ""} {
		require.Equal(t, analysis.Neutral, svc.Classify(context.Background(), text))
	}
	require.EqualValues(t, 0, srv.hits.Load())
	require.False(t, svc.Enabled())
}

func TestClassifyDisabledMakesNoCalls(t *testing.T) {
	srv := newHFServer(t, http.StatusOK, `[[{"label":"joy","score":1}]]`)
	cfg := hfConfig(srv.URL, "hf-test")
	cfg.Enabled = false
	svc := NewService(cfg, nil)

	require.Equal(t, analysis.Neutral, svc.Classify(context.Background(), "I'm so happy today!"))
	require.EqualValues(t, 0, srv.hits.Load())
}

func TestClassifyFallsBackToNeutral(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusServiceUnavailable, `{"error":"Model is currently loading"}`},
		{"malformed json", http.StatusOK, `{"label":`},
		{"empty candidates", http.StatusOK, `[]`},
		{"empty batch", http.StatusOK, `[[]]`},
		{"label outside set", http.StatusOK, `[[{"label":"optimism","score":0.99}]]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newHFServer(t, tc.status, tc.body)
			svc := NewService(hfConfig(srv.URL, "hf-test"), nil)
			require.Equal(t, analysis.Neutral, svc.Classify(context.Background(), "whatever"))
		})
	}
}

func TestClassifyNetworkErrorIsNeutral(t *testing.T) {
	srv := newHFServer(t, http.StatusOK, `[]`)
	url := srv.URL
	srv.Close()

	svc := NewService(hfConfig(url, "hf-test"), nil)
	require.Equal(t, analysis.Neutral, svc.Classify(context.Background(), "hello"))
}

func TestClassifySlowProviderTimesOutToNeutral(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte(`[[{"label":"joy","score":1}]]`))
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	cfg := hfConfig(srv.URL, "hf-test")
	cfg.Timeout = 50 * time.Millisecond
	svc := NewService(cfg, nil)

	start := time.Now()
	label := svc.Classify(context.Background(), "I'm so happy today!")
	elapsed := time.Since(start)

	require.Equal(t, analysis.Neutral, label)
	require.Less(t, elapsed, time.Second)
}

func TestHuggingFaceClientStatusError(t *testing.T) {
	srv := newHFServer(t, http.StatusTooManyRequests, `rate limited`)
	client := NewHuggingFaceClient("hf-test", config.DefaultEmotionModel, srv.URL+"/")

	_, err := client.TextClassification(context.Background(), "hi")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	require.Equal(t, "rate limited", statusErr.Body)
}

func TestTopCandidate(t *testing.T) {
	_, ok := topCandidate(nil)
	require.False(t, ok)

	top, ok := topCandidate([]Candidate{{"fear", 0.4}, {"sadness", 0.4}, {"joy", 0.2}})
	require.True(t, ok)
	require.Equal(t, "fear", top.Label)
}

// ---------------------------------------------------------------------------
// llm and lexicon backends
// ---------------------------------------------------------------------------

type stubGenerator struct {
	reply ai.Reply
	err   error
	calls int
	last  []*schema.Message
}

func (s *stubGenerator) Generate(_ context.Context, messages []*schema.Message) (ai.Reply, error) {
	s.calls++
	s.last = messages
	return s.reply, s.err
}

func llmConfig() config.EmotionConfig {
	return config.EmotionConfig{Enabled: true, Provider: config.EmotionLLM, Timeout: time.Second}
}

func TestLLMBackendParsesOneWordReply(t *testing.T) {
	gen := &stubGenerator{reply: ai.FragmentSequence{ai.KeyedFragment{"type": "text", "text": "Sadness."}}}
	svc := NewService(llmConfig(), gen)

	require.Equal(t, analysis.Sadness, svc.Classify(context.Background(), "I'm feeling sad and lonely"))
	require.Equal(t, 1, gen.calls)
	require.Len(t, gen.last, 1)
	require.Contains(t, gen.last[0].Content, "I'm feeling sad and lonely")
}

func TestLLMBackendFailuresAreNeutral(t *testing.T) {
	svc := NewService(llmConfig(), &stubGenerator{err: errors.New("boom")})
	require.Equal(t, analysis.Neutral, svc.Classify(context.Background(), "hi"))

	svc = NewService(llmConfig(), &stubGenerator{reply: ai.PlainText("excited")})
	require.Equal(t, analysis.Neutral, svc.Classify(context.Background(), "hi"))
}

func TestLLMBackendWithoutGeneratorIsNeutral(t *testing.T) {
	svc := NewService(llmConfig(), nil)
	require.False(t, svc.Enabled())
	require.Equal(t, analysis.Neutral, svc.Classify(context.Background(), "I'm so happy today!"))
}

func TestLexiconBackend(t *testing.T) {
	svc := NewService(config.EmotionConfig{Enabled: true, Provider: config.EmotionLexicon}, nil)
	require.Equal(t, analysis.Fear, svc.Classify(context.Background(), "I'm worried about the exam"))
}

func TestParseClassifierOutput(t *testing.T) {
	require.Equal(t, "joy", parseClassifierOutput("  Joy!\n"))
	require.Equal(t, "anger", parseClassifierOutput("\"ANGER\" because..."))
	require.Equal(t, "", parseClassifierOutput("..."))
}
