package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenAICompleteSendsSystemAndUser(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/chat/completions" || r.Header.Get("Authorization") != "Bearer sk-test" {
			http.Error(w, "bad request line", http.StatusBadRequest)
			return
		}
		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) != 2 ||
			req.Messages[0].Role != "system" || req.Messages[1].Content != "analyse this ride" {
			http.Error(w, "unexpected payload", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Solid tempo effort.\n"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	text, err := client.Complete(context.Background(), "You are a coach.", "analyse this ride")
	require.NoError(t, err)
	require.Equal(t, "Solid tempo effort.", text)
	require.EqualValues(t, 1, hits.Load())
}

func TestOpenAIDoesNotRetryFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	_, err := client.Complete(context.Background(), "", "hi")
	require.ErrorContains(t, err, "status 503")
	require.EqualValues(t, 1, hits.Load())
}

func TestOpenAIErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	_, err := client.Complete(context.Background(), "", "hi")
	require.ErrorContains(t, err, "model not found")
}

func TestOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{}, nil).Complete(context.Background(), "", "hi")
	require.Error(t, err)
}

func TestNewSelectsProvider(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, Config{}, nil)
	require.NoError(t, err)
	_, err = c.Complete(ctx, "", "hi")
	require.ErrorIs(t, err, ErrDisabled)

	c, err = New(ctx, Config{Provider: "openai", APIKey: "k", Model: "gpt-test"}, nil)
	require.NoError(t, err)
	require.IsType(t, &OpenAIClient{}, c)
	require.Equal(t, "gpt-test", c.(*OpenAIClient).cfg.Model)

	c, err = New(ctx, Config{Provider: "gemini", APIKey: "k"}, nil)
	require.NoError(t, err)
	require.IsType(t, &GeminiClient{}, c)

	_, err = New(ctx, Config{Provider: "gemini"}, nil)
	require.Error(t, err)

	_, err = New(ctx, Config{Provider: "claude"}, nil)
	require.ErrorContains(t, err, "unknown llm provider")
}
