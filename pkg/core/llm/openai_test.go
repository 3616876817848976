package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProvider_GenerateResponse(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"time_horizon_months\":6}"}}]}`))
	}))
	defer srv.Close()

	p := &OpenAIProvider{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"}
	out, err := p.GenerateResponse(context.Background(), "6 month plan", "Reply in JSON.", nil)
	require.NoError(t, err)

	assert.Equal(t, `{"time_horizon_months":6}`, out)
	assert.Equal(t, defaultOpenAIModel, got.Model)
	assert.Equal(t, 0.1, got.Temperature)
	assert.Equal(t, 1000, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "6 month plan", got.Messages[1].Content)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestOpenAIProvider_Errors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := (&OpenAIProvider{}).GenerateResponse(context.Background(), "q", "", nil)
		assert.True(t, errors.Is(err, ErrMissingAPIKey))
	})

	t.Run("non-200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := (&OpenAIProvider{APIKey: "k", BaseURL: srv.URL}).GenerateResponse(context.Background(), "q", "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status=429")
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		_, err := (&OpenAIProvider{APIKey: "k", BaseURL: srv.URL}).GenerateResponse(context.Background(), "q", "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OPENAI_NO_CHOICES")
	})

	t.Run("context deadline", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := (&OpenAIProvider{APIKey: "k", BaseURL: srv.URL}).GenerateResponse(ctx, "q", "", nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

func TestStaticProvider(t *testing.T) {
	out, err := (&StaticProvider{Response: "ok"}).GenerateResponse(context.Background(), "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	_, err = NewOfflineProvider().GenerateResponse(context.Background(), "", "", nil)
	assert.ErrorIs(t, err, ErrOffline)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&StaticProvider{Response: "ok"}).GenerateResponse(ctx, "", "", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGeminiProvider_MissingKey(t *testing.T) {
	_, err := (&GeminiProvider{}).GenerateResponse(context.Background(), "q", "", nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
