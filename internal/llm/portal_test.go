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

func TestNewPortalClient_RequiresCredential(t *testing.T) {
	_, err := NewPortalClient("http://example.com", "")
	assert.Error(t, err)

	_, err = NewPortalClient("", "key")
	assert.Error(t, err)

	client, err := NewPortalClient("http://example.com/", "key")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/v1/chat/completions", client.endpoint)
}

func TestChatCompletion_Success(t *testing.T) {
	var gotAuth string
	var gotPayload chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"is_valid": true}`}},
			},
		})
	}))
	defer srv.Close()

	client, err := NewPortalClient(srv.URL, "secret")
	require.NoError(t, err)

	content, err := client.ChatCompletion(context.Background(), Request{
		Model: "gpt-4o-mini",
		Messages: []Message{
			{Role: "system", Content: "validate"},
			{Role: "user", Content: "resume text"},
		},
		Temperature: 0.1,
		MaxTokens:   2000,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"is_valid": true}`, content)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotPayload.Model)
	assert.Equal(t, 0.1, gotPayload.Temperature)
	assert.Equal(t, 2000, gotPayload.MaxTokens)
	require.Len(t, gotPayload.Messages, 2)
	assert.Equal(t, "system", gotPayload.Messages[0].Role)
}

func TestChatCompletion_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewPortalClient(srv.URL, "secret")
	require.NoError(t, err)

	_, err = client.ChatCompletion(context.Background(), Request{Model: "m"})
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
}

func TestChatCompletion_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	client, err := NewPortalClient(srv.URL, "secret")
	require.NoError(t, err)

	_, err = client.ChatCompletion(context.Background(), Request{Model: "m"})
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
}

func TestChatCompletion_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	client, err := NewPortalClient(srv.URL, "secret")
	require.NoError(t, err)

	_, err = client.ChatCompletion(context.Background(), Request{
		Model:   "m",
		Timeout: 20 * time.Millisecond,
	})
	require.Error(t, err)

	var transport *TransportError
	assert.True(t, errors.As(err, &transport))
}

func TestChatCompletion_UnreachableEndpoint(t *testing.T) {
	client, err := NewPortalClient("http://127.0.0.1:1", "secret")
	require.NoError(t, err)

	_, err = client.ChatCompletion(context.Background(), Request{Model: "m"})
	var transport *TransportError
	require.True(t, errors.As(err, &transport))
}
