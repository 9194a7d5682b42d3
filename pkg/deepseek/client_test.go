package deepseek

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

func TestChatCompletion(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    string
		wantStatus int
		wantID     string
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{
				"id": "cmpl-123",
				"model": "deepseek-chat",
				"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"prestador\":\"ACME\"}"}, "finish_reason": "stop"}],
				"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
			}`,
			wantID: "cmpl-123",
		},
		{
			name:   "accepted",
			status: http.StatusAccepted,
			body: `{
				"id": "cmpl-202",
				"model": "deepseek-chat",
				"choices": [{"index": 0, "message": {"role": "assistant", "content": "{}"}, "finish_reason": "stop"}]
			}`,
			wantID: "cmpl-202",
		},
		{
			name:       "redirect",
			status:     http.StatusMultipleChoices,
			body:       `moved`,
			wantErr:    "unexpected status 300",
			wantStatus: http.StatusMultipleChoices,
		},
		{
			name:       "rate_limit",
			status:     http.StatusTooManyRequests,
			body:       `{"error": "rate limit exceeded"}`,
			wantErr:    "unexpected status 429",
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{"error": "invalid api key"}`,
			wantErr:    "unexpected status 401",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "malformed_response",
			status:  http.StatusOK,
			body:    `{invalid json`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("test-key", WithBaseURL(srv.URL))
			resp, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
				Messages: []Message{{Role: "user", Content: "Hi"}},
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, resp)
				if tt.wantStatus != 0 {
					var se *StatusError
					require.True(t, errors.As(err, &se))
					assert.Equal(t, tt.wantStatus, se.StatusCode)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, resp.ID)
			require.Len(t, resp.Choices, 1)
			assert.Equal(t, `{"prestador":"ACME"}`, resp.Choices[0].Message.Content)
			assert.Equal(t, 15, resp.Usage.TotalTokens)
		})
	}
}

func TestChatCompletion_RequestBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))

		assert.Equal(t, "deepseek-chat", raw["model"])
		assert.Equal(t, float64(0), raw["temperature"])
		assert.Equal(t, map[string]any{"type": "json_object"}, raw["response_format"])
		assert.Len(t, raw["messages"], 2)

		_, _ = w.Write([]byte(`{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"{}"}}]}`))
	}))
	defer srv.Close()

	temp := 0.0
	client := NewClient("test-key", WithBaseURL(srv.URL+"/"))
	_, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages: []Message{
			{Role: "system", Content: "sys"},
			{Role: "user", Content: "doc"},
		},
		Temperature:    &temp,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	require.NoError(t, err)
}

func TestRequestModelOverridesDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "deepseek-reasoner", req.Model)
		_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithModel("ignored"))
	_, err := client.ChatCompletion(context.Background(), ChatCompletionRequest{Model: "deepseek-reasoner"})
	require.NoError(t, err)
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient("test-key", WithBaseURL(srv.URL)).ChatCompletion(ctx, ChatCompletionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send request")
}

func TestNewClient_Options(t *testing.T) {
	c := NewClient("my-key").(*httpClient)
	assert.Equal(t, "my-key", c.apiKey)
	assert.Equal(t, defaultBaseURL, c.baseURL)
	assert.Equal(t, defaultModel, c.model)
	assert.Equal(t, defaultTimeout, c.http.Timeout)

	c = NewClient("k", WithTimeout(5*time.Second), WithModel(""), WithBaseURL("")).(*httpClient)
	assert.Equal(t, 5*time.Second, c.http.Timeout)
	assert.Equal(t, defaultModel, c.model)
	assert.Equal(t, defaultBaseURL, c.baseURL)

	custom := &http.Client{}
	c = NewClient("k", WithHTTPClient(custom)).(*httpClient)
	assert.Same(t, custom, c.http)
}
