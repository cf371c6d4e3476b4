package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiClient_Generate(t *testing.T) {
	tests := []struct {
		name    string
		call    func(c *GeminiClient) (string, error)
		handler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		want    string
		wantErr error
	}{
		{
			name: "assessment questions",
			call: func(c *GeminiClient) (string, error) {
				return c.AssessmentQuestions(context.Background(), "Graph theory", "BFS vs DFS")
			},
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
				assert.Equal(t, "secret", r.URL.Query().Get("key"))

				var body generateRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				require.Len(t, body.Contents, 1)
				require.Len(t, body.Contents[0].Parts, 1)
				assert.Contains(t, body.Contents[0].Parts[0].Text, "Graph theory")
				assert.Contains(t, body.Contents[0].Parts[0].Text, "BFS vs DFS")

				_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"1. Why"},{"text":" BFS?\n"}]}}]}`))
			},
			want: "1. Why BFS?",
		},
		{
			name: "tutor answer",
			call: func(c *GeminiClient) (string, error) {
				return c.TutorAnswer(context.Background(), "Go", "What is a goroutine?")
			},
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				var body generateRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Contains(t, body.Contents[0].Parts[0].Text, "What is a goroutine?")
				_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"A lightweight thread."}]}}]}`))
			},
			want: "A lightweight thread.",
		},
		{
			name: "upstream error status",
			call: func(c *GeminiClient) (string, error) {
				return c.TutorAnswer(context.Background(), "", "Why?")
			},
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
			},
			wantErr: ErrGeneration,
		},
		{
			name: "no candidates",
			call: func(c *GeminiClient) (string, error) {
				return c.TutorAnswer(context.Background(), "", "Why?")
			},
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"candidates":[]}`))
			},
			wantErr: ErrGeneration,
		},
		{
			name: "blank text",
			call: func(c *GeminiClient) (string, error) {
				return c.AssessmentQuestions(context.Background(), "Go", "")
			},
			handler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`))
			},
			wantErr: ErrGeneration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				tt.handler(t, w, r)
			}))
			defer server.Close()

			client := NewGeminiClient(GeminiConfig{APIKey: "secret", Model: "test-model", BaseURL: server.URL, Timeout: 5 * time.Second})
			got, err := tt.call(client)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGeminiClient_NotConfigured(t *testing.T) {
	client := NewGeminiClient(GeminiConfig{Model: "test-model"})
	_, err := client.TutorAnswer(context.Background(), "Go", "Why?")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGeminiClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewGeminiClient(GeminiConfig{APIKey: "k", Model: "m", BaseURL: server.URL, Timeout: 20 * time.Millisecond})
	_, err := client.TutorAnswer(context.Background(), "", "Why?")
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestPrompts(t *testing.T) {
	assert.NotContains(t, assessmentPrompt("Go", " "), "notes")
	assert.Contains(t, assessmentPrompt("Go", "channels"), "channels")
	assert.NotContains(t, tutorPrompt("", "Why?"), "Topic:")
	assert.Contains(t, tutorPrompt("Go", "Why?"), "Topic: Go")
}
