package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVeniceService_Interpret(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req veniceChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "a pint of your finest", req.Messages[1].Content)
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_schema", req.ResponseFormat.Type)
		assert.True(t, req.ResponseFormat.JSONSchema.Strict)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{
				"message": {
					"role": "assistant",
					"content": "{\"action\":\"buy\",\"target\":\"ale\",\"args\":{\"qty\":\"1\"},\"confidence\":0.93}"
				},
				"finish_reason": "stop"
			}]
		}`))
	}))
	defer srv.Close()

	svc := NewVeniceService("test-key", "test-model", srv.URL)
	cand, err := svc.Interpret(context.Background(), "a pint of your finest")
	require.NoError(t, err)
	assert.Equal(t, "buy", cand.Action)
	assert.Equal(t, "ale", cand.Target)
	assert.Equal(t, "1", cand.Args["qty"])
	assert.Equal(t, 0.93, cand.Confidence)
}

func TestVeniceService_InterpretErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"http error", http.StatusInternalServerError, `boom`, "status 500"},
		{"api error", http.StatusOK, `{"error":{"message":"model overloaded"}}`, "model overloaded"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
		{"malformed content", http.StatusOK, `{"choices":[{"message":{"content":"not json"}}]}`, "failed to parse candidate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			svc := NewVeniceService("test-key", "test-model", srv.URL)
			_, err := svc.Interpret(context.Background(), "buy ale")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVeniceService_InterpretHonorsContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewVeniceService("test-key", "test-model", srv.URL)
	_, err := svc.Interpret(ctx, "buy ale")
	assert.Error(t, err)
}

func TestCandidateSchema_ClosedActionSet(t *testing.T) {
	schema := candidateSchema()
	props := schema["properties"].(map[string]interface{})
	action := props["action"].(map[string]interface{})

	enum := action["enum"].([]string)
	assert.Contains(t, enum, "buy")
	assert.Contains(t, enum, "unknown")
	assert.NotContains(t, enum, "pirouette")
}

func TestMockInterpreter(t *testing.T) {
	m := NewMockInterpreter()

	cand, err := m.Interpret(context.Background(), "talk to greta")
	require.NoError(t, err)
	assert.Equal(t, "talk", cand.Action)
	assert.Equal(t, "greta", cand.Target)
	assert.Equal(t, []string{"talk to greta"}, m.Calls())

	m.SetError(assert.AnError)
	_, err = m.Interpret(context.Background(), "look")
	assert.Error(t, err)

	m.Reset()
	assert.Empty(t, m.Calls())
}
