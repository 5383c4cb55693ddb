package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/squadsvirtuais/api/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(config.LLMConfig{APIURL: srv.URL, APIKey: "sk-test", Model: "modelo-teste", Timeout: time.Second})
	require.NoError(t, err)
	return c
}

func TestGenerateStructure(t *testing.T) {
	var got chatRequest
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]string{"role": "assistant", "content": "```json\n{\"phases\":[{\"name\":\"Descoberta\"}]}\n```"},
			}},
		})
	})

	raw, err := c.GenerateStructure(t.Context(), Problem{Title: "Busca", Narrative: "Users can't find products"})
	require.NoError(t, err)
	require.JSONEq(t, `{"phases":[{"name":"Descoberta"}]}`, string(raw))
	require.Equal(t, "Bearer sk-test", auth)
	require.Equal(t, "modelo-teste", got.Model)
	require.Len(t, got.Messages, 2)
	require.Contains(t, got.Messages[1].Content, "Users can't find products")
	require.Equal(t, "modelo-teste", c.Model())
}

func TestGenerateStructureFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"rate limit"}}`))
		},
		"sem escolhas": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		},
		"conteúdo inválido": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"não sei"}}]}`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, handler)
			_, err := c.GenerateStructure(t.Context(), Problem{Narrative: "x"})
			require.Error(t, err)
		})
	}
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(config.LLMConfig{APIURL: "http://localhost"})
	require.Error(t, err)
}
