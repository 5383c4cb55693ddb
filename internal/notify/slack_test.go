package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlackPostsFormattedText(t *testing.T) {
	received := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		received <- payload["text"]
	}))
	defer srv.Close()

	NewSlack(srv.URL).Notify(t.Context(), Message{Title: "Fase aprovada", Text: "Descoberta", Squad: "Busca"})
	require.Equal(t, ":white_check_mark: *Fase aprovada* (Busca)\nDescoberta", <-received)
}

func TestNilSlackIsNoop(t *testing.T) {
	s := NewSlack("")
	require.Nil(t, s)
	s.Notify(t.Context(), Message{Title: "x"})

	var n Notifier = s
	n.Notify(t.Context(), Message{Title: "y"})
}

func TestSlackFailureIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	NewSlack(srv.URL).Notify(t.Context(), Message{Title: "x"})
}
