// Package notify avisa canais externos sobre decisões registradas. Falhas nunca
// interrompem a operação que gerou o aviso.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Notifier recebe eventos já confirmados no banco.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

// Message é um evento legível por humanos.
type Message struct {
	Title string
	Text  string
	Squad string
}

// Slack publica mensagens em um incoming webhook.
type Slack struct {
	webhookURL string
	client     *http.Client
}

// NewSlack devolve nil quando não há webhook configurado; o nil é um no-op válido.
func NewSlack(webhookURL string) *Slack {
	if webhookURL == "" {
		return nil
	}
	return &Slack{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *Slack) Notify(ctx context.Context, msg Message) {
	if s == nil {
		return
	}
	if err := s.send(ctx, msg); err != nil {
		log.Warn().Err(err).Str("component", "notify").Str("title", msg.Title).Msg("falha ao notificar slack")
	}
}

func (s *Slack) send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(map[string]any{"text": format(msg)})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack: status %d", resp.StatusCode)
	}
	return nil
}

func format(msg Message) string {
	text := ":white_check_mark: *" + msg.Title + "*"
	if msg.Squad != "" {
		text += " (" + msg.Squad + ")"
	}
	if msg.Text != "" {
		text += "\n" + msg.Text
	}
	return text
}

// Nop descarta as mensagens.
type Nop struct{}

func (Nop) Notify(context.Context, Message) {}
