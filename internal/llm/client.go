// Package llm conversa com um provedor compatível com a API de chat completions da OpenAI.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/squadsvirtuais/api/internal/config"
)

// Client gera propostas de estrutura a partir do problema da squad.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
}

// New valida a configuração e monta o cliente.
func New(cfg config.LLMConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm: api key obrigatória")
	}
	if strings.TrimSpace(cfg.APIURL) == "" {
		return nil, errors.New("llm: url obrigatória")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     strings.TrimSpace(cfg.APIURL),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}, nil
}

// Model identifica o modelo usado, gravado junto com a proposta.
func (c *Client) Model() string {
	return c.model
}

// Problem é o contexto enviado ao modelo.
type Problem struct {
	Title          string   `json:"title"`
	Narrative      string   `json:"narrative"`
	SuccessMetrics []string `json:"success_metrics"`
	Constraints    []string `json:"constraints"`
	Assumptions    []string `json:"assumptions"`
	OpenQuestions  []string `json:"open_questions"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateStructure devolve o JSON da proposta produzido pelo modelo, sem interpretá-lo.
func (c *Client) GenerateStructure(ctx context.Context, p Problem) (json.RawMessage, error) {
	problem, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(problem)},
		},
		Temperature:    0.3,
		ResponseFormat: map[string]any{"type": "json_object"},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm: requisição falhou: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("llm: status %d: resposta inválida", resp.StatusCode)
	}
	if resp.StatusCode >= 300 {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return nil, fmt.Errorf("llm: status %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return nil, fmt.Errorf("llm: status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("llm: resposta sem conteúdo")
	}

	content := stripFence(parsed.Choices[0].Message.Content)
	if !json.Valid([]byte(content)) {
		return nil, errors.New("llm: conteúdo não é JSON")
	}
	return json.RawMessage(content), nil
}

// stripFence remove blocos ```json ... ``` que alguns modelos ainda devolvem.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

const systemPrompt = `Você é um especialista em descoberta de produto e desenho de times multidisciplinares.
A partir do problema de negócio recebido em JSON, proponha a estrutura de uma squad virtual.
Responda apenas com um objeto JSON com as chaves:
- decision_context, problem_maturity, governance, execution_model, validation_strategy, readiness_assessment:
  objetos {"summary": string, "details": [string]}
- phases: [{"name": string, "description": string, "objectives": [string]}]
- roles: [{"code": string em snake_case, "label": string, "description": string, "responsibilities": [string]}]
- personas: [{"name": string, "type": string, "focus": string, "goals": [string], "pain_points": [string], "behaviors": [string]}]
- critical_unknowns: [{"question": string, "impact": string}]
- justifications: objeto com texto livre por chave
- uncertainties: [string]
Escreva em português do Brasil.`
