// Package assistant answers questions about the current month through the
// Gemini REST API. Failures never surface as errors to the user, only as
// canned Portuguese fallback messages.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"financas/internal/core"
)

const (
	defaultModel   = "gemini-2.5-flash"
	defaultBaseURL = "https://generativelanguage.googleapis.com"

	// MsgNotConfigured is returned when no API key is set.
	MsgNotConfigured = "O serviço de IA não está configurado. Verifique a chave de API."
	// MsgFailure is returned when the API call fails for any reason.
	MsgFailure = "Desculpe, ocorreu um erro ao tentar analisar suas finanças. Tente novamente mais tarde."
)

const persona = "Você é um assistente financeiro pessoal. Responda em português, " +
	"de forma curta e direta, usando apenas os dados do resumo abaixo. " +
	"Não invente valores que não estejam no resumo."

type Client struct {
	apiKey  string
	model   string
	baseURL string
	hc      *http.Client
	logger  *slog.Logger
}

func New(apiKey, model string, logger *slog.Logger) *Client {
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		hc:      &http.Client{Timeout: 30 * time.Second},
		logger:  logger.With("component", "assistant"),
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Ask answers a question about the given month. The record is condensed into
// a summary so item-level noise never reaches the model.
func (c *Client) Ask(ctx context.Context, rec *core.MonthRecord, key core.MonthKey, question string) string {
	if !c.Configured() {
		return MsgNotConfigured
	}
	if rec == nil {
		return MsgFailure
	}

	prompt := persona + "\n\n" + BuildContext(rec, key) + "\n\nPergunta: " + question
	answer, err := c.generate(ctx, prompt)
	if err != nil {
		c.logger.Error("assistant request failed", "month", key.String(), "error", err)
		return MsgFailure
	}
	return answer
}

// BuildContext renders the month summary handed to the model: totals, final
// balance and the five largest expenses.
func BuildContext(rec *core.MonthRecord, key core.MonthKey) string {
	sum := core.Summarize(rec)
	var b strings.Builder
	fmt.Fprintf(&b, "Resumo de %s:\n", key.Label())
	fmt.Fprintf(&b, "- Receita Total: %s\n", sum.TotalIncome.Format())
	fmt.Fprintf(&b, "- Despesa Total: %s\n", sum.TotalExpenses.Format())
	fmt.Fprintf(&b, "- Saldo Final: %s\n", sum.FinalBalance.Format())

	top := core.TopExpenses(rec, 5)
	if len(top) > 0 {
		b.WriteString("Maiores despesas:\n")
		for i, e := range top {
			fmt.Fprintf(&b, "%d. %s (%s): %s\n", i+1, e.Description, e.Category, e.Amount.Format())
		}
	}
	return b.String()
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response")
	}

	var answer strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		answer.WriteString(p.Text)
	}
	return strings.TrimSpace(answer.String()), nil
}
