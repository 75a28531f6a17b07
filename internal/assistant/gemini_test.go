package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"financas/internal/core"
)

func testRecord() *core.MonthRecord {
	return &core.MonthRecord{
		DataVersion: core.DataVersion,
		Incomes: []core.Income{
			{ID: "i1", Description: "Salario", Amount: core.Money{Cents: 300000}, Source: core.SourceSalary},
		},
		Expenses: []core.Expense{
			{ID: "e1", Description: "Aluguel", Amount: core.Money{Cents: 120000}, Kind: core.FixedExpense, Category: "moradia"},
			{ID: "e2", Description: "Mercado", Amount: core.Money{Cents: 60000}, Kind: core.VariableExpense, Category: "alimentacao"},
		},
	}
}

func TestAskNotConfigured(t *testing.T) {
	c := New("", "", nil)
	got := c.Ask(context.Background(), testRecord(), core.MonthKey("2025-02"), "Como estou?")
	if got != MsgNotConfigured {
		t.Errorf("got %q, want MsgNotConfigured", got)
	}
}

func TestAskReturnsModelAnswer(t *testing.T) {
	var gotPath, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}
		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []struct {
				Content content `json:"content"`
			}{{Content: content{Parts: []part{{Text: "Seu saldo está positivo."}}}}},
		})
	}))
	defer srv.Close()

	c := New("test-key", "", nil)
	c.baseURL = srv.URL
	c.hc = srv.Client()

	got := c.Ask(context.Background(), testRecord(), core.MonthKey("2025-02"), "Como estou?")
	if got != "Seu saldo está positivo." {
		t.Errorf("answer = %q", got)
	}
	if gotPath != "/v1beta/models/gemini-2.5-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	for _, want := range []string{"Receita Total", "Despesa Total", "Saldo Final", "Aluguel", "Pergunta: Como estou?"} {
		if !strings.Contains(gotPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestAskFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New("test-key", "", nil)
	c.baseURL = srv.URL
	c.hc = srv.Client()

	got := c.Ask(context.Background(), testRecord(), core.MonthKey("2025-02"), "Como estou?")
	if got != MsgFailure {
		t.Errorf("got %q, want MsgFailure", got)
	}
}

func TestBuildContext(t *testing.T) {
	ctx := BuildContext(testRecord(), core.MonthKey("2025-02"))
	for _, want := range []string{
		"Receita Total: R$ 3.000,00",
		"Despesa Total: R$ 1.800,00",
		"1. Aluguel (moradia): R$ 1.200,00",
		"2. Mercado (alimentacao): R$ 600,00",
	} {
		if !strings.Contains(ctx, want) {
			t.Errorf("context missing %q:\n%s", want, ctx)
		}
	}
}
