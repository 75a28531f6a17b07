package core

import "testing"

func summaryRecord() *MonthRecord {
	return &MonthRecord{
		DataVersion: DataVersion,
		Incomes: []Income{
			{ID: "i1", Description: "Salário", Amount: Money{Cents: 100000}, Source: SourceSalary, Paid: true},
			{ID: "i2", Description: "Benefício", Amount: Money{Cents: 20000}, Source: SourceBenefit, Paid: true},
		},
		Expenses: []Expense{
			{ID: "e1", Description: "Aluguel", Amount: Money{Cents: 30000}, Kind: FixedExpense, Category: "moradia", Paid: true},
			{ID: "e2", Description: "Luz", Amount: Money{Cents: 10000}, Kind: FixedExpense, Category: "moradia", Paid: false},
		},
		ShoppingItems: []ShoppingItem{
			{ID: "s1", Description: "Mercado", Amount: Money{Cents: 5000}, Paid: true, Category: ShoppingCategory},
		},
		AvulsosItems: []AvulsoItem{
			{ID: "a1", Description: "Correios", Amount: Money{Cents: 2000}, Paid: true, Category: "outros"},
		},
		Goals: []Goal{
			{ID: "g1", Category: "moradia", Amount: Money{Cents: 50000}},
			{ID: "g2", Category: ShoppingCategory, Amount: Money{Cents: 4000}},
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(summaryRecord())
	if s.TotalIncome.Cents != 120000 {
		t.Errorf("TotalIncome = %d", s.TotalIncome.Cents)
	}
	if s.SalaryIncome.Cents != 100000 {
		t.Errorf("SalaryIncome = %d", s.SalaryIncome.Cents)
	}
	if s.BenefitIncome.Cents != 20000 {
		t.Errorf("BenefitIncome = %d", s.BenefitIncome.Cents)
	}
	if s.ExpensesTotal.Cents != 40000 {
		t.Errorf("ExpensesTotal = %d", s.ExpensesTotal.Cents)
	}
	if s.TotalExpenses.Cents != 47000 {
		t.Errorf("TotalExpenses = %d", s.TotalExpenses.Cents)
	}
	if s.PaidExpenses.Cents != 30000 {
		t.Errorf("PaidExpenses = %d", s.PaidExpenses.Cents)
	}
	// Balance: salary 1000,00 - (expenses 400,00 + avulsos 20,00).
	if s.FinalBalance.Cents != 58000 {
		t.Errorf("FinalBalance = %d", s.FinalBalance.Cents)
	}
}

func TestPaidPercentClamped(t *testing.T) {
	tests := []struct {
		paid, total int64
		want        int
	}{
		{50, 100, 50},
		{0, 100, 0},
		{150, 100, 100}, // clamped high
		{-10, 100, 0},   // clamped low
		{10, 0, 0},      // zero total
	}
	for _, tt := range tests {
		got := PaidPercent(Money{Cents: tt.paid}, Money{Cents: tt.total})
		if got != tt.want {
			t.Errorf("PaidPercent(%d/%d) = %d, want %d", tt.paid, tt.total, got, tt.want)
		}
	}
}

func TestCategoryTotals(t *testing.T) {
	totals := CategoryTotals(summaryRecord())
	if len(totals) != 3 {
		t.Fatalf("categories = %d, want 3", len(totals))
	}
	if totals[0].Category != "moradia" || totals[0].Amount.Cents != 40000 {
		t.Errorf("top category = %+v", totals[0])
	}
	if totals[1].Category != ShoppingCategory || totals[1].Amount.Cents != 5000 {
		t.Errorf("second category = %+v", totals[1])
	}
}

func TestGoalProgress(t *testing.T) {
	// One goal of 500,00 for "moradia" against 400,00 spent there:
	// remaining 100,00, not over budget.
	r := &MonthRecord{
		Incomes:  []Income{{ID: "i", Description: "Salário", Amount: Money{Cents: 100000}, Source: SourceSalary}},
		Expenses: []Expense{{ID: "e", Description: "Aluguel", Amount: Money{Cents: 40000}, Kind: FixedExpense, Category: "moradia"}},
		Goals:    []Goal{{ID: "g", Category: "moradia", Amount: Money{Cents: 50000}}},
	}
	gs := GoalProgress(r)
	if len(gs) != 1 {
		t.Fatalf("goals = %d", len(gs))
	}
	g := gs[0]
	if g.Spent.Cents != 40000 || g.Remaining.Cents != 10000 || g.Over {
		t.Fatalf("goal status = %+v", g)
	}
	if g.Percent != 80 {
		t.Errorf("percent = %d, want 80", g.Percent)
	}

	// Over budget exactly when remaining < 0.
	r.Expenses = append(r.Expenses, Expense{ID: "e2", Description: "Reforma", Amount: Money{Cents: 20000}, Kind: VariableExpense, Category: "moradia"})
	g = GoalProgress(r)[0]
	if !g.Over || g.Remaining.Cents != -10000 {
		t.Fatalf("over-budget status = %+v", g)
	}
	if g.Percent != 100 {
		t.Errorf("over-budget percent = %d, want clamped 100", g.Percent)
	}
}

func TestTopExpenses(t *testing.T) {
	top := TopExpenses(summaryRecord(), 2)
	if len(top) != 2 {
		t.Fatalf("top = %d entries", len(top))
	}
	if top[0].Description != "Aluguel" || top[1].Description != "Luz" {
		t.Errorf("top order = %+v", top)
	}
	if top[0].Category != "moradia" {
		t.Errorf("top category = %q, want moradia", top[0].Category)
	}

	// Avulso entries keep their own category in the ranking.
	top = TopExpenses(summaryRecord(), 5)
	found := false
	for _, e := range top {
		if e.Description == "Correios" && e.Category == "outros" {
			found = true
		}
	}
	if !found {
		t.Errorf("avulso entry missing or without category: %+v", top)
	}
}
