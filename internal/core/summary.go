package core

import "sort"

// Summary is the set of derived totals for one month record. All values are
// recomputed from the record on every call; nothing here is cached.
//
// FinalBalance is defined as salary income minus the sum of monthly expenses
// and avulso items. Shopping items spend against the benefit allowance and
// are intentionally excluded from it; TotalExpenses still counts all three
// expense-like collections.
type Summary struct {
	TotalIncome   Money
	SalaryIncome  Money
	BenefitIncome Money

	ExpensesTotal Money
	ShoppingTotal Money
	AvulsosTotal  Money
	TotalExpenses Money

	PaidExpenses Money
	FinalBalance Money
}

// Summarize computes the month's headline numbers.
func Summarize(r *MonthRecord) Summary {
	var s Summary
	for _, inc := range r.Incomes {
		s.TotalIncome = s.TotalIncome.Add(inc.Amount)
		switch inc.Source {
		case SourceSalary:
			s.SalaryIncome = s.SalaryIncome.Add(inc.Amount)
		case SourceBenefit:
			s.BenefitIncome = s.BenefitIncome.Add(inc.Amount)
		}
	}
	for _, e := range r.Expenses {
		s.ExpensesTotal = s.ExpensesTotal.Add(e.Amount)
		if e.Paid {
			s.PaidExpenses = s.PaidExpenses.Add(e.Amount)
		}
	}
	for _, it := range r.ShoppingItems {
		s.ShoppingTotal = s.ShoppingTotal.Add(it.Amount)
	}
	for _, it := range r.AvulsosItems {
		s.AvulsosTotal = s.AvulsosTotal.Add(it.Amount)
	}
	s.TotalExpenses = s.ExpensesTotal.Add(s.ShoppingTotal).Add(s.AvulsosTotal)
	s.FinalBalance = s.SalaryIncome.Sub(s.ExpensesTotal.Add(s.AvulsosTotal))
	return s
}

// PaidPercent returns paid/total as a whole percentage clamped to [0,100],
// for progress bars.
func PaidPercent(paid, total Money) int {
	if total.Cents <= 0 {
		return 0
	}
	pct := int((paid.Cents*100 + total.Cents/2) / total.Cents)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// CategoryAmount is a spend total for one category.
type CategoryAmount struct {
	Category string
	Amount   Money
}

// CategoryTotals groups spend by category across expenses, shopping and
// avulso items, sorted by amount descending.
func CategoryTotals(r *MonthRecord) []CategoryAmount {
	totals := map[string]int64{}
	add := func(category string, amount Money) {
		if category == "" {
			category = "outros"
		}
		totals[category] += amount.Cents
	}
	for _, e := range r.Expenses {
		add(e.Category, e.Amount)
	}
	for _, it := range r.ShoppingItems {
		add(it.Category, it.Amount)
	}
	for _, it := range r.AvulsosItems {
		add(it.Category, it.Amount)
	}
	out := make([]CategoryAmount, 0, len(totals))
	for cat, cents := range totals {
		out = append(out, CategoryAmount{Category: cat, Amount: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// GoalStatus is one goal evaluated against the month's per-category spend.
type GoalStatus struct {
	Goal      Goal
	Spent     Money
	Remaining Money
	Percent   int // clamped to [0,100] for display
	Over      bool
}

// GoalProgress evaluates every goal. Remaining = goal amount - category
// spend; a goal is over budget exactly when Remaining is negative.
func GoalProgress(r *MonthRecord) []GoalStatus {
	spent := map[string]int64{}
	for _, ca := range CategoryTotals(r) {
		spent[ca.Category] = ca.Amount.Cents
	}
	out := make([]GoalStatus, 0, len(r.Goals))
	for _, g := range r.Goals {
		s := Money{Cents: spent[g.Category]}
		remaining := g.Amount.Sub(s)
		out = append(out, GoalStatus{
			Goal:      g,
			Spent:     s,
			Remaining: remaining,
			Percent:   PaidPercent(s, g.Amount),
			Over:      remaining.Cents < 0,
		})
	}
	return out
}

// ExpenseHighlight is one entry of the assistant's top-expense list.
type ExpenseHighlight struct {
	Description string
	Category    string
	Amount      Money
}

// TopExpenses returns the n largest entries across expenses and avulso
// items, largest first.
func TopExpenses(r *MonthRecord, n int) []ExpenseHighlight {
	all := make([]ExpenseHighlight, 0, len(r.Expenses)+len(r.AvulsosItems))
	for _, e := range r.Expenses {
		all = append(all, ExpenseHighlight{Description: e.Description, Category: e.Category, Amount: e.Amount})
	}
	for _, a := range r.AvulsosItems {
		all = append(all, ExpenseHighlight{Description: a.Description, Category: a.Category, Amount: a.Amount})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Amount.Cents > all[j].Amount.Cents
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
