package core

// Category is a display entry of the spending-category table.
type Category struct {
	Name  string
	Color string
}

// SpendingCategories maps category keys to display names and chart colors.
var SpendingCategories = map[string]Category{
	"moradia":      {Name: "Moradia", Color: "#f43f5e"},
	"alimentacao":  {Name: "Alimentação", Color: "#f97316"},
	"transporte":   {Name: "Transporte", Color: "#f59e0b"},
	"saude":        {Name: "Saúde", Color: "#84cc16"},
	"lazer":        {Name: "Lazer", Color: "#22c55e"},
	"educacao":     {Name: "Educação", Color: "#10b981"},
	"dividas":      {Name: "Dívidas", Color: "#ef4444"},
	"pessoal":      {Name: "Pessoal", Color: "#06b6d4"},
	"investimento": {Name: "Investimento", Color: "#0ea5e9"},
	"shopping":     {Name: "Compras (benefício)", Color: "#3b82f6"},
	"outros":       {Name: "Outros", Color: "#8b5cf6"},
}

// CategoryName returns the display name for a category key, falling back to
// "Outros" for unknown keys.
func CategoryName(key string) string {
	if c, ok := SpendingCategories[key]; ok {
		return c.Name
	}
	return "Outros"
}

// CategoryColor returns the chart color for a category key.
func CategoryColor(key string) string {
	if c, ok := SpendingCategories[key]; ok {
		return c.Color
	}
	return "#6b7280"
}

// SeedRecord is the built-in bootstrap dataset. It stands in for the
// previous month when rollover finds nothing to roll from, which guarantees
// the application always reaches a usable state.
func SeedRecord() *MonthRecord {
	inst := func(v int64) *int64 { return &v }
	return &MonthRecord{
		DataVersion: DataVersion,
		Incomes: []Income{
			{ID: "seed_inc_1", Description: "Salário titular", Amount: Money{Cents: 334992}, Source: SourceSalary, Paid: true},
			{ID: "seed_inc_2", Description: "Salário cônjuge", Amount: Money{Cents: 334992}, Source: SourceSalary, Paid: true},
			{ID: "seed_inc_3", Description: "Benefício alimentação", Amount: Money{Cents: 65000}, Source: SourceBenefit, Paid: true},
		},
		Expenses: []Expense{
			{ID: "seed_exp_1", Description: "Aluguel", Amount: Money{Cents: 130000}, Kind: FixedExpense, Category: "moradia", Paid: false, Cyclic: true, DueDate: NewDate(2025, 11, 3), Current: inst(10), Total: inst(12)},
			{ID: "seed_exp_2", Description: "Seguro do carro", Amount: Money{Cents: 14290}, Kind: FixedExpense, Category: "transporte", Paid: false, Cyclic: true, DueDate: NewDate(2025, 11, 3), Current: inst(11), Total: inst(12)},
			{ID: "seed_exp_3", Description: "Reserva para viagem", Amount: Money{Cents: 100000}, Kind: FixedExpense, Category: "investimento", Paid: false, Cyclic: false, DueDate: NewDate(2025, 10, 31), Current: inst(2), Total: inst(5)},
		},
		Goals: []Goal{
			{ID: "seed_goal_1", Category: "shopping", Amount: Money{Cents: 90000}},
			{ID: "seed_goal_2", Category: "moradia", Amount: Money{Cents: 220000}},
		},
		BankAccounts: []BankAccount{
			{ID: "seed_acc_1", Name: "Conta Principal", Balance: Money{Cents: 0}},
			{ID: "seed_acc_2", Name: "Poupança", Balance: Money{Cents: 0}},
		},
	}
}
