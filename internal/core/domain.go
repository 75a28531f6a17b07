package core

import (
	"errors"
	"fmt"
	"strings"
)

// DataVersion tags every persisted month document. It is bookkeeping for
// forward compatibility only; older documents are accepted as-is and
// re-tagged on the next write.
const DataVersion = "v2"

const (
	FixedExpense    ExpenseKind = "fixed"
	VariableExpense ExpenseKind = "variable"
)

const (
	SourceSalary  IncomeSource = "salary"
	SourceBenefit IncomeSource = "benefit"
	SourceOther   IncomeSource = "other"
)

type (
	// ExpenseKind splits expenses into fixed and variable.
	ExpenseKind string

	// IncomeSource classifies an income for the balance math. It replaces
	// the description-substring matching the app previously relied on.
	IncomeSource string

	Income struct {
		ID          string       `json:"id"`
		Description string       `json:"description"`
		Amount      Money        `json:"amount"`
		Source      IncomeSource `json:"source"`
		Paid        bool         `json:"paid"`
	}

	Expense struct {
		ID          string      `json:"id"`
		Description string      `json:"description"`
		Amount      Money       `json:"amount"`
		Kind        ExpenseKind `json:"type"`
		Category    string      `json:"category"`
		Paid        bool        `json:"paid"`
		Cyclic      bool        `json:"cyclic"`
		DueDate     Date        `json:"dueDate"`
		PaidDate    Date        `json:"paidDate"`
		// Installment counters. Total nil means no cap; Current nil is
		// treated as zero when advancing.
		Current *int64 `json:"current,omitempty"`
		Total   *int64 `json:"total,omitempty"`
	}

	// ShoppingItem is an immediate one-off spend against the benefit
	// allowance; it is created already paid.
	ShoppingItem struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
		Paid        bool   `json:"paid"`
		Category    string `json:"category"`
		PaidDate    Date   `json:"paidDate"`
	}

	// AvulsoItem is an immediate one-off spend in an arbitrary category;
	// like ShoppingItem it is created already paid.
	AvulsoItem struct {
		ID          string `json:"id"`
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
		Paid        bool   `json:"paid"`
		Category    string `json:"category"`
		PaidDate    Date   `json:"paidDate"`
	}

	// Goal is a monthly spending ceiling for one category.
	Goal struct {
		ID       string `json:"id"`
		Category string `json:"category"`
		Amount   Money  `json:"amount"`
	}

	BankAccount struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Balance Money  `json:"balance"`
	}

	// MonthRecord is the full document for one calendar month. Records are
	// independent documents keyed "YYYY-MM", not deltas.
	MonthRecord struct {
		DataVersion   string         `json:"dataVersion"`
		Incomes       []Income       `json:"incomes"`
		Expenses      []Expense      `json:"expenses"`
		ShoppingItems []ShoppingItem `json:"shoppingItems"`
		AvulsosItems  []AvulsoItem   `json:"avulsosItems"`
		Goals         []Goal         `json:"goals"`
		BankAccounts  []BankAccount  `json:"bankAccounts"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrUnknownKind      = errors.New("unknown item kind")
	ErrKindMismatch     = errors.New("item type does not match kind")
	ErrNotPayable       = errors.New("item kind has no paid flag")
)

// ShoppingCategory is the fixed category of every shopping item.
const ShoppingCategory = "shopping"

func (k ExpenseKind) IsValid() bool {
	return k == FixedExpense || k == VariableExpense
}

func (s IncomeSource) IsValid() bool {
	return s == SourceSalary || s == SourceBenefit || s == SourceOther
}

func validateDescription(desc string) error {
	if len(strings.TrimSpace(desc)) == 0 {
		return ErrEmptyDescription
	}
	if len(desc) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (i Income) Validate() error {
	if err := validateDescription(i.Description); err != nil {
		return err
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if !i.Source.IsValid() {
		return fmt.Errorf("invalid income source %q", i.Source)
	}
	return nil
}

func (e Expense) Validate() error {
	if err := validateDescription(e.Description); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Kind.IsValid() {
		return fmt.Errorf("invalid expense type %q", e.Kind)
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (s ShoppingItem) Validate() error {
	if err := validateDescription(s.Description); err != nil {
		return err
	}
	return s.Amount.Validate()
}

func (a AvulsoItem) Validate() error {
	if err := validateDescription(a.Description); err != nil {
		return err
	}
	if err := a.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(a.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Category) == "" {
		return ErrEmptyCategory
	}
	return g.Amount.Validate()
}

func (b BankAccount) Validate() error {
	if len(strings.TrimSpace(b.Name)) == 0 {
		return errors.New("empty account name")
	}
	return nil
}
