package core

import "fmt"

const (
	KindIncome   ItemKind = "income"
	KindExpense  ItemKind = "expense"
	KindShopping ItemKind = "shopping"
	KindAvulso   ItemKind = "avulso"
	KindGoal     ItemKind = "goal"
	KindAccount  ItemKind = "account"
)

// ItemKind selects one of the six collections on a MonthRecord. The mapping
// is total: every valid kind maps to exactly one collection, enforced by the
// exhaustive switches below.
type ItemKind string

func (k ItemKind) IsValid() bool {
	switch k {
	case KindIncome, KindExpense, KindShopping, KindAvulso, KindGoal, KindAccount:
		return true
	default:
		return false
	}
}

// Payable reports whether items of this kind carry a paid flag.
func (k ItemKind) Payable() bool {
	switch k {
	case KindIncome, KindExpense, KindShopping, KindAvulso:
		return true
	default:
		return false
	}
}

// Item is implemented by every value that lives in a MonthRecord collection.
type Item interface {
	ItemID() string
	// WithID returns a copy of the item with the given id.
	WithID(id string) Item
	Validate() error
}

func (i Income) ItemID() string       { return i.ID }
func (e Expense) ItemID() string      { return e.ID }
func (s ShoppingItem) ItemID() string { return s.ID }
func (a AvulsoItem) ItemID() string   { return a.ID }
func (g Goal) ItemID() string         { return g.ID }
func (b BankAccount) ItemID() string  { return b.ID }

func (i Income) WithID(id string) Item       { i.ID = id; return i }
func (e Expense) WithID(id string) Item      { e.ID = id; e.Current = cloneInt(e.Current); e.Total = cloneInt(e.Total); return e }
func (s ShoppingItem) WithID(id string) Item { s.ID = id; return s }
func (a AvulsoItem) WithID(id string) Item   { a.ID = id; return a }
func (g Goal) WithID(id string) Item         { g.ID = id; return g }
func (b BankAccount) WithID(id string) Item  { b.ID = id; return b }

// KindOf returns the collection kind for a concrete item value.
func KindOf(it Item) (ItemKind, error) {
	switch it.(type) {
	case Income:
		return KindIncome, nil
	case Expense:
		return KindExpense, nil
	case ShoppingItem:
		return KindShopping, nil
	case AvulsoItem:
		return KindAvulso, nil
	case Goal:
		return KindGoal, nil
	case BankAccount:
		return KindAccount, nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownKind, it)
	}
}

// Append adds the item to the collection selected by kind. The item's
// concrete type must match the kind.
func (r *MonthRecord) Append(kind ItemKind, it Item) error {
	switch kind {
	case KindIncome:
		v, ok := it.(Income)
		if !ok {
			return fmt.Errorf("%w: %T as %s", ErrKindMismatch, it, kind)
		}
		r.Incomes = append(r.Incomes, v)
	case KindExpense:
		v, ok := it.(Expense)
		if !ok {
			return fmt.Errorf("%w: %T as %s", ErrKindMismatch, it, kind)
		}
		r.Expenses = append(r.Expenses, v)
	case KindShopping:
		v, ok := it.(ShoppingItem)
		if !ok {
			return fmt.Errorf("%w: %T as %s", ErrKindMismatch, it, kind)
		}
		r.ShoppingItems = append(r.ShoppingItems, v)
	case KindAvulso:
		v, ok := it.(AvulsoItem)
		if !ok {
			return fmt.Errorf("%w: %T as %s", ErrKindMismatch, it, kind)
		}
		r.AvulsosItems = append(r.AvulsosItems, v)
	case KindGoal:
		v, ok := it.(Goal)
		if !ok {
			return fmt.Errorf("%w: %T as %s", ErrKindMismatch, it, kind)
		}
		r.Goals = append(r.Goals, v)
	case KindAccount:
		v, ok := it.(BankAccount)
		if !ok {
			return fmt.Errorf("%w: %T as %s", ErrKindMismatch, it, kind)
		}
		r.BankAccounts = append(r.BankAccounts, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return nil
}

// Replace swaps the entry with the same id in the selected collection.
// It reports false when no entry matches; that is a no-op, not an error,
// since the item may have been deleted concurrently.
func (r *MonthRecord) Replace(kind ItemKind, it Item) (bool, error) {
	switch kind {
	case KindIncome:
		v, ok := it.(Income)
		if !ok {
			return false, fmt.Errorf("%w: %T as %s", ErrKindMismatch, it, kind)
		}
		return replaceByID(r.Incomes, v), nil
	case KindExpense:
		v, ok := it.(Expense)
		if !ok {
			return false, fmt.Errorf("%w: %T as %s", ErrKindMismatch, it, kind)
		}
		return replaceByID(r.Expenses, v), nil
	case KindShopping:
		v, ok := it.(ShoppingItem)
		if !ok {
			return false, fmt.Errorf("%w: %T as %s", ErrKindMismatch, it, kind)
		}
		return replaceByID(r.ShoppingItems, v), nil
	case KindAvulso:
		v, ok := it.(AvulsoItem)
		if !ok {
			return false, fmt.Errorf("%w: %T as %s", ErrKindMismatch, it, kind)
		}
		return replaceByID(r.AvulsosItems, v), nil
	case KindGoal:
		v, ok := it.(Goal)
		if !ok {
			return false, fmt.Errorf("%w: %T as %s", ErrKindMismatch, it, kind)
		}
		return replaceByID(r.Goals, v), nil
	case KindAccount:
		v, ok := it.(BankAccount)
		if !ok {
			return false, fmt.Errorf("%w: %T as %s", ErrKindMismatch, it, kind)
		}
		return replaceByID(r.BankAccounts, v), nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Remove deletes the entry with the given id from the selected collection.
// It reports whether exactly one entry was removed.
func (r *MonthRecord) Remove(kind ItemKind, id string) (bool, error) {
	switch kind {
	case KindIncome:
		var removed bool
		r.Incomes, removed = removeByID(r.Incomes, id)
		return removed, nil
	case KindExpense:
		var removed bool
		r.Expenses, removed = removeByID(r.Expenses, id)
		return removed, nil
	case KindShopping:
		var removed bool
		r.ShoppingItems, removed = removeByID(r.ShoppingItems, id)
		return removed, nil
	case KindAvulso:
		var removed bool
		r.AvulsosItems, removed = removeByID(r.AvulsosItems, id)
		return removed, nil
	case KindGoal:
		var removed bool
		r.Goals, removed = removeByID(r.Goals, id)
		return removed, nil
	case KindAccount:
		var removed bool
		r.BankAccounts, removed = removeByID(r.BankAccounts, id)
		return removed, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Find looks up an item by id in the selected collection.
func (r *MonthRecord) Find(kind ItemKind, id string) (Item, bool) {
	switch kind {
	case KindIncome:
		return findByID(r.Incomes, id)
	case KindExpense:
		return findByID(r.Expenses, id)
	case KindShopping:
		return findByID(r.ShoppingItems, id)
	case KindAvulso:
		return findByID(r.AvulsosItems, id)
	case KindGoal:
		return findByID(r.Goals, id)
	case KindAccount:
		return findByID(r.BankAccounts, id)
	default:
		return nil, false
	}
}

// TogglePaid flips the item's paid flag. For kinds that track a paid date it
// sets the date to today on the transition to paid and clears it on the
// transition back. Toggling twice restores the original state.
func TogglePaid(it Item, today Date) (Item, error) {
	switch v := it.(type) {
	case Income:
		v.Paid = !v.Paid
		return v, nil
	case Expense:
		v.Paid = !v.Paid
		if v.Paid {
			v.PaidDate = today
		} else {
			v.PaidDate = Date{}
		}
		return v, nil
	case ShoppingItem:
		v.Paid = !v.Paid
		if v.Paid {
			v.PaidDate = today
		} else {
			v.PaidDate = Date{}
		}
		return v, nil
	case AvulsoItem:
		v.Paid = !v.Paid
		if v.Paid {
			v.PaidDate = today
		} else {
			v.PaidDate = Date{}
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotPayable, it)
	}
}

// Clone returns a deep copy of the record. Installment counter pointers are
// duplicated so mutating a copy never leaks into the original.
func (r *MonthRecord) Clone() *MonthRecord {
	if r == nil {
		return nil
	}
	out := &MonthRecord{DataVersion: r.DataVersion}
	out.Incomes = append([]Income(nil), r.Incomes...)
	out.Expenses = make([]Expense, len(r.Expenses))
	for i, e := range r.Expenses {
		e.Current = cloneInt(e.Current)
		e.Total = cloneInt(e.Total)
		out.Expenses[i] = e
	}
	out.ShoppingItems = append([]ShoppingItem(nil), r.ShoppingItems...)
	out.AvulsosItems = append([]AvulsoItem(nil), r.AvulsosItems...)
	out.Goals = append([]Goal(nil), r.Goals...)
	out.BankAccounts = append([]BankAccount(nil), r.BankAccounts...)
	return out
}

func cloneInt(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type identifiable interface {
	ItemID() string
}

func replaceByID[T identifiable](list []T, item T) bool {
	for i := range list {
		if list[i].ItemID() == item.ItemID() {
			list[i] = item
			return true
		}
	}
	return false
}

func removeByID[T identifiable](list []T, id string) ([]T, bool) {
	for i := range list {
		if list[i].ItemID() == id {
			return append(list[:i:i], list[i+1:]...), true
		}
	}
	return list, false
}

func findByID[T identifiable](list []T, id string) (Item, bool) {
	for i := range list {
		if list[i].ItemID() == id {
			return any(list[i]).(Item), true
		}
	}
	return nil, false
}

// HasID reports whether any entry of the selected collection carries id.
func (r *MonthRecord) HasID(kind ItemKind, id string) bool {
	_, ok := r.Find(kind, id)
	return ok
}
