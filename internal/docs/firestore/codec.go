package firestore

import (
	"fmt"
	"math"

	"financas/internal/core"

	fs "google.golang.org/api/firestore/v1"
)

// recordFieldPaths is the update mask used on every write. Patching with an
// explicit mask gives merge semantics: fields outside the mask are left
// untouched in the stored document.
var recordFieldPaths = []string{
	"dataVersion", "incomes", "expenses", "shoppingItems",
	"avulsosItems", "goals", "bankAccounts",
}

func strVal(s string) fs.Value {
	return fs.Value{StringValue: s, ForceSendFields: []string{"StringValue"}}
}

func intVal(i int64) fs.Value {
	return fs.Value{IntegerValue: i, ForceSendFields: []string{"IntegerValue"}}
}

func boolVal(b bool) fs.Value {
	return fs.Value{BooleanValue: b, ForceSendFields: []string{"BooleanValue"}}
}

func nullVal() fs.Value {
	return fs.Value{NullValue: "NULL_VALUE", ForceSendFields: []string{"NullValue"}}
}

func dateVal(d core.Date) fs.Value {
	if d.IsEmpty() {
		return nullVal()
	}
	return strVal(d.String())
}

func optIntVal(p *int64) fs.Value {
	if p == nil {
		return nullVal()
	}
	return intVal(*p)
}

func mapVal(fields map[string]fs.Value) fs.Value {
	return fs.Value{MapValue: &fs.MapValue{Fields: fields}}
}

func arrVal(values []*fs.Value) fs.Value {
	return fs.Value{ArrayValue: &fs.ArrayValue{Values: values}}
}

// encodeRecord converts a month record into Firestore document fields.
// Amounts are written as integer cents; the v1 web app wrote floating-point
// reais, which decodeRecord still accepts.
func encodeRecord(rec *core.MonthRecord) map[string]fs.Value {
	incomes := make([]*fs.Value, len(rec.Incomes))
	for i, inc := range rec.Incomes {
		v := mapVal(map[string]fs.Value{
			"id":          strVal(inc.ID),
			"description": strVal(inc.Description),
			"amount":      intVal(inc.Amount.Cents),
			"source":      strVal(string(inc.Source)),
			"paid":        boolVal(inc.Paid),
		})
		incomes[i] = &v
	}

	expenses := make([]*fs.Value, len(rec.Expenses))
	for i, e := range rec.Expenses {
		v := mapVal(map[string]fs.Value{
			"id":          strVal(e.ID),
			"description": strVal(e.Description),
			"amount":      intVal(e.Amount.Cents),
			"type":        strVal(string(e.Kind)),
			"category":    strVal(e.Category),
			"paid":        boolVal(e.Paid),
			"cyclic":      boolVal(e.Cyclic),
			"dueDate":     dateVal(e.DueDate),
			"paidDate":    dateVal(e.PaidDate),
			"current":     optIntVal(e.Current),
			"total":       optIntVal(e.Total),
		})
		expenses[i] = &v
	}

	shopping := make([]*fs.Value, len(rec.ShoppingItems))
	for i, it := range rec.ShoppingItems {
		v := mapVal(map[string]fs.Value{
			"id":          strVal(it.ID),
			"description": strVal(it.Description),
			"amount":      intVal(it.Amount.Cents),
			"paid":        boolVal(it.Paid),
			"category":    strVal(core.ShoppingCategory),
			"paidDate":    dateVal(it.PaidDate),
		})
		shopping[i] = &v
	}

	avulsos := make([]*fs.Value, len(rec.AvulsosItems))
	for i, it := range rec.AvulsosItems {
		v := mapVal(map[string]fs.Value{
			"id":          strVal(it.ID),
			"description": strVal(it.Description),
			"amount":      intVal(it.Amount.Cents),
			"paid":        boolVal(it.Paid),
			"category":    strVal(it.Category),
			"paidDate":    dateVal(it.PaidDate),
		})
		avulsos[i] = &v
	}

	goals := make([]*fs.Value, len(rec.Goals))
	for i, g := range rec.Goals {
		v := mapVal(map[string]fs.Value{
			"id":       strVal(g.ID),
			"category": strVal(g.Category),
			"amount":   intVal(g.Amount.Cents),
		})
		goals[i] = &v
	}

	accounts := make([]*fs.Value, len(rec.BankAccounts))
	for i, a := range rec.BankAccounts {
		v := mapVal(map[string]fs.Value{
			"id":      strVal(a.ID),
			"name":    strVal(a.Name),
			"balance": intVal(a.Balance.Cents),
		})
		accounts[i] = &v
	}

	return map[string]fs.Value{
		"dataVersion":   strVal(rec.DataVersion),
		"incomes":       arrVal(incomes),
		"expenses":      arrVal(expenses),
		"shoppingItems": arrVal(shopping),
		"avulsosItems":  arrVal(avulsos),
		"goals":         arrVal(goals),
		"bankAccounts":  arrVal(accounts),
	}
}

// decodeRecord converts a Firestore document back into a month record.
// Unknown fields are ignored and missing fields decode to zero values, so
// documents written by older schema versions still load.
func decodeRecord(doc *fs.Document) (*core.MonthRecord, error) {
	if doc == nil {
		return nil, nil
	}
	rec := &core.MonthRecord{}
	rec.DataVersion = decodeString(doc.Fields["dataVersion"])

	for _, v := range decodeArray(doc.Fields["incomes"]) {
		f := decodeMap(v)
		source := core.IncomeSource(decodeString(f["source"]))
		if !source.IsValid() {
			source = core.SourceOther
		}
		rec.Incomes = append(rec.Incomes, core.Income{
			ID:          decodeString(f["id"]),
			Description: decodeString(f["description"]),
			Amount:      decodeMoney(f["amount"]),
			Source:      source,
			Paid:        decodeBool(f["paid"]),
		})
	}

	for _, v := range decodeArray(doc.Fields["expenses"]) {
		f := decodeMap(v)
		dueDate, err := decodeDate(f["dueDate"])
		if err != nil {
			return nil, fmt.Errorf("expense dueDate: %w", err)
		}
		paidDate, err := decodeDate(f["paidDate"])
		if err != nil {
			return nil, fmt.Errorf("expense paidDate: %w", err)
		}
		rec.Expenses = append(rec.Expenses, core.Expense{
			ID:          decodeString(f["id"]),
			Description: decodeString(f["description"]),
			Amount:      decodeMoney(f["amount"]),
			Kind:        core.ExpenseKind(decodeString(f["type"])),
			Category:    decodeString(f["category"]),
			Paid:        decodeBool(f["paid"]),
			Cyclic:      decodeBool(f["cyclic"]),
			DueDate:     dueDate,
			PaidDate:    paidDate,
			Current:     decodeOptInt(f["current"]),
			Total:       decodeOptInt(f["total"]),
		})
	}

	for _, v := range decodeArray(doc.Fields["shoppingItems"]) {
		f := decodeMap(v)
		paidDate, err := decodeDate(f["paidDate"])
		if err != nil {
			return nil, fmt.Errorf("shopping paidDate: %w", err)
		}
		rec.ShoppingItems = append(rec.ShoppingItems, core.ShoppingItem{
			ID:          decodeString(f["id"]),
			Description: decodeString(f["description"]),
			Amount:      decodeMoney(f["amount"]),
			Paid:        decodeBool(f["paid"]),
			Category:    core.ShoppingCategory,
			PaidDate:    paidDate,
		})
	}

	for _, v := range decodeArray(doc.Fields["avulsosItems"]) {
		f := decodeMap(v)
		paidDate, err := decodeDate(f["paidDate"])
		if err != nil {
			return nil, fmt.Errorf("avulso paidDate: %w", err)
		}
		rec.AvulsosItems = append(rec.AvulsosItems, core.AvulsoItem{
			ID:          decodeString(f["id"]),
			Description: decodeString(f["description"]),
			Amount:      decodeMoney(f["amount"]),
			Paid:        decodeBool(f["paid"]),
			Category:    decodeString(f["category"]),
			PaidDate:    paidDate,
		})
	}

	for _, v := range decodeArray(doc.Fields["goals"]) {
		f := decodeMap(v)
		rec.Goals = append(rec.Goals, core.Goal{
			ID:       decodeString(f["id"]),
			Category: decodeString(f["category"]),
			Amount:   decodeMoney(f["amount"]),
		})
	}

	for _, v := range decodeArray(doc.Fields["bankAccounts"]) {
		f := decodeMap(v)
		rec.BankAccounts = append(rec.BankAccounts, core.BankAccount{
			ID:      decodeString(f["id"]),
			Name:    decodeString(f["name"]),
			Balance: decodeMoney(f["balance"]),
		})
	}

	return rec, nil
}

func decodeString(v fs.Value) string { return v.StringValue }

func decodeBool(v fs.Value) bool { return v.BooleanValue }

// decodeMoney reads integer cents (current schema) or floating-point reais
// (documents written by the original web client).
func decodeMoney(v fs.Value) core.Money {
	if v.IntegerValue != 0 {
		return core.Money{Cents: v.IntegerValue}
	}
	if v.DoubleValue != 0 {
		return core.Money{Cents: int64(math.Round(v.DoubleValue * 100))}
	}
	return core.Money{}
}

func decodeDate(v fs.Value) (core.Date, error) {
	if v.StringValue == "" {
		return core.Date{}, nil
	}
	s := v.StringValue
	if len(s) > 10 {
		s = s[:10]
	}
	return core.ParseDate(s)
}

func decodeOptInt(v fs.Value) *int64 {
	if v.NullValue != "" || (v.IntegerValue == 0 && v.DoubleValue == 0) {
		return nil
	}
	if v.IntegerValue != 0 {
		i := v.IntegerValue
		return &i
	}
	i := int64(math.Round(v.DoubleValue))
	return &i
}

func decodeArray(v fs.Value) []*fs.Value {
	if v.ArrayValue == nil {
		return nil
	}
	return v.ArrayValue.Values
}

func decodeMap(v *fs.Value) map[string]fs.Value {
	if v == nil || v.MapValue == nil {
		return nil
	}
	return v.MapValue.Fields
}
