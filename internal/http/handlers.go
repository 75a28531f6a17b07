package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"financas/internal/core"
	"financas/internal/store"
)

// monthView is the template model for the dashboard page.
type monthView struct {
	MonthKey   string
	MonthLabel string
	PrevKey    string
	NextKey    string

	Status  string
	Loading bool

	Record      *core.MonthRecord
	Summary     core.Summary
	PaidPercent int
	Categories  []core.CategoryAmount
	Goals       []core.GoalStatus
	Top         []core.ExpenseHighlight

	ChatAnswer   string
	ChatQuestion string
}

func (s *Server) buildMonthView(key core.MonthKey) monthView {
	view := monthView{
		MonthKey:   key.String(),
		MonthLabel: key.Label(),
		PrevKey:    key.Prev().String(),
		NextKey:    key.Next().String(),
		Status:     string(s.store.Status()),
		Loading:    s.store.Loading(),
	}
	rec := s.store.Record()
	if rec == nil {
		rec = &core.MonthRecord{DataVersion: core.DataVersion}
	}
	sum := core.Summarize(rec)
	view.Record = rec
	view.Summary = sum
	view.PaidPercent = core.PaidPercent(sum.PaidExpenses, sum.ExpensesTotal)
	view.Categories = core.CategoryTotals(rec)
	view.Goals = core.GoalProgress(rec)
	view.Top = core.TopExpenses(rec, 5)
	return view
}

// currentMonth resolves the month to show: the ?month parameter if present,
// otherwise the already open month, otherwise the current calendar month.
// Switching months loads them into the store.
func (s *Server) currentMonth(r *http.Request) (core.MonthKey, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		if key := s.store.MonthKey(); key != "" {
			return key, nil
		}
		key := core.MonthKeyFor(time.Now())
		return key, s.store.SetMonth(r.Context(), key)
	}
	key, err := core.ParseMonthKey(raw)
	if err != nil {
		return "", err
	}
	if key == s.store.MonthKey() {
		return key, nil
	}
	return key, s.store.SetMonth(r.Context(), key)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	key, err := s.currentMonth(r)
	if err != nil {
		if errors.Is(err, core.ErrInvalidMonthKey) {
			http.Error(w, "invalid month", http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to load month", http.StatusInternalServerError)
		return
	}
	s.render(w, "month.html", s.buildMonthView(key))
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}

// itemFromForm builds a domain item of the requested kind from form values.
// Shopping and avulso entries record money already spent, so they start paid
// with today as the paid date.
func itemFromForm(kind core.ItemKind, form url.Values, today core.Date) (core.Item, error) {
	description := form.Get("description")
	amountCents := int64(0)
	if v := form.Get("amount"); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return nil, err
		}
		amountCents = cents
	}
	amount := core.Money{Cents: amountCents}

	switch kind {
	case core.KindIncome:
		source := core.IncomeSource(form.Get("source"))
		if source == "" {
			source = core.SourceOther
		}
		return core.Income{Description: description, Amount: amount, Source: source}, nil

	case core.KindExpense:
		e := core.Expense{
			Description: description,
			Amount:      amount,
			Kind:        core.ExpenseKind(form.Get("type")),
			Category:    form.Get("category"),
			Cyclic:      form.Get("cyclic") == "on" || form.Get("cyclic") == "true",
		}
		if v := form.Get("dueDate"); v != "" {
			due, err := core.ParseDate(v)
			if err != nil {
				return nil, err
			}
			e.DueDate = due
		}
		if v := form.Get("total"); v != "" {
			total, err := strconv.ParseInt(v, 10, 64)
			if err != nil || total < 1 {
				return nil, fmt.Errorf("invalid installment total %q", v)
			}
			current := int64(1)
			if cv := form.Get("current"); cv != "" {
				current, err = strconv.ParseInt(cv, 10, 64)
				if err != nil || current < 1 {
					return nil, fmt.Errorf("invalid installment current %q", cv)
				}
			}
			e.Current = &current
			e.Total = &total
		}
		return e, nil

	case core.KindShopping:
		return core.ShoppingItem{
			Description: description,
			Amount:      amount,
			Category:    core.ShoppingCategory,
			Paid:        true,
			PaidDate:    today,
		}, nil

	case core.KindAvulso:
		return core.AvulsoItem{
			Description: description,
			Amount:      amount,
			Category:    form.Get("category"),
			Paid:        true,
			PaidDate:    today,
		}, nil

	case core.KindGoal:
		return core.Goal{
			Category: form.Get("category"),
			Amount:   amount,
		}, nil

	case core.KindAccount:
		balance := int64(0)
		if v := form.Get("balance"); v != "" {
			cents, err := core.ParseSignedCents(v)
			if err != nil {
				return nil, err
			}
			balance = cents
		}
		return core.BankAccount{
			Name:    form.Get("name"),
			Balance: core.Money{Cents: balance},
		}, nil

	default:
		return nil, core.ErrUnknownKind
	}
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	kind := core.ItemKind(r.PostForm.Get("kind"))
	it, err := itemFromForm(kind, r.PostForm, s.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := s.store.AddItem(kind, it); err != nil {
		s.writeMutationError(w, err)
		return
	}
	s.redirectToMonth(w, r)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	kind := core.ItemKind(r.PostForm.Get("kind"))
	id := r.PostForm.Get("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}
	it, err := itemFromForm(kind, r.PostForm, s.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	it = it.WithID(id)
	// The edit form carries field values only; the paid state of the stored
	// entry is kept as-is.
	if rec := s.store.Record(); rec != nil {
		if cur, ok := rec.Find(kind, id); ok {
			it = carryPaidState(it, cur)
		}
	}
	if err := s.store.UpdateItem(kind, it); err != nil {
		s.writeMutationError(w, err)
		return
	}
	s.redirectToMonth(w, r)
}

func carryPaidState(it, cur core.Item) core.Item {
	switch v := it.(type) {
	case core.Income:
		if c, ok := cur.(core.Income); ok {
			v.Paid = c.Paid
		}
		return v
	case core.Expense:
		if c, ok := cur.(core.Expense); ok {
			v.Paid = c.Paid
			v.PaidDate = c.PaidDate
		}
		return v
	case core.ShoppingItem:
		if c, ok := cur.(core.ShoppingItem); ok {
			v.Paid = c.Paid
			v.PaidDate = c.PaidDate
		}
		return v
	case core.AvulsoItem:
		if c, ok := cur.(core.AvulsoItem); ok {
			v.Paid = c.Paid
			v.PaidDate = c.PaidDate
		}
		return v
	default:
		return it
	}
}

func (s *Server) handleToggleItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	kind := core.ItemKind(r.PostForm.Get("kind"))
	id := r.PostForm.Get("id")
	if err := s.store.TogglePaid(kind, id); err != nil {
		s.writeMutationError(w, err)
		return
	}
	s.redirectToMonth(w, r)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	kind := core.ItemKind(r.PostForm.Get("kind"))
	id := r.PostForm.Get("id")
	if err := s.store.DeleteItem(kind, id); err != nil {
		s.writeMutationError(w, err)
		return
	}
	s.redirectToMonth(w, r)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	question := r.PostForm.Get("question")
	if question == "" {
		s.redirectToMonth(w, r)
		return
	}

	key := s.store.MonthKey()
	answer := s.assistant.Ask(r.Context(), s.store.Record(), key, question)

	view := s.buildMonthView(key)
	view.ChatQuestion = question
	view.ChatAnswer = answer
	s.render(w, "month.html", view)
}

func (s *Server) writeMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNoMonth):
		http.Error(w, "no month loaded", http.StatusConflict)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "item not found", http.StatusNotFound)
	case errors.Is(err, core.ErrUnknownKind), errors.Is(err, core.ErrNotPayable):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrKindMismatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) redirectToMonth(w http.ResponseWriter, r *http.Request) {
	target := "/?month=" + url.QueryEscape(s.store.MonthKey().String())
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	checks["sync_status"] = string(s.store.Status())
	if s.store.Status() == store.StatusError {
		status = "degraded"
	}

	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"checks": checks,
	})
}
