// Package services contains the month lifecycle logic that sits between the
// document stores and the state layer.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"financas/internal/core"
	"financas/internal/docs"

	"github.com/google/uuid"
)

// Rollover ensures a month record exists, carrying recurring expenses forward
// from the previous month when a month is opened for the first time.
type Rollover struct {
	store  docs.DocumentStore
	logger *slog.Logger
	newID  func() string
}

// NewRollover creates a rollover service backed by the given document store.
func NewRollover(store docs.DocumentStore, logger *slog.Logger) *Rollover {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rollover{
		store:  store,
		logger: logger.With("component", "rollover"),
		newID:  uuid.NewString,
	}
}

// Ensure returns the record for the given month, creating it when absent.
// A missing month is built by rolling the previous month forward; when there
// is no previous month the seed dataset takes its place as the rollover
// input. The created record is persisted before it is returned.
func (r *Rollover) Ensure(ctx context.Context, uid string, key core.MonthKey) (*core.MonthRecord, error) {
	rec, err := r.store.Get(ctx, uid, key)
	if err != nil {
		return nil, fmt.Errorf("load month %s: %w", key, err)
	}
	if rec != nil {
		return rec, nil
	}

	prev, err := r.store.Get(ctx, uid, key.Prev())
	if err != nil {
		// A broken previous month must not block opening the new one.
		r.logger.WarnContext(ctx, "previous month unavailable, falling back to seed",
			"month", key.Prev().String(), "error", err)
		prev = nil
	}

	if prev == nil {
		// The seed dataset stands in for the missing previous month, so the
		// first month still goes through the normal rollover.
		prev = core.SeedRecord()
		r.logger.InfoContext(ctx, "no previous month, rolling over from seed",
			"month", key.String())
	}
	rec = BuildNextMonth(prev, r.newID)
	r.logger.InfoContext(ctx, "rolled over month",
		"month", key.String(),
		"from", key.Prev().String(),
		"recurring_expenses", len(rec.Expenses))

	if err := r.store.Set(ctx, uid, key, rec); err != nil {
		return nil, fmt.Errorf("persist month %s: %w", key, err)
	}
	return rec, nil
}

// BuildNextMonth derives a fresh month record from the previous one. Only
// cyclic expenses carry over; each gets a new id, is reset to unpaid, has its
// due date shifted one month (clamped to the last day of the shorter month)
// and its installment counter advanced while below the cap. A nil installment
// total means the series never ends. Goals and bank accounts are copied as-is,
// every other collection starts empty.
func BuildNextMonth(prev *core.MonthRecord, newID func() string) *core.MonthRecord {
	next := &core.MonthRecord{DataVersion: core.DataVersion}

	for _, e := range prev.Expenses {
		if !e.Cyclic {
			continue
		}
		carried := e
		carried.ID = newID()
		carried.Paid = false
		carried.PaidDate = core.Date{}
		if !e.DueDate.IsEmpty() {
			carried.DueDate = e.DueDate.AddMonthClamped()
		}
		if e.Current != nil {
			cur := *e.Current
			if e.Total == nil || cur < *e.Total {
				cur++
			}
			carried.Current = &cur
		}
		if e.Total != nil {
			total := *e.Total
			carried.Total = &total
		}
		next.Expenses = append(next.Expenses, carried)
	}

	for _, g := range prev.Goals {
		next.Goals = append(next.Goals, g)
	}
	for _, a := range prev.BankAccounts {
		next.BankAccounts = append(next.BankAccounts, a)
	}

	return next
}
