// Package reconcile writes aggregated call-log totals into the roster and
// upserts the imported call rows.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/callpay-backend/internal/aggregate"
	"github.com/angelmondragon/callpay-backend/internal/schema"
	"github.com/angelmondragon/callpay-backend/pkg/db/models"
)

// RosterStore is the slice of the interpreter repository reconciliation needs.
type RosterStore interface {
	ListAll(ctx context.Context) ([]models.Interpreter, error)
	UpdateTotals(ctx context.Context, id uuid.UUID, amount decimal.Decimal, minutes *int64) error
}

// CallLogStore upserts call rows keyed by call_id.
type CallLogStore interface {
	Upsert(ctx context.Context, logs []models.CallLog, columns []string) (int64, error)
}

// Rounding turns a summed amount into the stored currency value.
type Rounding func(decimal.Decimal) decimal.Decimal

// RoundHalfUp rounds to cents, halves away from zero: 10.005 -> 10.01.
func RoundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Engine reconciles one aggregation result against the roster.
type Engine struct {
	revision schema.Revision
	matcher  Matcher
	round    Rounding
}

// Option customizes an Engine.
type Option func(*Engine)

// WithMatcher swaps the name predicate.
func WithMatcher(m Matcher) Option {
	return func(e *Engine) {
		if m != nil {
			e.matcher = m
		}
	}
}

// WithRounding swaps the currency rounding rule.
func WithRounding(r Rounding) Option {
	return func(e *Engine) {
		if r != nil {
			e.round = r
		}
	}
}

// NewEngine builds an engine for the given revision with exact matching and
// half-up rounding unless overridden.
func NewEngine(revision schema.Revision, opts ...Option) *Engine {
	e := &Engine{revision: revision, matcher: ExactMatcher{}, round: RoundHalfUp}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Summary describes what a reconciliation pass wrote.
type Summary struct {
	RosterSize int
	Matched    int
	// Written is the sum of the rounded amounts stored.
	Written decimal.Decimal
	// UnmatchedNames are aggregated names with no roster entry, sorted.
	UnmatchedNames []string
}

type keyedTotal struct {
	pay      decimal.Decimal
	calltime int64
	names    []string
}

// Reconcile walks the roster in persisted order and overwrites the totals of
// every interpreter whose name matches an aggregated group, one update per
// interpreter. Unmatched roster entries are not touched.
func (e *Engine) Reconcile(ctx context.Context, roster RosterStore, result *aggregate.Result) (Summary, error) {
	summary := Summary{Written: decimal.Zero}
	if result == nil {
		return summary, nil
	}

	index := make(map[string]*keyedTotal, len(result.Totals))
	for _, t := range result.Totals {
		key := e.matcher.Key(t.Name)
		kt, ok := index[key]
		if !ok {
			kt = &keyedTotal{pay: decimal.Zero}
			index[key] = kt
		}
		kt.pay = kt.pay.Add(t.Pay)
		kt.calltime = aggregate.AddCalltime(kt.calltime, t.Calltime)
		kt.names = append(kt.names, t.Name)
	}

	interpreters, err := roster.ListAll(ctx)
	if err != nil {
		return summary, fmt.Errorf("load roster: %w", err)
	}
	summary.RosterSize = len(interpreters)

	used := make(map[string]bool, len(index))
	for _, interpreter := range interpreters {
		key := e.matcher.Key(interpreter.Name)
		kt, ok := index[key]
		if !ok {
			continue
		}
		amount := e.round(kt.pay)
		var minutes *int64
		if e.revision.TracksMinutes {
			m := kt.calltime
			minutes = &m
		}
		if err := roster.UpdateTotals(ctx, interpreter.ID, amount, minutes); err != nil {
			return summary, fmt.Errorf("update totals for %q: %w", interpreter.Name, err)
		}
		used[key] = true
		summary.Matched++
		summary.Written = summary.Written.Add(amount)
	}

	for key, kt := range index {
		if !used[key] {
			summary.UnmatchedNames = append(summary.UnmatchedNames, kt.names...)
		}
	}
	sort.Strings(summary.UnmatchedNames)
	return summary, nil
}

// UpsertSummary counts the call rows written and skipped.
type UpsertSummary struct {
	Upserted int
	// SkippedBlankID counts rows with no call id to key on.
	SkippedBlankID int
	// Duplicates counts rows superseded by a later row with the same call id.
	Duplicates int
}

// UpsertCallLogs stores every coerced row keyed by call id. A later row in
// the same file wins over an earlier one with the same id.
func (e *Engine) UpsertCallLogs(ctx context.Context, store CallLogStore, result *aggregate.Result) (UpsertSummary, error) {
	var summary UpsertSummary
	if result == nil {
		return summary, nil
	}

	position := make(map[string]int, len(result.Records))
	logs := make([]models.CallLog, 0, len(result.Records))
	for _, rec := range result.Records {
		callID := strings.TrimSpace(rec.CallID)
		if callID == "" {
			summary.SkippedBlankID++
			continue
		}
		log := models.CallLog{
			CallID:              callID,
			InterpreterName:     rec.InterpreterName,
			InterpreterPay:      rec.Pay,
			InterpreterCalltime: rec.Calltime,
			CustomerName:        rec.CustomerName,
			CallTime:            rec.CallTime,
		}
		if i, dup := position[callID]; dup {
			logs[i] = log
			summary.Duplicates++
			continue
		}
		position[callID] = len(logs)
		logs = append(logs, log)
	}

	if len(logs) == 0 {
		return summary, nil
	}
	if _, err := store.Upsert(ctx, logs, e.upsertColumns()); err != nil {
		return summary, fmt.Errorf("upsert call logs: %w", err)
	}
	summary.Upserted = len(logs)
	return summary, nil
}

func (e *Engine) upsertColumns() []string {
	columns := []string{"interpreter_name", "interpreter_pay", "interpreter_calltime"}
	if e.revision.Keeps(schema.FieldCustomerName) {
		columns = append(columns, "customer_name")
	}
	if e.revision.Keeps(schema.FieldCallTime) {
		columns = append(columns, "call_time")
	}
	return columns
}
