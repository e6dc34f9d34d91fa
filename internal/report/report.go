// Package report assembles the monthly view (summary, comparison, weekly
// chart, budget alerts) from backend reads.
package report

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/logger"
	"fintrack/internal/model"
	"fintrack/internal/pipeline"

	"golang.org/x/sync/errgroup"
)

// TopN is how many categories the breakdown shows.
const TopN = 5

// Source is the subset of the backend client the reports read from.
type Source interface {
	ListMonth(ctx context.Context, m model.Month) ([]model.Transaction, error)
	Summary(ctx context.Context, m model.Month) (*model.SummaryPayload, error)
	Insights(ctx context.Context, m model.Month) (string, error)
}

// Month is everything the summary view renders for one month.
type Month struct {
	Month        model.Month
	Transactions []model.Transaction
	Summary      model.Summary
	Previous     *model.Summary    // nil when the previous month could not be read
	Comparison   *model.Comparison // nil when Previous is nil
	Top          []model.CategoryShare
	Weeks        []model.WeekBucket
	Insight      string
	Warnings     []string
	FetchedAt    time.Time
}

// Build reads month m. The four reads run concurrently. A failed month
// list is returned as an error; the backend summary falls back to local
// totals with a warning; a failed previous summary drops the comparison;
// a failed insight leaves the narrative empty.
func Build(ctx context.Context, src Source, m model.Month) (*Month, error) {
	log := logger.FromContext(ctx)
	var (
		txs             []model.Transaction
		cur, prev       *model.SummaryPayload
		curErr, prevErr error
		insight         string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = src.ListMonth(gctx, m)
		if err != nil {
			return fmt.Errorf("loading %s transactions: %w", m, err)
		}
		return nil
	})
	g.Go(func() error {
		cur, curErr = src.Summary(gctx, m)
		return nil
	})
	g.Go(func() error {
		prev, prevErr = src.Summary(gctx, m.Prev())
		return nil
	})
	g.Go(func() error {
		s, err := src.Insights(gctx, m)
		if err != nil {
			log.Debug().Err(err).Msg("insight unavailable")
			return nil
		}
		insight = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := &Month{
		Month:        m,
		Transactions: txs,
		Insight:      insight,
		FetchedAt:    time.Now(),
	}

	if prevErr != nil {
		log.Debug().Err(prevErr).Str("month", m.Prev().String()).Msg("previous summary unavailable")
	}
	local := pipeline.Aggregate(txs)
	if curErr != nil {
		log.Debug().Err(curErr).Str("month", m.String()).Msg("summary unavailable, using local totals")
		r.Warnings = append(r.Warnings, fmt.Sprintf("summary unavailable (%v), showing totals from transactions", curErr))
		cur = nil
	}
	r.Summary = pipeline.Coalesce(cur, local)

	if prevErr == nil && prev != nil {
		p := pipeline.Coalesce(prev, pipeline.Aggregate(nil))
		c := pipeline.Compare(r.Summary, p)
		r.Previous = &p
		r.Comparison = &c
	}

	r.Top = pipeline.TopCategories(r.Summary, TopN)
	r.Weeks = pipeline.WeeklyBuckets(txs, m)
	return r, nil
}

// TxSource lists a month's transactions.
type TxSource interface {
	ListMonth(ctx context.Context, m model.Month) ([]model.Transaction, error)
}

// Budgets evaluates budgets for month m. When the month cannot be read
// the alerts are computed against zero spend and warning says why.
func Budgets(ctx context.Context, src TxSource, budgets []model.Budget, m model.Month, now time.Time) (alerts []model.Alert, warning string) {
	var txs []model.Transaction
	if len(budgets) > 0 {
		var err error
		txs, err = src.ListMonth(ctx, m)
		if err != nil {
			log := logger.FromContext(ctx)
			log.Warn().Err(err).Str("month", m.String()).Msg("budget transactions unavailable")
			warning = fmt.Sprintf("Could not load %s transactions for budgets: %v", m, err)
			txs = nil
		}
	}
	return budget.Evaluate(budgets, txs, m, now), warning
}
