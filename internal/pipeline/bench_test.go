package pipeline

import (
	"fmt"
	"testing"

	"fintrack/internal/model"

	"github.com/shopspring/decimal"
)

func syntheticMonth(n int) []model.Transaction {
	cats := []string{"Food", "Rent", "Salary", "Transport", ""}
	txs := make([]model.Transaction, n)
	for i := range txs {
		txs[i] = model.Transaction{
			Date:     fmt.Sprintf("2025-09-%02d", i%30+1),
			Merchant: fmt.Sprintf("merchant-%d", i%40),
			Amount:   decimal.NewFromFloat(float64(i%500) - 50.25),
			Category: cats[i%len(cats)],
		}
	}
	return txs
}

func BenchmarkAggregate(b *testing.B) {
	txs := syntheticMonth(10_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Aggregate(txs)
	}
}

func BenchmarkWeeklyBuckets(b *testing.B) {
	txs := syntheticMonth(10_000)
	m := model.Month{Year: 2025, Month: 9}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = WeeklyBuckets(txs, m)
	}
}

func BenchmarkSortTransactions(b *testing.B) {
	txs := syntheticMonth(10_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = SortTransactions(txs, DefaultSort())
	}
}
