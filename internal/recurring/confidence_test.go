package recurring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/jaskrecur/internal/database/repository"
)

func monthlyTxs(n int, amount int64) []repository.Transaction {
	out := make([]repository.Transaction, n)
	for i := range out {
		out[i] = tx("m", "SPOTIFY", "Entertainment", amount, day(2024, 1, 15).AddDate(0, i, 0))
	}
	return out
}

func TestScorePerfectPattern(t *testing.T) {
	t.Parallel()

	txs := monthlyTxs(6, -1599)
	det := Detection{Frequency: repository.FreqMonthly, AvgInterval: 30, IntervalVariance: 0}

	conf := Score(txs, det, time.Time{})
	require.InDelta(t, 1.0, conf.Score, 0.001)
	require.Len(t, conf.Factors, 4)
	require.False(t, conf.DynamicAmount)
}

func TestScoreMoreOccurrencesScoreHigher(t *testing.T) {
	t.Parallel()

	det := Detection{Frequency: repository.FreqMonthly, AvgInterval: 30, IntervalVariance: 4}

	three := Score(monthlyTxs(3, -1599), det, time.Time{})
	six := Score(monthlyTxs(6, -1599), det, time.Time{})
	require.Greater(t, six.Score, three.Score)
}

func TestScoreStaleHistoryScoresLower(t *testing.T) {
	t.Parallel()

	txs := monthlyTxs(6, -1599)
	det := Detection{Frequency: repository.FreqMonthly, AvgInterval: 30, IntervalVariance: 0}
	newest := txs[len(txs)-1].Date

	fresh := Score(txs, det, newest)
	stale := Score(txs, det, newest.AddDate(0, 0, 90))
	require.Greater(t, fresh.Score, stale.Score)
}

func TestScoreZeroAsOfUsesNewestTransaction(t *testing.T) {
	t.Parallel()

	txs := monthlyTxs(4, -1599)
	det := Detection{Frequency: repository.FreqMonthly, AvgInterval: 30, IntervalVariance: 0}

	implicit := Score(txs, det, time.Time{})
	explicit := Score(txs, det, txs[len(txs)-1].Date)
	require.Equal(t, explicit.Score, implicit.Score)
}

func TestScoreFlagsDynamicAmounts(t *testing.T) {
	t.Parallel()

	det := Detection{Frequency: repository.FreqWeekly, AvgInterval: 7, IntervalVariance: 0}

	varying := []repository.Transaction{
		tx("1", "WOOLWORTHS", "Groceries", -8000, day(2024, 1, 5)),
		tx("2", "WOOLWORTHS", "Groceries", -12000, day(2024, 1, 12)),
		tx("3", "WOOLWORTHS", "Groceries", -9500, day(2024, 1, 19)),
		tx("4", "WOOLWORTHS", "Groceries", -14000, day(2024, 1, 26)),
	}
	require.True(t, Score(varying, det, time.Time{}).DynamicAmount)

	steady := monthlyTxs(4, -1599)
	require.False(t, Score(steady, det, time.Time{}).DynamicAmount)
}

func TestCoefficientOfVariation(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0.0, coefficientOfVariation(monthlyTxs(3, -1599)))

	zeroMean := []repository.Transaction{
		tx("1", "X", "", 100, day(2024, 1, 1)),
		tx("2", "X", "", -100, day(2024, 1, 2)),
	}
	require.Equal(t, 1.0, coefficientOfVariation(zeroMean))
}
