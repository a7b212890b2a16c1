package recurring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/jaskrecur/internal/database/repository"
)

func netflixHistory(n int) []repository.Transaction {
	out := make([]repository.Transaction, n)
	for i := range out {
		out[i] = tx(fmt.Sprintf("nf-%d", i), "NETFLIX.COM 88442211", "Entertainment", -1599, day(2024, 1, 15).AddDate(0, i, 0))
	}
	return out
}

func TestDetectFindsMonthlyPattern(t *testing.T) {
	t.Parallel()

	txs := netflixHistory(6)
	// below the occurrence floor
	txs = append(txs, tx("cafe-1", "RANDOM CAFE", "Dining", -800, day(2024, 1, 2)))
	txs = append(txs, tx("cafe-2", "RANDOM CAFE", "Dining", -900, day(2024, 1, 22)))
	// irregular: intervals fit no band
	txs = append(txs, tx("odd-1", "ODD SHOP", "Shopping", -1000, day(2024, 1, 1)))
	txs = append(txs, tx("odd-2", "ODD SHOP", "Shopping", -1000, day(2024, 1, 6)))
	txs = append(txs, tx("odd-3", "ODD SHOP", "Shopping", -1000, day(2024, 2, 20)))
	txs = append(txs, tx("odd-4", "ODD SHOP", "Shopping", -1000, day(2024, 3, 1)))

	proposals := Detector{}.Detect(txs)
	require.Len(t, proposals, 1)

	p := proposals[0]
	require.Equal(t, "NETFLIX.COM", p.NormalizedDescription)
	require.Equal(t, repository.FreqMonthly, p.Frequency)
	require.NotNil(t, p.DayOfMonth)
	require.Equal(t, 15, *p.DayOfMonth)
	require.Equal(t, int64(-1599), p.AmountCents)
	require.Equal(t, -1599.0, p.Stats.Median)
	require.False(t, p.DynamicAmount)
	require.Equal(t, 6, p.Occurrences)
	require.Len(t, p.SourceTransactionIDs, 6)
	require.Equal(t, day(2024, 1, 15), p.SuggestedStartDate)
	require.GreaterOrEqual(t, p.ConfidenceScore, DefaultConfidenceThreshold)
}

func TestDetectSkipsLinkedTransactions(t *testing.T) {
	t.Parallel()

	txs := netflixHistory(6)
	tplID := "tpl-existing"
	for i := range txs {
		txs[i].RecurringTemplateID = &tplID
	}
	require.Empty(t, Detector{}.Detect(txs))
}

func TestDetectOrdersByConfidence(t *testing.T) {
	t.Parallel()

	txs := netflixHistory(6)
	// fewer occurrences score lower
	for i := 0; i < 4; i++ {
		txs = append(txs, tx(fmt.Sprintf("gym-%d", i), "ANYTIME FITNESS", "Health", -2500, day(2024, 1, 3).AddDate(0, 0, i*7)))
	}

	proposals := Detector{}.Detect(txs)
	require.Len(t, proposals, 2)
	require.Equal(t, "NETFLIX.COM", proposals[0].NormalizedDescription)
	require.Equal(t, "ANYTIME FITNESS", proposals[1].NormalizedDescription)
	require.GreaterOrEqual(t, proposals[0].ConfidenceScore, proposals[1].ConfidenceScore)
}

func TestDetectRespectsMinOccurrences(t *testing.T) {
	t.Parallel()

	proposals := Detector{MinOccurrences: 7}.Detect(netflixHistory(6))
	require.Empty(t, proposals)
}

func TestDetectSimilarityClusteringMergesVariants(t *testing.T) {
	t.Parallel()

	// description alternates between two spellings with distinct group
	// keys; each half alone is a 3-occurrence cluster at ~61 days,
	// which fits no cadence band
	var txs []repository.Transaction
	for i := 0; i < 6; i++ {
		desc := "ACME POWER CO"
		if i%2 == 1 {
			desc = "ACME POWER COMPANY"
		}
		txs = append(txs, tx(fmt.Sprintf("pw-%d", i), desc, "Utilities", -12000, day(2024, 1, 15).AddDate(0, i, 0)))
	}

	require.Empty(t, Detector{}.Detect(txs))

	proposals := Detector{SimilarityThreshold: 70}.Detect(txs)
	require.Len(t, proposals, 1)
	require.Equal(t, repository.FreqMonthly, proposals[0].Frequency)
	require.Equal(t, 6, proposals[0].Occurrences)
}

func TestDetectWeeklySetsDayOfWeek(t *testing.T) {
	t.Parallel()

	var txs []repository.Transaction
	for i := 0; i < 5; i++ {
		// 2024-01-03 is a Wednesday
		txs = append(txs, tx(fmt.Sprintf("gym-%d", i), "ANYTIME FITNESS", "Health", -2500, day(2024, 1, 3).AddDate(0, 0, i*7)))
	}
	proposals := Detector{}.Detect(txs)
	require.Len(t, proposals, 1)
	require.Equal(t, repository.FreqWeekly, proposals[0].Frequency)
	require.NotNil(t, proposals[0].DayOfWeek)
	require.Equal(t, 3, *proposals[0].DayOfWeek)
	require.Nil(t, proposals[0].DayOfMonth)
}
