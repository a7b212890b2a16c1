package recurring

import (
	"sort"
	"time"

	"github.com/jask/jaskrecur/internal/database/repository"
)

// ClassifyInterval is the coarse classifier used by the analyze CLI
// path. Its band edges differ slightly from DetectFrequency and are
// load-bearing for downstream tooling; change neither without the
// other.
func ClassifyInterval(avgDays float64) repository.Frequency {
	switch {
	case avgDays <= 1:
		return repository.FreqDaily
	case avgDays >= 6 && avgDays <= 8:
		return repository.FreqWeekly
	case avgDays >= 13 && avgDays <= 16:
		return repository.FreqBiweekly
	case avgDays >= 28 && avgDays <= 31:
		return repository.FreqMonthly
	case avgDays >= 89 && avgDays <= 93:
		return repository.FreqQuarterly
	case avgDays >= 180 && avgDays <= 186:
		return repository.FreqBiannual
	case avgDays >= 364 && avgDays <= 366:
		return repository.FreqYearly
	default:
		return repository.FreqNone
	}
}

// Summary is one line of historical-analysis output.
type Summary struct {
	Key             string
	Description     string
	Frequency       repository.Frequency
	AvgIntervalDays float64
	Occurrences     int
	AvgAmountCents  int64
	FirstDate       time.Time
	LastDate        time.Time
}

// Analyze runs the coarse key-clustered pass over a history and
// summarizes every group that classifies. minOccurrences defaults
// to 2 when zero or negative.
func Analyze(txs []repository.Transaction, minOccurrences int) []Summary {
	if minOccurrences <= 0 {
		minOccurrences = 2
	}
	var out []Summary
	for _, g := range ClusterByKey(txs) {
		if len(g.Transactions) < minOccurrences {
			continue
		}
		dates := sortedDates(g.Transactions)
		intervals := make([]float64, 0, len(dates)-1)
		for i := 1; i < len(dates); i++ {
			intervals = append(intervals, daysBetween(dates[i-1], dates[i]))
		}
		avg := mean(intervals)
		freq := ClassifyInterval(avg)
		if freq == repository.FreqNone {
			continue
		}
		var sum int64
		for _, tx := range g.Transactions {
			sum += tx.AmountCents
		}
		out = append(out, Summary{
			Key:             g.Key,
			Description:     g.Transactions[0].Description,
			Frequency:       freq,
			AvgIntervalDays: avg,
			Occurrences:     len(g.Transactions),
			AvgAmountCents:  sum / int64(len(g.Transactions)),
			FirstDate:       dates[0],
			LastDate:        dates[len(dates)-1],
		})
	}
	return out
}

func sortedDates(txs []repository.Transaction) []time.Time {
	dates := make([]time.Time, len(txs))
	for i, tx := range txs {
		dates[i] = tx.Date
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
