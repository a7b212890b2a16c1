package recurring

import (
	"math"
	"sort"
	"time"

	"github.com/jask/jaskrecur/internal/database/repository"
)

// AmountStats summarizes a cluster's amounts, in cents.
type AmountStats struct {
	Avg    float64
	Median float64
	Min    float64
	Max    float64
	StdDev float64
	CV     float64
}

// Proposal is a transient, unconfirmed detection result: the
// suggested template fields plus the evidence behind them. A user
// may edit any suggested field before confirmation turns it into a
// RecurringTemplate.
type Proposal struct {
	NormalizedDescription string
	OriginalDescription   string
	Category              string
	Frequency             repository.Frequency
	DayOfMonth            *int
	DayOfWeek             *int
	BimonthlyFirstDay     *int
	BimonthlySecondDay    *int
	AmountCents           int64 // mean of the cluster
	Stats                 AmountStats
	DynamicAmount         bool
	Occurrences           int
	FirstDate             time.Time
	LastDate              time.Time
	ConfidenceScore       float64
	ConfidenceFactors     []Factor
	SuggestedStartDate    time.Time
	SourceTransactionIDs  []string
}

// BuildProposal assembles a proposal from a scored cluster.
func BuildProposal(g Group, det Detection, conf Confidence) Proposal {
	txs := g.Transactions
	dates := sortedDates(txs)

	p := Proposal{
		NormalizedDescription: Normalize(txs[0].Description),
		OriginalDescription:   txs[0].Description,
		Category:              txs[0].Category,
		Frequency:             det.Frequency,
		Stats:                 amountStats(txs),
		DynamicAmount:         conf.DynamicAmount,
		Occurrences:           len(txs),
		FirstDate:             dates[0],
		LastDate:              dates[len(dates)-1],
		ConfidenceScore:       conf.Score,
		ConfidenceFactors:     conf.Factors,
		SuggestedStartDate:    dates[0],
	}
	p.AmountCents = int64(p.Stats.Avg)

	switch det.Frequency {
	case repository.FreqWeekly, repository.FreqBiweekly:
		if det.DayOfWeek >= 0 {
			dow := det.DayOfWeek
			p.DayOfWeek = &dow
		}
	case repository.FreqMonthly, repository.FreqQuarterly, repository.FreqYearly:
		if det.DayOfMonth > 0 {
			dom := det.DayOfMonth
			p.DayOfMonth = &dom
		}
	case repository.FreqBimonthly:
		first, second := det.FirstDay, det.SecondDay
		p.BimonthlyFirstDay = &first
		p.BimonthlySecondDay = &second
		if det.DayOfMonth > 0 {
			dom := det.DayOfMonth
			p.DayOfMonth = &dom
		}
	}

	for _, tx := range txs {
		p.SourceTransactionIDs = append(p.SourceTransactionIDs, tx.ID)
	}
	return p
}

func amountStats(txs []repository.Transaction) AmountStats {
	amounts := make([]float64, len(txs))
	for i, tx := range txs {
		amounts[i] = float64(tx.AmountCents)
	}
	sort.Float64s(amounts)

	avg := mean(amounts)
	std := math.Sqrt(populationVariance(amounts, avg))
	cv := 1.0
	if avg != 0 {
		cv = std / math.Abs(avg)
	}
	return AmountStats{
		Avg:    avg,
		Median: median(amounts),
		Min:    amounts[0],
		Max:    amounts[len(amounts)-1],
		StdDev: std,
		CV:     cv,
	}
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
