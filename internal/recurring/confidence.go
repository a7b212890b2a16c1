package recurring

import (
	"fmt"
	"math"
	"time"

	"github.com/jask/jaskrecur/internal/database/repository"
)

// Factor is one weighted component of a confidence score, with a
// human-readable description for review UIs.
type Factor struct {
	Name        string
	Score       float64
	Weight      float64
	Description string
}

// Confidence is the combined 0-1 score for a candidate pattern.
type Confidence struct {
	Score         float64
	Factors       []Factor
	DynamicAmount bool
}

// Score rates a cluster against its detected cadence using four
// weighted factors: occurrence count, timing consistency, amount
// consistency, and recency relative to asOf. A zero asOf falls back
// to the cluster's newest transaction date so scoring never reads
// the wall clock.
func Score(txs []repository.Transaction, det Detection, asOf time.Time) Confidence {
	dates := sortedDates(txs)
	newest := dates[len(dates)-1]
	if asOf.IsZero() {
		asOf = newest
	}

	factors := []Factor{
		occurrenceFactor(len(txs)),
		timingFactor(det),
		amountFactor(txs),
		recencyFactor(newest, asOf),
	}

	var weighted, totalWeight float64
	for _, f := range factors {
		weighted += f.Score * f.Weight
		totalWeight += f.Weight
	}
	score := 0.0
	if totalWeight > 0 {
		score = weighted / totalWeight
	}

	return Confidence{
		Score:         score,
		Factors:       factors,
		DynamicAmount: coefficientOfVariation(txs) > 0.15,
	}
}

func occurrenceFactor(n int) Factor {
	score := 0.5
	switch {
	case n >= 6:
		score = 1.0
	case n >= 4:
		score = 0.8
	}
	return Factor{
		Name:        "occurrences",
		Score:       score,
		Weight:      0.3,
		Description: fmt.Sprintf("%d occurrences in history", n),
	}
}

func timingFactor(det Detection) Factor {
	consistency := 0.0
	if det.AvgInterval > 0 {
		consistency = 1 - math.Min(1, math.Sqrt(det.IntervalVariance)/det.AvgInterval)
	}
	score := 0.3
	switch {
	case consistency >= 0.8:
		score = 1.0
	case consistency >= 0.6:
		score = 0.7
	}
	return Factor{
		Name:        "timing",
		Score:       score,
		Weight:      0.3,
		Description: fmt.Sprintf("interval consistency %.0f%% around %.1f days", consistency*100, det.AvgInterval),
	}
}

func amountFactor(txs []repository.Transaction) Factor {
	cv := coefficientOfVariation(txs)
	score := 0.2
	switch {
	case cv <= 0.1:
		score = 1.0
	case cv <= 0.3:
		score = 0.8
	case cv <= 0.5:
		score = 0.5
	}
	return Factor{
		Name:        "amount",
		Score:       score,
		Weight:      0.2,
		Description: fmt.Sprintf("amount variation %.0f%%", cv*100),
	}
}

func recencyFactor(newest, asOf time.Time) Factor {
	days := int(asOf.Sub(newest).Hours() / 24)
	score := 0.4
	switch {
	case days <= 7:
		score = 1.0
	case days <= 30:
		score = 0.9
	case days <= 60:
		score = 0.7
	}
	return Factor{
		Name:        "recency",
		Score:       score,
		Weight:      0.2,
		Description: fmt.Sprintf("last seen %d days ago", days),
	}
}

// coefficientOfVariation measures amount spread relative to the mean
// magnitude. A zero mean counts as maximally inconsistent.
func coefficientOfVariation(txs []repository.Transaction) float64 {
	amounts := make([]float64, len(txs))
	for i, tx := range txs {
		amounts[i] = float64(tx.AmountCents)
	}
	avg := mean(amounts)
	if avg == 0 {
		return 1.0
	}
	return math.Sqrt(populationVariance(amounts, avg)) / math.Abs(avg)
}
