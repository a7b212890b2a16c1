package projection

import (
	"math"
	"sort"

	"github.com/jask/jaskrecur/internal/database/repository"
)

// Diagnostics is an informational report on a dynamic template's
// matched history: where the estimate came from and what a reviewer
// should eyeball. It never feeds back into EstimateDynamicAmount.
type Diagnostics struct {
	SampleSize              int
	EstimateCents           int64
	MeanCents               float64
	MedianCents             float64
	SlopeCentsPerOccurrence float64
	Direction               string // rising, falling, flat
	OutlierIDs              []string
}

// Diagnose computes review diagnostics for a template over its
// rule-matched history (date order): a least-squares drift per
// occurrence and IQR outliers.
func Diagnose(tpl repository.RecurringTemplate, ruleset []repository.RecurringRule, history []repository.Transaction) Diagnostics {
	matched := matchingTransactions(ruleset, history)
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Date.Before(matched[j].Date) })

	d := Diagnostics{
		SampleSize:    len(matched),
		EstimateCents: EstimateDynamicAmount(tpl, ruleset, history),
		Direction:     "flat",
	}
	if len(matched) == 0 {
		return d
	}

	amounts := make([]float64, len(matched))
	for i, tx := range matched {
		amounts[i] = float64(tx.AmountCents)
	}
	d.MeanCents = meanOf(amounts)

	sorted := append([]float64(nil), amounts...)
	sort.Float64s(sorted)
	d.MedianCents = quantile(sorted, 0.5)

	if len(amounts) >= 3 {
		d.SlopeCentsPerOccurrence = slope(amounts)
		// a cent of drift per occurrence is noise on real amounts
		switch {
		case d.SlopeCentsPerOccurrence > 100:
			d.Direction = "rising"
		case d.SlopeCentsPerOccurrence < -100:
			d.Direction = "falling"
		}
	}

	if len(sorted) >= 4 {
		q1 := quantile(sorted, 0.25)
		q3 := quantile(sorted, 0.75)
		iqr := q3 - q1
		lo, hi := q1-1.5*iqr, q3+1.5*iqr
		for i, tx := range matched {
			if amounts[i] < lo || amounts[i] > hi {
				d.OutlierIDs = append(d.OutlierIDs, tx.ID)
			}
		}
	}
	return d
}

func meanOf(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// slope fits amount against occurrence index by least squares.
func slope(vals []float64) float64 {
	n := float64(len(vals))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range vals {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
