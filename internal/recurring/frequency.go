package recurring

import (
	"errors"
	"sort"
	"time"

	"github.com/jask/jaskrecur/internal/database/repository"
)

// ErrNoPattern is returned when a cluster's intervals do not fit any
// cadence band or are too irregular to trust.
var ErrNoPattern = errors.New("no recurring pattern")

// Detection describes the cadence inferred from a cluster's dates.
// Only the side fields meaningful for Frequency are set.
type Detection struct {
	Frequency        repository.Frequency
	AvgInterval      float64
	IntervalVariance float64
	DayOfMonth       int        // monthly, quarterly, bimonthly, yearly
	DayOfWeek        int        // weekly, biweekly; 0 = Sunday, -1 unset
	FirstDay         int        // bimonthly
	SecondDay        int        // bimonthly
	Month            time.Month // yearly
}

// DetectFrequency classifies a time-ordered set of occurrence dates
// into a cadence. It needs at least two dates; it rejects clusters
// whose interval variance exceeds (avg/2)^2.
func DetectFrequency(dates []time.Time) (Detection, error) {
	if len(dates) < 2 {
		return Detection{}, ErrNoPattern
	}
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	intervals := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		intervals = append(intervals, daysBetween(sorted[i-1], sorted[i]))
	}
	avg := mean(intervals)
	variance := populationVariance(intervals, avg)

	half := avg * 0.5
	if variance > half*half {
		return Detection{}, ErrNoPattern
	}

	det := Detection{AvgInterval: avg, IntervalVariance: variance, DayOfWeek: -1}
	switch {
	case avg >= 0.8 && avg <= 1.2:
		det.Frequency = repository.FreqDaily
	case avg >= 13 && avg <= 18 && distinctDaysOfMonth(sorted) <= 3:
		// dates cluster around two days per month: twice-monthly, not
		// biweekly, even though the average interval overlaps
		det.Frequency = repository.FreqBimonthly
		first, second := topTwoDaysOfMonth(sorted)
		det.FirstDay, det.SecondDay = first, second
		det.DayOfMonth = mostFrequentDayOfMonth(sorted)
	case avg >= 6 && avg <= 8:
		det.Frequency = repository.FreqWeekly
		det.DayOfWeek = mostFrequentWeekday(sorted)
	case avg >= 13 && avg <= 16:
		det.Frequency = repository.FreqBiweekly
		det.DayOfWeek = mostFrequentWeekday(sorted)
	case avg >= 28 && avg <= 32:
		det.Frequency = repository.FreqMonthly
		det.DayOfMonth = mostFrequentDayOfMonth(sorted)
	case avg >= 85 && avg <= 95:
		det.Frequency = repository.FreqQuarterly
		det.DayOfMonth = mostFrequentDayOfMonth(sorted)
	case avg >= 350 && avg <= 380:
		det.Frequency = repository.FreqYearly
		det.DayOfMonth = sorted[0].Day()
		det.Month = sorted[0].Month()
	default:
		return Detection{}, ErrNoPattern
	}
	return det, nil
}

func daysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func populationVariance(vals []float64, avg float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sumSq := 0.0
	for _, v := range vals {
		d := v - avg
		sumSq += d * d
	}
	return sumSq / float64(len(vals))
}

func distinctDaysOfMonth(dates []time.Time) int {
	seen := make(map[int]bool)
	for _, d := range dates {
		seen[d.Day()] = true
	}
	return len(seen)
}

// mostFrequentDayOfMonth breaks count ties toward the larger day.
func mostFrequentDayOfMonth(dates []time.Time) int {
	counts := make(map[int]int)
	for _, d := range dates {
		counts[d.Day()]++
	}
	best, bestCount := 0, 0
	for day, count := range counts {
		if count > bestCount || (count == bestCount && day > best) {
			best, bestCount = day, count
		}
	}
	return best
}

// mostFrequentWeekday breaks count ties toward the larger index.
func mostFrequentWeekday(dates []time.Time) int {
	var counts [7]int
	for _, d := range dates {
		counts[int(d.Weekday())]++
	}
	best, bestCount := 0, 0
	for day, count := range counts {
		if count > bestCount || (count == bestCount && count > 0 && day > best) {
			best, bestCount = day, count
		}
	}
	return best
}

// topTwoDaysOfMonth returns the two most common days, ascending.
func topTwoDaysOfMonth(dates []time.Time) (int, int) {
	counts := make(map[int]int)
	for _, d := range dates {
		counts[d.Day()]++
	}
	type dayCount struct{ day, count int }
	all := make([]dayCount, 0, len(counts))
	for day, count := range counts {
		all = append(all, dayCount{day, count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].day > all[j].day
	})
	if len(all) == 1 {
		return all[0].day, all[0].day
	}
	a, b := all[0].day, all[1].day
	if a > b {
		a, b = b, a
	}
	return a, b
}
