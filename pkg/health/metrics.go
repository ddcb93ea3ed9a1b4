package health

import (
	"math"
	"slices"
	"time"
)

const day = 24 * time.Hour

// BusFactor returns the smallest number of top contributors whose combined
// commits reach half of all commits.
//
// Totals are sorted descending and accumulated while the running sum stays
// below totalCommits/2 (integer division); the contributor that brings the
// sum to or past that threshold is counted too. ok is false when stats is
// empty.
func BusFactor(stats []ContributorStat) (factor int, ok bool) {
	if len(stats) == 0 {
		return 0, false
	}

	totals := make([]int, len(stats))
	sum := 0
	for i, s := range stats {
		totals[i] = s.Total
		sum += s.Total
	}
	slices.Sort(totals)
	slices.Reverse(totals)

	half := sum / 2
	running := 0
	below := 0
	for _, t := range totals {
		running += t
		if running >= half {
			break
		}
		below++
	}
	return below + 1, true
}

// WeeklyCommitFrequency returns the average number of commits per week since
// the repository was created. A repository younger than one week counts as
// one full week. ok is false when stats is empty.
func WeeklyCommitFrequency(stats []ContributorStat, createdAt, now time.Time) (freq float64, ok bool) {
	if len(stats) == 0 {
		return 0, false
	}

	total := 0
	for _, s := range stats {
		total += s.Total
	}

	weeks := ageDays(createdAt, now) / 7
	if weeks <= 0 {
		return float64(total), true
	}
	return float64(total) / float64(weeks), true
}

// AverageIssueAge returns the mean age in whole days of the given open
// issues, rounded half up. It is 0 when there are no open issues.
func AverageIssueAge(createdAt []time.Time, now time.Time) int {
	if len(createdAt) == 0 {
		return 0
	}
	var sum int64
	for _, c := range createdAt {
		sum += ageDays(c, now)
	}
	avg := float64(sum) / float64(len(createdAt))
	return int(math.Floor(avg + 0.5))
}

// ageDays is the number of whole days between from and to, truncated toward zero.
func ageDays(from, to time.Time) int64 {
	return int64(to.Sub(from) / day)
}
