package utils

import (
	"math"
	"time"
)

// SameUTCDay reports whether a and b fall on the same UTC calendar date.
func SameUTCDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// BeforeUTCDay reports whether a's UTC calendar date is strictly before b's.
func BeforeUTCDay(a, b time.Time) bool {
	au := a.UTC()
	bu := b.UTC()
	aDay := time.Date(au.Year(), au.Month(), au.Day(), 0, 0, 0, 0, time.UTC)
	bDay := time.Date(bu.Year(), bu.Month(), bu.Day(), 0, 0, 0, 0, time.UTC)
	return aDay.Before(bDay)
}

// MonthKey formats t as "YYYY-MM" in UTC, the leaderboard bucket key.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// RemainingDays returns whole days left until end, never negative.
func RemainingDays(end time.Time, now time.Time) int {
	remaining := int(math.Ceil(end.Sub(now).Hours() / 24))
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsFinitePositive reports whether f is a usable price value.
func IsFinitePositive(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f > 0
}
