package overlay

import (
	"math"
	"time"
)

type snoozeChoice struct {
	label   string
	minutes func(now time.Time) int
}

func fixedMinutes(n int) func(time.Time) int {
	return func(time.Time) int { return n }
}

var snoozeChoices = []snoozeChoice{
	{label: "1 min", minutes: fixedMinutes(1)},
	{label: "5 min", minutes: fixedMinutes(5)},
	{label: "10 min", minutes: fixedMinutes(10)},
	{label: "15 min", minutes: fixedMinutes(15)},
	{label: "30 min", minutes: fixedMinutes(30)},
	{label: "1 hour", minutes: fixedMinutes(60)},
	{label: "2 hours", minutes: fixedMinutes(120)},
	{label: "4 hours", minutes: fixedMinutes(240)},
	{label: "tmrw 9:00", minutes: func(now time.Time) int { return minutesUntilTomorrow(now, 9) }},
	{label: "tmrw 13:00", minutes: func(now time.Time) int { return minutesUntilTomorrow(now, 13) }},
}

// minutesUntilTomorrow rounds up to whole minutes and is at least 1
func minutesUntilTomorrow(now time.Time, hour int) int {
	y, m, d := now.Date()
	target := time.Date(y, m, d+1, hour, 0, 0, 0, now.Location())
	return max(1, int(math.Ceil(target.Sub(now).Minutes())))
}
