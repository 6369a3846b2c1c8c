package logic

import "math"

// RatioSchedule yields the number of active presses required per reward.
// FR keeps it constant; PR steps it up after every reward.
type RatioSchedule struct {
	paradigm Paradigm
	fixed    int
	step     int
}

// NewRatioSchedule creates the schedule for paradigm. fixed is used by FR only.
func NewRatioSchedule(p Paradigm, fixed int) RatioSchedule {
	return RatioSchedule{paradigm: p, fixed: fixed, step: 1}
}

// Ratio returns the presses required for the next reward.
func (r RatioSchedule) Ratio() int {
	if r.paradigm == ParadigmPR {
		return ProgressiveRatio(r.step)
	}
	return r.fixed
}

// Advance moves to the next step after a reward.
func (r *RatioSchedule) Advance() {
	if r.paradigm == ParadigmPR {
		r.step++
	}
}

// Reset returns to the first step.
func (r *RatioSchedule) Reset() {
	r.step = 1
}

// ProgressiveRatio is the exponential progression round(5·e^(0.2·n)) − 5:
// 1, 2, 4, 6, 9, 12, 15, 20, 25, 32, ...
func ProgressiveRatio(n int) int {
	return int(math.Round(5*math.Exp(0.2*float64(n)))) - 5
}
