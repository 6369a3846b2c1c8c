package logic

// Window is a time span [Start, End] on the session clock.
// End is always derived from Start plus a duration.
type Window struct {
	Start Millis
	End   Millis
}

// NewWindow returns the window starting at start and lasting d.
func NewWindow(start, d Millis) Window {
	return Window{Start: start, End: start + d}
}

// Contains reports whether t lies in the window, both endpoints included.
func (w Window) Contains(t Millis) bool {
	return t >= w.Start && t <= w.End
}

// ContainsOpen reports whether t lies strictly inside the window.
// The cycling laser uses open bounds for its stimulation period.
func (w Window) ContainsOpen(t Millis) bool {
	return t > w.Start && t < w.End
}

// Expired reports whether t is past the end of the window.
func (w Window) Expired(t Millis) bool {
	return t > w.End
}

// Duration returns End - Start.
func (w Window) Duration() Millis {
	return w.End - w.Start
}

// IsZero reports whether the window was never scheduled.
func (w Window) IsZero() bool {
	return w.Start == 0 && w.End == 0
}

// Relative shifts both ends back by offset.
func (w Window) Relative(offset Millis) Window {
	return Window{Start: w.Start - offset, End: w.End - offset}
}
