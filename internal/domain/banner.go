package domain

import "time"

// Banner is a transient acknowledgment with no dismiss control. It is visible
// until its deadline passes. Showing it again replaces the deadline, so an
// earlier trigger can never hide a banner a later trigger displayed.
type Banner struct {
	Until time.Time `json:"until"`
}

func (b *Banner) Show(now time.Time, d time.Duration) {
	b.Until = now.Add(d)
}

func (b Banner) Visible(now time.Time) bool {
	return now.Before(b.Until)
}
