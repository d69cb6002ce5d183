package models

import "github.com/AnshRaj112/soullog/internal/mood"

// MoodCount is one row of the per-mood tally, kept in first-seen order.
type MoodCount struct {
	Mood  mood.Mood `json:"mood"`
	Count int       `json:"count"`
}

// Trends summarises one user's entries. Derived on demand, never stored.
type Trends struct {
	TotalEntries int         `json:"totalEntries"`
	MoodCounts   []MoodCount `json:"moodCounts"`
	TopMood      mood.Mood   `json:"topMood,omitempty"`
	Streak       int         `json:"streak"`
}

// Count returns how many entries carry m.
func (t Trends) Count(m mood.Mood) int {
	for _, mc := range t.MoodCounts {
		if mc.Mood == m {
			return mc.Count
		}
	}
	return 0
}

// MoodShare is one bar of the insights chart.
type MoodShare struct {
	Mood    mood.Mood
	Count   int
	Percent float64
}

// Breakdown lists the share of every mood with at least one entry, in vocabulary order.
func (t Trends) Breakdown() []MoodShare {
	if t.TotalEntries == 0 {
		return nil
	}
	var out []MoodShare
	for _, m := range mood.All {
		c := t.Count(m)
		if c == 0 {
			continue
		}
		out = append(out, MoodShare{
			Mood:    m,
			Count:   c,
			Percent: float64(c) / float64(t.TotalEntries) * 100,
		})
	}
	return out
}
