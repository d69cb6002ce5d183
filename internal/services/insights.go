package services

import (
	"sort"
	"time"

	"github.com/AnshRaj112/soullog/internal/models"
	"github.com/AnshRaj112/soullog/internal/mood"
)

// Aggregate computes the mood trends of entries as of now. Calendar days are
// taken in now's location. The order of entries does not matter.
func Aggregate(entries []models.Entry, now time.Time) models.Trends {
	if len(entries) == 0 {
		return models.Trends{MoodCounts: []models.MoodCount{}}
	}

	// Counts keep first-seen order so ties go to the mood encountered first.
	counts := make([]models.MoodCount, 0, len(mood.All))
	index := make(map[mood.Mood]int, len(mood.All))
	for _, e := range entries {
		if e.Mood == mood.None {
			continue
		}
		i, ok := index[e.Mood]
		if !ok {
			i = len(counts)
			index[e.Mood] = i
			counts = append(counts, models.MoodCount{Mood: e.Mood})
		}
		counts[i].Count++
	}

	var top mood.Mood
	max := 0
	for _, c := range counts {
		if c.Count > max {
			max = c.Count
			top = c.Mood
		}
	}

	return models.Trends{
		TotalEntries: len(entries),
		MoodCounts:   counts,
		TopMood:      top,
		Streak:       streak(entries, now),
	}
}

// streak counts consecutive calendar days with entries, ending today or yesterday.
func streak(entries []models.Entry, now time.Time) int {
	loc := now.Location()

	seen := make(map[time.Time]struct{}, len(entries))
	days := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		d := midnight(time.UnixMilli(e.Timestamp).In(loc))
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(a, b int) bool { return days[a].After(days[b]) })

	yesterday := midnight(now).AddDate(0, 0, -1)
	if days[0].Before(yesterday) {
		return 0
	}

	n := 1
	for i := 1; i < len(days); i++ {
		if !days[i].Equal(days[i-1].AddDate(0, 0, -1)) {
			break
		}
		n++
	}
	return n
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
