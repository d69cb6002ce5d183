package mood

// Mood is one of a fixed closed set of mood tags. The zero value means no mood.
type Mood string

const (
	None     Mood = ""
	Great    Mood = "great"
	Good     Mood = "good"
	Okay     Mood = "okay"
	Bad      Mood = "bad"
	Terrible Mood = "terrible"
)

// Details holds display info for a mood.
type Details struct {
	Mood  Mood
	Emoji string
	Label string
}

// All lists the vocabulary in display order, best to worst.
var All = []Mood{Great, Good, Okay, Bad, Terrible}

var vocabulary = map[Mood]Details{
	Great:    {Mood: Great, Emoji: "😊", Label: "Great"},
	Good:     {Mood: Good, Emoji: "🙂", Label: "Good"},
	Okay:     {Mood: Okay, Emoji: "😐", Label: "Okay"},
	Bad:      {Mood: Bad, Emoji: "😔", Label: "Not Good"},
	Terrible: {Mood: Terrible, Emoji: "😣", Label: "Rough"},
}

// Parse returns the mood for s, or None and false when s is not in the vocabulary.
func Parse(s string) (Mood, bool) {
	m := Mood(s)
	if _, ok := vocabulary[m]; !ok {
		return None, false
	}
	return m, true
}

// Valid reports whether m belongs to the vocabulary.
func (m Mood) Valid() bool {
	_, ok := vocabulary[m]
	return ok
}

// Emoji returns the display emoji, or "Unknown" for anything outside the vocabulary.
func (m Mood) Emoji() string {
	if d, ok := vocabulary[m]; ok {
		return d.Emoji
	}
	return "Unknown"
}

// Label returns the display label, or the raw tag when unknown.
func (m Mood) Label() string {
	if d, ok := vocabulary[m]; ok {
		return d.Label
	}
	return string(m)
}

// Vocabulary returns the display details for every mood in display order.
func Vocabulary() []Details {
	out := make([]Details, 0, len(All))
	for _, m := range All {
		out = append(out, vocabulary[m])
	}
	return out
}
