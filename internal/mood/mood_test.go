package mood

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Mood
		ok   bool
	}{
		{"great", Great, true},
		{"terrible", Terrible, true},
		{"", None, false},
		{"Great", None, false},
		{"ecstatic", None, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Parse(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestEmojiAndLabel(t *testing.T) {
	assert.Equal(t, "🙂", Good.Emoji())
	assert.Equal(t, "Not Good", Bad.Label())
	assert.Equal(t, "Unknown", None.Emoji())
	assert.Equal(t, "Unknown", Mood("meh").Emoji())
	assert.Equal(t, "meh", Mood("meh").Label())
}

func TestVocabulary_Order(t *testing.T) {
	v := Vocabulary()
	assert.Len(t, v, 5)
	for i, m := range All {
		assert.Equal(t, m, v[i].Mood)
		assert.True(t, m.Valid())
	}
	assert.False(t, None.Valid())
}
