package views

import (
	"github.com/AnshRaj112/soullog/internal/models"
	"github.com/AnshRaj112/soullog/internal/mood"
)

type Mode string

const (
	ModeView Mode = "view"
	ModeEdit Mode = "edit"
)

func ParseMode(s string) Mode {
	if s == string(ModeEdit) {
		return ModeEdit
	}
	return ModeView
}

// EditState identifies the entry being edited. It travels with the edit form
// so a save always targets the entry that was opened.
type EditState struct {
	EntryID      string
	OriginalMood mood.Mood
}

// Resolve returns what a save should write: the edited text and the selected
// mood, or the original mood when none was picked.
func (s EditState) Resolve(text string, selected mood.Mood) (string, mood.Mood) {
	if selected == mood.None {
		return text, s.OriginalMood
	}
	return text, selected
}

// Detail is the entry detail screen.
type Detail struct {
	Entry *models.Entry
	Mode  Mode
	Edit  EditState
}

// OpenEntry starts the detail screen for e in view mode. A nil entry renders
// as not found.
func OpenEntry(e *models.Entry) Detail {
	d := Detail{Entry: e, Mode: ModeView}
	if e != nil {
		d.Edit = EditState{EntryID: e.ID, OriginalMood: e.Mood}
	}
	return d
}

func (d Detail) Found() bool {
	return d.Entry != nil
}

// WithMode switches between view and edit. Anything but an explicit edit
// request, or any request for a missing entry, gives view mode.
func (d Detail) WithMode(m Mode) Detail {
	if m != ModeEdit || !d.Found() {
		m = ModeView
	}
	d.Mode = m
	return d
}

func (d Detail) Editing() bool {
	return d.Mode == ModeEdit
}
