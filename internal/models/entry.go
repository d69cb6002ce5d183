package models

import "github.com/AnshRaj112/soullog/internal/mood"

// Entry is one journal record stored at users/{uid}/journals/{id}.
// ID and Timestamp are set once at creation; edits only touch Text and Mood.
type Entry struct {
	ID        string    `json:"id" bson:"id"`
	Text      string    `json:"text" bson:"text"`
	Mood      mood.Mood `json:"mood,omitempty" bson:"mood,omitempty"`
	Timestamp int64     `json:"timestamp" bson:"timestamp"` // milliseconds since epoch
}

// Result is what create/update/delete return instead of an error value.
type Result struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Failed builds an unsuccessful Result from err.
func Failed(err error) Result {
	return Result{Success: false, Error: err.Error()}
}
