// Package store is the hierarchical key-value tree the journal lives in.
//
// Paths are slash-separated, e.g. users/{uid}/journals/{entryId}. The first two
// segments name a document (collection and key); deeper segments address fields
// inside it. Every driver stores values as plain JSON-like trees: maps keyed by
// string, strings, bools, int64 and float64. Writing nil removes a node and empty
// maps never survive a write.
package store

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrInvalidPath         = errors.New("store: invalid path")
	ErrCrossDocumentUpdate = errors.New("store: update spans more than one document")
	ErrUnsupportedValue    = errors.New("store: unsupported value type")
	ErrNotFound            = errors.New("store: node not found")
)

// Tree is the data store contract the journal layer depends on.
type Tree interface {
	// Set replaces the node at path. A nil value deletes it.
	Set(ctx context.Context, path string, value any) error
	// Get returns the node at path and whether it exists.
	Get(ctx context.Context, path string) (any, bool, error)
	// Update applies every path→value pair atomically. All paths must sit
	// inside one document and none may be an ancestor of another.
	Update(ctx context.Context, values map[string]any) error
	// UpdateExisting is Update guarded by the existence of parent, checked in
	// the same atomic step. Every path must lie below parent. When parent is
	// missing nothing is written and ErrNotFound is returned.
	UpdateExisting(ctx context.Context, parent string, values map[string]any) error
	// Delete removes the node at path. Deleting a missing node is not an error.
	Delete(ctx context.Context, path string) error
	// PushID returns a new unique, time-ordered child id under parent.
	PushID(ctx context.Context, parent string) (string, error)
}

// Join builds a path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Split validates path and returns its segments. A path needs at least the
// collection and document segments.
func Split(path string) ([]string, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, ErrInvalidPath
	}
	segs := strings.Split(trimmed, "/")
	if len(segs) < 2 {
		return nil, ErrInvalidPath
	}
	for _, s := range segs {
		if s == "" || strings.ContainsAny(s, ".$#[]") {
			return nil, ErrInvalidPath
		}
	}
	return segs, nil
}

// splitUpdate validates an Update batch and returns the shared document segments.
// The returned segments are full paths.
func splitUpdate(values map[string]any) (doc [2]string, fields map[string][]string, err error) {
	if len(values) == 0 {
		return doc, nil, nil
	}
	fields = make(map[string][]string, len(values))
	first := true
	for p := range values {
		segs, err := Split(p)
		if err != nil {
			return doc, nil, err
		}
		if len(segs) < 3 {
			// Whole-document writes go through Set.
			return doc, nil, ErrInvalidPath
		}
		d := [2]string{segs[0], segs[1]}
		if first {
			doc = d
			first = false
		} else if d != doc {
			return doc, nil, ErrCrossDocumentUpdate
		}
		fields[p] = segs
	}
	for a, sa := range fields {
		for b, sb := range fields {
			if a != b && isPrefix(sa, sb) {
				return doc, nil, ErrInvalidPath
			}
		}
	}
	return doc, fields, nil
}

func isPrefix(prefix, segs []string) bool {
	if len(prefix) > len(segs) {
		return false
	}
	for i := range prefix {
		if prefix[i] != segs[i] {
			return false
		}
	}
	return true
}

// splitGuarded validates an UpdateExisting batch. Besides the Update rules, every
// path has to sit strictly below parent.
func splitGuarded(parent string, values map[string]any) (parentSegs []string, doc [2]string, fields map[string][]string, err error) {
	parentSegs, err = Split(parent)
	if err != nil {
		return nil, doc, nil, err
	}
	doc, fields, err = splitUpdate(values)
	if err != nil {
		return nil, doc, nil, err
	}
	if len(fields) == 0 {
		doc = [2]string{parentSegs[0], parentSegs[1]}
	}
	for _, segs := range fields {
		if len(segs) <= len(parentSegs) || !isPrefix(parentSegs, segs) {
			return nil, doc, nil, ErrInvalidPath
		}
	}
	return parentSegs, doc, fields, nil
}
