package store

import (
	"encoding/json"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// normalize deep-copies v into the canonical value shapes. Empty maps and nil
// map members are dropped.
func normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string, bool, int64, float64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case float32:
		return float64(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		return f, nil
	case primitive.DateTime:
		return int64(t), nil
	case map[string]any:
		return normalizeMap(t)
	case primitive.M:
		return normalizeMap(map[string]any(t))
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return normalizeMap(m)
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
		return normalizeMap(m)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

func normalizeMap(in map[string]any) (any, error) {
	out := make(map[string]any, len(in))
	for k, v := range in {
		n, err := normalize(v)
		if err != nil {
			return nil, err
		}
		if n != nil {
			out[k] = n
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// getNode walks segs from root and returns a copy of what it finds.
func getNode(root map[string]any, segs []string) (any, bool) {
	var cur any = root
	for _, s := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[s]; !ok {
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	if m, ok := cur.(map[string]any); ok && len(m) == 0 {
		return nil, false
	}
	return clone(cur), true
}

// setNode writes an already-normalized value at segs, creating parents. A nil
// value removes the node and prunes parents left empty.
func setNode(root map[string]any, segs []string, value any) {
	if value == nil {
		deleteNode(root, segs)
		return
	}
	cur := root
	for _, s := range segs[:len(segs)-1] {
		next, ok := cur[s].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[s] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = value
}

func deleteNode(root map[string]any, segs []string) {
	if len(segs) == 0 {
		return
	}
	if len(segs) == 1 {
		delete(root, segs[0])
		return
	}
	child, ok := root[segs[0]].(map[string]any)
	if !ok {
		return
	}
	deleteNode(child, segs[1:])
	if len(child) == 0 {
		delete(root, segs[0])
	}
}

func clone(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(m))
	for k, c := range m {
		out[k] = clone(c)
	}
	return out
}

// bsonValue converts a canonical value into what the mongo driver writes.
func bsonValue(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(bson.M, len(m))
	for k, c := range m {
		out[k] = bsonValue(c)
	}
	return out
}

// Int64 reads an integer node regardless of how the driver decoded it.
func Int64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int64(t), true
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	default:
		return 0, false
	}
}
