package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    []string
		wantErr bool
	}{
		{name: "document", path: "users/u1", want: []string{"users", "u1"}},
		{name: "field", path: "/users/u1/journals/e1/", want: []string{"users", "u1", "journals", "e1"}},
		{name: "empty", path: "", wantErr: true},
		{name: "collection only", path: "users", wantErr: true},
		{name: "empty segment", path: "users//journals", wantErr: true},
		{name: "dot", path: "users/u.1", wantErr: true},
		{name: "dollar", path: "users/u1/$set", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitUpdate(t *testing.T) {
	_, _, err := splitUpdate(map[string]any{"users/a/x": 1, "users/b/x": 2})
	assert.ErrorIs(t, err, ErrCrossDocumentUpdate)

	_, _, err = splitUpdate(map[string]any{"users/a/x": 1, "users/a/x/y": 2})
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, _, err = splitUpdate(map[string]any{"users/a": map[string]any{"x": 1}})
	assert.ErrorIs(t, err, ErrInvalidPath)

	doc, fields, err := splitUpdate(map[string]any{"users/a/x": 1, "users/a/y": 2})
	require.NoError(t, err)
	assert.Equal(t, [2]string{"users", "a"}, doc)
	assert.Len(t, fields, 2)
}

func TestNormalize(t *testing.T) {
	got, err := normalize(map[string]any{
		"a": 1,
		"b": json.Number("2"),
		"c": json.Number("2.5"),
		"d": nil,
		"e": map[string]any{},
		"f": bson.M{"g": int32(7)},
		"h": bson.D{{Key: "i", Value: "x"}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": int64(1),
		"b": int64(2),
		"c": 2.5,
		"f": map[string]any{"g": int64(7)},
		"h": map[string]any{"i": "x"},
	}, got)

	_, err = normalize(struct{}{})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestInt64(t *testing.T) {
	v, ok := Int64(int64(5))
	assert.True(t, ok)
	assert.Equal(t, int64(5), v)

	v, ok = Int64(float64(1700000000000))
	assert.True(t, ok)
	assert.Equal(t, int64(1700000000000), v)

	_, ok = Int64(1.5)
	assert.False(t, ok)
	_, ok = Int64("5")
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	tree, err := Open(Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, tree)

	tree, err = Open(Options{Driver: DriverDisk, DiskPath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &Disk{}, tree)

	_, err = Open(Options{Driver: DriverMongo})
	assert.Error(t, err)

	_, err = Open(Options{Driver: "sqlite"})
	assert.Error(t, err)
}

func TestDrivers(t *testing.T) {
	drivers := map[string]func(t *testing.T) Tree{
		"memory": func(t *testing.T) Tree { return NewMemory() },
		"disk":   func(t *testing.T) Tree { return NewDisk(t.TempDir()) },
	}
	for name, open := range drivers {
		t.Run(name, func(t *testing.T) {
			runTreeSuite(t, open)
		})
	}
}

// runTreeSuite checks the behaviour every Tree driver has to share.
func runTreeSuite(t *testing.T, open func(t *testing.T) Tree) {
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		tree := open(t)
		require.NoError(t, tree.Set(ctx, "users/u1/journals/e1", map[string]any{
			"id": "e1", "text": "hello", "timestamp": int64(1700000000000),
		}))

		v, ok, err := tree.Get(ctx, "users/u1/journals/e1")
		require.NoError(t, err)
		require.True(t, ok)
		m := v.(map[string]any)
		assert.Equal(t, "hello", m["text"])
		ts, ok := Int64(m["timestamp"])
		assert.True(t, ok)
		assert.Equal(t, int64(1700000000000), ts)

		v, ok, err = tree.Get(ctx, "users/u1/journals")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Contains(t, v.(map[string]any), "e1")
	})

	t.Run("missing", func(t *testing.T) {
		tree := open(t)
		_, ok, err := tree.Get(ctx, "users/nobody/journals")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("update is partial", func(t *testing.T) {
		tree := open(t)
		require.NoError(t, tree.Set(ctx, "users/u1/journals/e1", map[string]any{
			"id": "e1", "text": "before", "mood": "bad", "timestamp": int64(42),
		}))
		require.NoError(t, tree.Update(ctx, map[string]any{
			"users/u1/journals/e1/text": "after",
			"users/u1/journals/e1/mood": "good",
		}))

		v, ok, err := tree.Get(ctx, "users/u1/journals/e1")
		require.NoError(t, err)
		require.True(t, ok)
		m := v.(map[string]any)
		assert.Equal(t, "after", m["text"])
		assert.Equal(t, "good", m["mood"])
		assert.Equal(t, "e1", m["id"])
		ts, _ := Int64(m["timestamp"])
		assert.Equal(t, int64(42), ts)
	})

	t.Run("update with nil removes field", func(t *testing.T) {
		tree := open(t)
		require.NoError(t, tree.Set(ctx, "users/u1/journals/e1", map[string]any{"text": "x", "mood": "bad"}))
		require.NoError(t, tree.Update(ctx, map[string]any{"users/u1/journals/e1/mood": nil}))

		v, _, err := tree.Get(ctx, "users/u1/journals/e1")
		require.NoError(t, err)
		assert.NotContains(t, v.(map[string]any), "mood")
	})

	t.Run("update rejects cross document batches", func(t *testing.T) {
		tree := open(t)
		err := tree.Update(ctx, map[string]any{"users/a/x": 1, "users/b/x": 1})
		assert.ErrorIs(t, err, ErrCrossDocumentUpdate)
	})

	t.Run("guarded update needs the parent", func(t *testing.T) {
		tree := open(t)
		require.NoError(t, tree.Set(ctx, "users/u1/journals/e1", map[string]any{
			"id": "e1", "text": "before", "timestamp": int64(7),
		}))

		require.NoError(t, tree.UpdateExisting(ctx, "users/u1/journals/e1", map[string]any{
			"users/u1/journals/e1/text": "after",
			"users/u1/journals/e1/mood": "great",
		}))
		v, ok, err := tree.Get(ctx, "users/u1/journals/e1")
		require.NoError(t, err)
		require.True(t, ok)
		m := v.(map[string]any)
		assert.Equal(t, "after", m["text"])
		assert.Equal(t, "great", m["mood"])
		assert.Equal(t, "e1", m["id"])

		require.NoError(t, tree.Delete(ctx, "users/u1/journals/e1"))
		err = tree.UpdateExisting(ctx, "users/u1/journals/e1", map[string]any{
			"users/u1/journals/e1/text": "ghost",
		})
		assert.ErrorIs(t, err, ErrNotFound)
		_, ok, err = tree.Get(ctx, "users/u1/journals/e1")
		require.NoError(t, err)
		assert.False(t, ok)

		err = tree.UpdateExisting(ctx, "users/u1/journals/e1", map[string]any{
			"users/u1/profile/nickname": "x",
		})
		assert.ErrorIs(t, err, ErrInvalidPath)
	})

	t.Run("delete prunes", func(t *testing.T) {
		tree := open(t)
		require.NoError(t, tree.Set(ctx, "users/u1/journals/e1", map[string]any{"text": "x"}))
		require.NoError(t, tree.Set(ctx, "users/u1/profile", map[string]any{"email": "a@b.c"}))
		require.NoError(t, tree.Delete(ctx, "users/u1/journals/e1"))

		_, ok, err := tree.Get(ctx, "users/u1/journals/e1")
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = tree.Get(ctx, "users/u1/journals")
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = tree.Get(ctx, "users/u1/profile")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, tree.Delete(ctx, "users/u1/journals/missing"))
	})

	t.Run("returned values are copies", func(t *testing.T) {
		tree := open(t)
		require.NoError(t, tree.Set(ctx, "users/u1/profile", map[string]any{"nickname": "a"}))
		v, _, err := tree.Get(ctx, "users/u1/profile")
		require.NoError(t, err)
		v.(map[string]any)["nickname"] = "mutated"

		v, _, err = tree.Get(ctx, "users/u1/profile")
		require.NoError(t, err)
		assert.Equal(t, "a", v.(map[string]any)["nickname"])
	})

	t.Run("push ids are unique and ordered", func(t *testing.T) {
		tree := open(t)
		a, err := tree.PushID(ctx, "users/u1/journals")
		require.NoError(t, err)
		b, err := tree.PushID(ctx, "users/u1/journals")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
		assert.Len(t, a, 24)
		assert.LessOrEqual(t, a[:8], b[:8])

		_, err = tree.PushID(ctx, "users")
		assert.ErrorIs(t, err, ErrInvalidPath)
	})
}
