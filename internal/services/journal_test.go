package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/soullog/internal/auth"
	"github.com/AnshRaj112/soullog/internal/logger"
	"github.com/AnshRaj112/soullog/internal/mood"
	"github.com/AnshRaj112/soullog/internal/store"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestJournal(tree store.Tree) (*Journal, *auth.Service, *clock) {
	svc := auth.NewService(auth.NewMemoryIdentities(), auth.NewMemorySessions(), auth.NewHub(), logger.Nop(), time.Hour)
	c := &clock{t: time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)}
	return NewJournal(svc, tree, logger.Nop(), c.now), svc, c
}

// brokenTree fails every call.
type brokenTree struct{}

var errBroken = errors.New("connection refused")

func (brokenTree) Set(context.Context, string, any) error { return errBroken }
func (brokenTree) Get(context.Context, string) (any, bool, error) {
	return nil, false, errBroken
}
func (brokenTree) Update(context.Context, map[string]any) error { return errBroken }
func (brokenTree) UpdateExisting(context.Context, string, map[string]any) error {
	return errBroken
}
func (brokenTree) Delete(context.Context, string) error { return errBroken }
func (brokenTree) PushID(context.Context, string) (string, error) {
	return "", errBroken
}

func TestJournal_Register(t *testing.T) {
	ctx := context.Background()
	tree := store.NewMemory()
	j, svc, c := newTestJournal(tree)

	require.NoError(t, j.Register(ctx, "dev1", "ana@example.com", "secret1"))

	id, err := svc.Current(ctx, "dev1")
	require.NoError(t, err)
	require.NotNil(t, id)

	p := j.Profile(ctx, id.UID)
	require.NotNil(t, p)
	assert.Equal(t, "ana@example.com", p.Email)
	assert.Equal(t, "ana", p.Nickname)
	assert.Equal(t, c.t.UnixMilli(), p.CreatedAt)
}

func TestJournal_Register_Failures(t *testing.T) {
	ctx := context.Background()
	j, _, _ := newTestJournal(store.NewMemory())
	require.NoError(t, j.Register(ctx, "dev1", "ana@example.com", "secret1"))

	err := j.Register(ctx, "dev2", "ana@example.com", "secret1")
	assert.True(t, auth.IsCode(err, auth.CodeEmailInUse))

	err = j.Register(ctx, "dev2", "bob@example.com", "123")
	assert.True(t, auth.IsCode(err, auth.CodeWeakPassword))

	err = j.Register(ctx, "dev2", "not-an-email", "secret1")
	assert.True(t, auth.IsCode(err, auth.CodeInvalidEmail))
}

func TestJournal_LoginLogout(t *testing.T) {
	ctx := context.Background()
	j, svc, _ := newTestJournal(store.NewMemory())
	require.NoError(t, j.Register(ctx, "dev1", "ana@example.com", "secret1"))
	j.Logout(ctx, "dev1")

	err := j.Login(ctx, "dev1", "ana@example.com", "wrong-password")
	assert.True(t, auth.IsCode(err, auth.CodeInvalidCredential))

	require.NoError(t, j.Login(ctx, "dev1", "ana@example.com", "secret1"))
	id, err := svc.Current(ctx, "dev1")
	require.NoError(t, err)
	require.NotNil(t, id)

	j.Logout(ctx, "dev1")
	id, err = svc.Current(ctx, "dev1")
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestJournal_LoginAsGuest(t *testing.T) {
	ctx := context.Background()
	j, svc, _ := newTestJournal(store.NewMemory())

	require.NoError(t, j.LoginAsGuest(ctx, "dev1"))
	id, err := svc.Current(ctx, "dev1")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.True(t, id.Anonymous)
	assert.Nil(t, j.Profile(ctx, id.UID))
}

func TestJournal_EntryRoundTrip(t *testing.T) {
	ctx := context.Background()
	j, _, c := newTestJournal(store.NewMemory())

	res := j.CreateEntry(ctx, "u1", "Sunny walk", mood.Great)
	require.True(t, res.Success)
	require.NotEmpty(t, res.ID)

	e := j.GetEntry(ctx, "u1", res.ID)
	require.NotNil(t, e)
	assert.Equal(t, res.ID, e.ID)
	assert.Equal(t, "Sunny walk", e.Text)
	assert.Equal(t, mood.Great, e.Mood)
	assert.Equal(t, c.t.UnixMilli(), e.Timestamp)
}

func TestJournal_CreateEntry_WithoutMood(t *testing.T) {
	ctx := context.Background()
	j, _, _ := newTestJournal(store.NewMemory())

	res := j.CreateEntry(ctx, "u1", "", mood.None)
	require.True(t, res.Success)

	e := j.GetEntry(ctx, "u1", res.ID)
	require.NotNil(t, e)
	assert.Equal(t, "", e.Text)
	assert.Equal(t, mood.None, e.Mood)
}

func TestJournal_ListEntries_NewestFirst(t *testing.T) {
	ctx := context.Background()
	j, _, c := newTestJournal(store.NewMemory())

	assert.Empty(t, j.ListEntries(ctx, "u1"))

	first := j.CreateEntry(ctx, "u1", "first", mood.Okay)
	c.advance(time.Hour)
	second := j.CreateEntry(ctx, "u1", "second", mood.Good)
	c.advance(time.Hour)
	third := j.CreateEntry(ctx, "u1", "third", mood.Bad)
	j.CreateEntry(ctx, "u2", "someone else", mood.Bad)

	entries := j.ListEntries(ctx, "u1")
	require.Len(t, entries, 3)
	assert.Equal(t, third.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)
	assert.Equal(t, first.ID, entries[2].ID)
}

func TestJournal_UpdateEntry(t *testing.T) {
	ctx := context.Background()
	j, _, c := newTestJournal(store.NewMemory())

	res := j.CreateEntry(ctx, "u1", "draft", mood.Okay)
	created := c.t.UnixMilli()
	c.advance(2 * time.Hour)

	upd := j.UpdateEntry(ctx, "u1", res.ID, "final", mood.Good)
	require.True(t, upd.Success)

	e := j.GetEntry(ctx, "u1", res.ID)
	require.NotNil(t, e)
	assert.Equal(t, res.ID, e.ID)
	assert.Equal(t, "final", e.Text)
	assert.Equal(t, mood.Good, e.Mood)
	assert.Equal(t, created, e.Timestamp)

	upd = j.UpdateEntry(ctx, "u1", res.ID, "final", mood.None)
	require.True(t, upd.Success)
	e = j.GetEntry(ctx, "u1", res.ID)
	require.NotNil(t, e)
	assert.Equal(t, mood.None, e.Mood)
}

func TestJournal_UpdateEntry_Missing(t *testing.T) {
	ctx := context.Background()
	tree := store.NewMemory()
	j, _, _ := newTestJournal(tree)

	res := j.UpdateEntry(ctx, "u1", "nope", "text", mood.Good)
	assert.False(t, res.Success)
	assert.Equal(t, ErrEntryNotFound.Error(), res.Error)

	_, ok, err := tree.Get(ctx, "users/u1/journals/nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJournal_UpdateEntry_AfterDelete(t *testing.T) {
	ctx := context.Background()
	tree := store.NewMemory()
	j, _, _ := newTestJournal(tree)

	res := j.CreateEntry(ctx, "u1", "gone soon", mood.Bad)
	require.True(t, j.DeleteEntry(ctx, "u1", res.ID).Success)

	upd := j.UpdateEntry(ctx, "u1", res.ID, "late edit", mood.Good)
	assert.False(t, upd.Success)
	assert.Equal(t, ErrEntryNotFound.Error(), upd.Error)

	_, ok, err := tree.Get(ctx, "users/u1/journals")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJournal_DeleteEntry(t *testing.T) {
	ctx := context.Background()
	j, _, _ := newTestJournal(store.NewMemory())

	keep := j.CreateEntry(ctx, "u1", "keep", mood.Good)
	drop := j.CreateEntry(ctx, "u1", "drop", mood.Bad)

	res := j.DeleteEntry(ctx, "u1", drop.ID)
	require.True(t, res.Success)

	assert.Nil(t, j.GetEntry(ctx, "u1", drop.ID))
	entries := j.ListEntries(ctx, "u1")
	require.Len(t, entries, 1)
	assert.Equal(t, keep.ID, entries[0].ID)
}

func TestJournal_RemoteFailures(t *testing.T) {
	ctx := context.Background()
	j, _, _ := newTestJournal(brokenTree{})

	entries := j.ListEntries(ctx, "u1")
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
	assert.Nil(t, j.GetEntry(ctx, "u1", "e1"))
	assert.Nil(t, j.Profile(ctx, "u1"))

	res := j.CreateEntry(ctx, "u1", "text", mood.Good)
	assert.False(t, res.Success)
	assert.Equal(t, errBroken.Error(), res.Error)

	assert.False(t, j.UpdateEntry(ctx, "u1", "e1", "text", mood.Good).Success)
	assert.False(t, j.DeleteEntry(ctx, "u1", "e1").Success)

	trends := j.MoodTrends(ctx, "u1")
	assert.Equal(t, 0, trends.TotalEntries)
	assert.Empty(t, trends.MoodCounts)
}

func TestJournal_MoodTrends(t *testing.T) {
	ctx := context.Background()
	j, _, c := newTestJournal(store.NewMemory())

	j.CreateEntry(ctx, "u1", "a", mood.Good)
	c.advance(24 * time.Hour)
	j.CreateEntry(ctx, "u1", "b", mood.Great)
	j.CreateEntry(ctx, "u1", "c", mood.Good)

	trends := j.MoodTrends(ctx, "u1")
	assert.Equal(t, 3, trends.TotalEntries)
	assert.Equal(t, mood.Good, trends.TopMood)
	assert.Equal(t, 2, trends.Streak)
}
