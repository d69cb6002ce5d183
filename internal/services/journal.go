package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/AnshRaj112/soullog/internal/auth"
	"github.com/AnshRaj112/soullog/internal/models"
	"github.com/AnshRaj112/soullog/internal/mood"
	"github.com/AnshRaj112/soullog/internal/store"
	"github.com/AnshRaj112/soullog/pkg/utils"
)

var ErrEntryNotFound = errors.New("entry not found")

// remoteTimeout bounds every single call into the tree.
const remoteTimeout = 5 * time.Second

func profilePath(uid string) string  { return store.Join("users", uid, "profile") }
func journalsPath(uid string) string { return store.Join("users", uid, "journals") }
func entryPath(uid, id string) string {
	return store.Join("users", uid, "journals", id)
}

// Journal is the data access layer: account operations go to the auth service,
// profiles and entries to the tree. Create, update and delete report failure in
// their Result; reads log failures and degrade to empty or nil.
type Journal struct {
	auth *auth.Service
	tree store.Tree
	log  *zap.SugaredLogger
	now  func() time.Time
}

// NewJournal wires the layer. now supplies the current time in the display
// time zone; nil means time.Now.
func NewJournal(authSvc *auth.Service, tree store.Tree, log *zap.SugaredLogger, now func() time.Time) *Journal {
	if now == nil {
		now = time.Now
	}
	return &Journal{auth: authSvc, tree: tree, log: log, now: now}
}

// Now is the current time in the display time zone.
func (j *Journal) Now() time.Time {
	return j.now()
}

// Register creates the identity, signs it in on device and writes its profile.
func (j *Journal) Register(ctx context.Context, device, email, password string) error {
	id, err := j.auth.CreateIdentity(ctx, device, email, password)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	profile := map[string]any{
		"email":     id.Email,
		"createdAt": j.now().UnixMilli(),
		"nickname":  utils.Nickname(id.Email),
	}
	if err := j.tree.Set(ctx, profilePath(id.UID), profile); err != nil {
		j.log.Errorw("failed to save profile", "uid", id.UID, "error", err)
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Profile reads users/{uid}/profile. Guests have none.
func (j *Journal) Profile(ctx context.Context, uid string) *models.Profile {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	v, ok, err := j.tree.Get(ctx, profilePath(uid))
	if err != nil {
		j.log.Errorw("failed to read profile", "uid", uid, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	m, _ := v.(map[string]any)
	p := &models.Profile{}
	p.Email, _ = m["email"].(string)
	p.Nickname, _ = m["nickname"].(string)
	p.CreatedAt, _ = store.Int64(m["createdAt"])
	return p
}

// Login signs an existing identity in on device.
func (j *Journal) Login(ctx context.Context, device, email, password string) error {
	_, err := j.auth.Authenticate(ctx, device, email, password)
	return err
}

// LoginAsGuest signs a new anonymous identity in on device. No profile is written.
func (j *Journal) LoginAsGuest(ctx context.Context, device string) error {
	_, err := j.auth.AuthenticateAnonymous(ctx, device)
	return err
}

// Logout signs device out. Failure is logged only.
func (j *Journal) Logout(ctx context.Context, device string) {
	if err := j.auth.Deauthenticate(ctx, device); err != nil {
		j.log.Errorw("logout failed", "error", err)
	}
}

// CreateEntry stores a new entry stamped with the current time.
func (j *Journal) CreateEntry(ctx context.Context, uid, text string, m mood.Mood) models.Result {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	id, err := j.tree.PushID(ctx, journalsPath(uid))
	if err != nil {
		return models.Failed(err)
	}
	e := models.Entry{ID: id, Text: text, Mood: m, Timestamp: j.now().UnixMilli()}
	if err := j.tree.Set(ctx, entryPath(uid, id), entryToValue(e)); err != nil {
		j.log.Errorw("failed to create entry", "uid", uid, "error", err)
		return models.Failed(err)
	}
	return models.Result{Success: true, ID: id}
}

// ListEntries returns every entry of uid, newest first. Missing data and read
// failures both yield an empty slice.
func (j *Journal) ListEntries(ctx context.Context, uid string) []models.Entry {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	v, ok, err := j.tree.Get(ctx, journalsPath(uid))
	if err != nil {
		j.log.Errorw("failed to list entries", "uid", uid, "error", err)
		return []models.Entry{}
	}
	if !ok {
		return []models.Entry{}
	}
	children, _ := v.(map[string]any)

	entries := make([]models.Entry, 0, len(children))
	for key, child := range children {
		e, ok := entryFromValue(key, child)
		if !ok {
			j.log.Warnw("skipping malformed entry", "uid", uid, "entry", key)
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].Timestamp != entries[b].Timestamp {
			return entries[a].Timestamp > entries[b].Timestamp
		}
		return entries[a].ID > entries[b].ID
	})
	return entries
}

// GetEntry returns one entry, or nil when it does not exist or cannot be read.
func (j *Journal) GetEntry(ctx context.Context, uid, entryID string) *models.Entry {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	v, ok, err := j.tree.Get(ctx, entryPath(uid, entryID))
	if err != nil {
		j.log.Errorw("failed to get entry", "uid", uid, "entry", entryID, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	e, ok := entryFromValue(entryID, v)
	if !ok {
		return nil
	}
	return &e
}

// UpdateEntry rewrites text and mood in one atomic update; id and timestamp stay.
// A missing entry is never recreated.
func (j *Journal) UpdateEntry(ctx context.Context, uid, entryID, text string, m mood.Mood) models.Result {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	var moodValue any
	if m != mood.None {
		moodValue = string(m)
	}
	base := entryPath(uid, entryID)
	err := j.tree.UpdateExisting(ctx, base, map[string]any{
		base + "/text": text,
		base + "/mood": moodValue,
	})
	if errors.Is(err, store.ErrNotFound) {
		return models.Failed(ErrEntryNotFound)
	}
	if err != nil {
		j.log.Errorw("failed to update entry", "uid", uid, "entry", entryID, "error", err)
		return models.Failed(err)
	}
	return models.Result{Success: true, ID: entryID}
}

// DeleteEntry removes the entry for good.
func (j *Journal) DeleteEntry(ctx context.Context, uid, entryID string) models.Result {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	if err := j.tree.Delete(ctx, entryPath(uid, entryID)); err != nil {
		j.log.Errorw("failed to delete entry", "uid", uid, "entry", entryID, "error", err)
		return models.Failed(err)
	}
	return models.Result{Success: true, ID: entryID}
}

// MoodTrends aggregates every entry of uid.
func (j *Journal) MoodTrends(ctx context.Context, uid string) models.Trends {
	return Aggregate(j.ListEntries(ctx, uid), j.now())
}

func entryToValue(e models.Entry) map[string]any {
	v := map[string]any{
		"id":        e.ID,
		"text":      e.Text,
		"timestamp": e.Timestamp,
	}
	if e.Mood != mood.None {
		v["mood"] = string(e.Mood)
	}
	return v
}

func entryFromValue(key string, v any) (models.Entry, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return models.Entry{}, false
	}
	e := models.Entry{ID: key}
	if id, ok := m["id"].(string); ok && id != "" {
		e.ID = id
	}
	e.Text, _ = m["text"].(string)
	if s, ok := m["mood"].(string); ok {
		e.Mood = mood.Mood(s)
	}
	e.Timestamp, _ = store.Int64(m["timestamp"])
	return e, true
}
