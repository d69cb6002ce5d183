package views

import (
	"context"
	"time"

	"github.com/AnshRaj112/soullog/internal/format"
	"github.com/AnshRaj112/soullog/internal/models"
	"github.com/AnshRaj112/soullog/internal/mood"
)

// Source is the data the screens read.
type Source interface {
	Now() time.Time
	ListEntries(ctx context.Context, uid string) []models.Entry
	GetEntry(ctx context.Context, uid, entryID string) *models.Entry
	MoodTrends(ctx context.Context, uid string) models.Trends
}

// Params carries the query of a navigation.
type Params struct {
	EntryID string
	Mode    Mode
	Mood    mood.Mood
}

// Page is a resolved screen with its data loaded.
type Page struct {
	View    View
	Session Session
	Now     time.Time

	Greeting  string
	Entries   []models.Entry
	Trends    models.Trends
	Breakdown []models.MoodShare
	Detail    Detail
	Mood      mood.Mood
}

func (p Page) DisplayName() string {
	if p.Session.Identity == nil {
		return ""
	}
	return p.Session.Identity.DisplayName()
}

type loader func(ctx context.Context, p *Page, params Params)

// Router resolves navigations and runs the load action of the target screen.
// Loads run on every navigation; nothing is cached between them.
type Router struct {
	source  Source
	loaders map[View]loader
}

func NewRouter(source Source) *Router {
	r := &Router{source: source}
	r.loaders = map[View]loader{
		Dashboard:   r.loadDashboard,
		Entries:     r.loadEntries,
		Insights:    r.loadInsights,
		EntryDetail: r.loadDetail,
		NewEntry:    r.loadNewEntry,
	}
	return r
}

// Navigate applies the auth gate to v and loads the screen it resolves to.
func (r *Router) Navigate(ctx context.Context, v View, s Session, params Params) Page {
	p := Page{
		View:    Resolve(v, s),
		Session: s,
		Now:     r.source.Now(),
	}
	if load, ok := r.loaders[p.View]; ok {
		load(ctx, &p, params)
	}
	return p
}

func (r *Router) loadDashboard(ctx context.Context, p *Page, _ Params) {
	p.Greeting = format.Greeting(p.Now)
}

func (r *Router) loadEntries(ctx context.Context, p *Page, _ Params) {
	p.Entries = r.source.ListEntries(ctx, p.Session.UID())
}

func (r *Router) loadInsights(ctx context.Context, p *Page, _ Params) {
	p.Trends = r.source.MoodTrends(ctx, p.Session.UID())
	p.Breakdown = p.Trends.Breakdown()
}

func (r *Router) loadDetail(ctx context.Context, p *Page, params Params) {
	var e *models.Entry
	if params.EntryID != "" {
		e = r.source.GetEntry(ctx, p.Session.UID(), params.EntryID)
	}
	p.Detail = OpenEntry(e).WithMode(params.Mode)
}

func (r *Router) loadNewEntry(ctx context.Context, p *Page, params Params) {
	if params.Mood.Valid() {
		p.Mood = params.Mood
	}
}
