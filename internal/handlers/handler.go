package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/schema"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AnshRaj112/soullog/internal/auth"
	"github.com/AnshRaj112/soullog/internal/format"
	"github.com/AnshRaj112/soullog/internal/mood"
	"github.com/AnshRaj112/soullog/internal/services"
	"github.com/AnshRaj112/soullog/internal/views"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// ThemeCookie holds the visitor's colour scheme.
const ThemeCookie = "theme"

const (
	themeLight = "light"
	themeDark  = "dark"
)

// Options configures a Handler.
type Options struct {
	Journal        *services.Journal
	Auth           *auth.Service
	Log            *zap.SugaredLogger
	Location       *time.Location
	CookieSecure   bool
	AllowedOrigins []string
}

// Handler serves every screen and form of the app.
type Handler struct {
	journal  *services.Journal
	auth     *auth.Service
	router   *views.Router
	log      *zap.SugaredLogger
	pages    map[views.View]*template.Template
	forms    *schema.Decoder
	upgrader websocket.Upgrader
	secure   bool
}

func New(opts Options) (*Handler, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	pages, err := parsePages(loc)
	if err != nil {
		return nil, err
	}

	forms := schema.NewDecoder()
	forms.IgnoreUnknownKeys(true)

	h := &Handler{
		journal: opts.Journal,
		auth:    opts.Auth,
		router:  views.NewRouter(opts.Journal),
		log:     opts.Log,
		pages:   pages,
		forms:   forms,
		secure:  opts.CookieSecure,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     sameOrigin(opts.AllowedOrigins),
	}
	return h, nil
}

// Static serves the embedded assets.
func (h *Handler) Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

var pageFiles = map[views.View]string{
	views.Landing:     "landing.html",
	views.Login:       "login.html",
	views.Signup:      "signup.html",
	views.About:       "about.html",
	views.Dashboard:   "dashboard.html",
	views.Entries:     "entries.html",
	views.NewEntry:    "new_entry.html",
	views.EntryDetail: "entry_detail.html",
	views.Insights:    "insights.html",
}

func parsePages(loc *time.Location) (map[views.View]*template.Template, error) {
	base, err := template.New("layout").Funcs(templateFuncs(loc)).ParseFS(templateFS, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	pages := make(map[views.View]*template.Template, len(pageFiles))
	for v, file := range pageFiles {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		pages[v] = t
	}
	return pages, nil
}

func templateFuncs(loc *time.Location) template.FuncMap {
	return template.FuncMap{
		"stamp":   func(ms int64) string { return format.Stamp(ms, loc) },
		"preview": format.Preview,
		"days":    format.Days,
		"lines":   func(s string) []string { return strings.Split(s, "\n") },
		"percent": func(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) },
		"dict":    dict,
	}
}

// dict builds a map from alternating keys and values for passing to a partial.
func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}

// form is what a re-rendered form needs to show besides the page data.
type form struct {
	Error string
	Email string
	Text  string
	Mood  mood.Mood
}

type pageData struct {
	views.Page
	Theme string
	Form  form
	Moods []mood.Details
	// Return is the query string that reopens this screen as shown.
	Return string
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page views.Page, f form) {
	t, ok := h.pages[page.View]
	if !ok {
		h.log.Errorw("no template for view", "view", page.View)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := &pageData{
		Page:   page,
		Theme:  theme(r),
		Form:   f,
		Moods:  mood.Vocabulary(),
		Return: pageQuery(page).Encode(),
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.log.Errorw("failed to render view", "view", page.View, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// redirect sends the browser to v with a GET.
func redirect(w http.ResponseWriter, r *http.Request, v views.View, query url.Values) {
	target := viewURL(v)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// pageQuery holds the navigation parameters of a rendered page.
func pageQuery(p views.Page) url.Values {
	q := url.Values{}
	switch p.View {
	case views.EntryDetail:
		if p.Detail.Found() {
			q.Set("id", p.Detail.Entry.ID)
			if p.Detail.Editing() {
				q.Set("mode", string(views.ModeEdit))
			}
		}
	case views.NewEntry:
		if p.Mood.Valid() {
			q.Set("mood", string(p.Mood))
		}
	}
	return q
}

// returnQuery keeps only the parameters pageQuery can produce.
func returnQuery(raw string) url.Values {
	in, err := url.ParseQuery(raw)
	if err != nil {
		return nil
	}
	out := url.Values{}
	for _, key := range []string{"id", "mode", "mood"} {
		if v := in.Get(key); v != "" {
			out.Set(key, v)
		}
	}
	return out
}

func viewURL(v views.View) string {
	if v == views.Landing {
		return "/"
	}
	return "/v/" + string(v)
}

func theme(r *http.Request) string {
	if c, err := r.Cookie(ThemeCookie); err == nil && c.Value == themeDark {
		return themeDark
	}
	return themeLight
}

// decode parses the posted form into dst.
func (h *Handler) decode(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	return h.forms.Decode(dst, r.PostForm)
}

// sameOrigin admits websocket upgrades from the app itself or a configured origin.
func sameOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err == nil && strings.EqualFold(u.Host, r.Host) {
			return true
		}
		for _, a := range allowed {
			if strings.EqualFold(strings.TrimSpace(a), origin) {
				return true
			}
		}
		return false
	}
}
