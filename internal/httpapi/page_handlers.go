package httpapi

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"internhunt-engine/internal/config"
	"internhunt-engine/internal/store"
	"internhunt-engine/internal/tracker"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

//go:embed templates/jobs.html
var templateFS embed.FS

var jobsPage = template.Must(template.ParseFS(templateFS, "templates/jobs.html"))

type PageHandler struct {
	DB  *store.DB
	Cfg *config.Config
}

type jobsPageData struct {
	Page       tracker.Page[tracker.Row]
	Categories []string
	Query      string
	Category   string
	TotalLabel string
	SyncedAgo  string
}

// Jobs renders the active listings as a plain HTML table.
func (h PageHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	snap, err := tracker.Load(r.Context(), h.DB, "")
	if err != nil {
		log.Error().Err(err).Str("request_id", RequestIDFrom(r.Context())).Msg("page load failed")
		http.Error(w, "Failed to load job listings", http.StatusInternalServerError)
		return
	}

	q := r.URL.Query()
	rows := tracker.Browse(snap.Rows, tracker.Filter{Search: q.Get("q"), Category: q.Get("category")})
	data := jobsPageData{
		Page:       tracker.Paginate(rows, queryInt(r, "page"), perPage(r, h.Cfg)),
		Categories: tracker.Categories(snap.Rows),
		Query:      q.Get("q"),
		Category:   q.Get("category"),
		TotalLabel: humanize.Comma(int64(len(snap.Rows))),
	}
	if last := latestUpdate(snap.Rows); !last.IsZero() {
		data.SyncedAgo = humanize.Time(last)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := jobsPage.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("render jobs page")
	}
}

func latestUpdate(rows []tracker.Row) time.Time {
	var t time.Time
	for _, r := range rows {
		if r.UpdatedAt.After(t) {
			t = r.UpdatedAt
		}
	}
	return t
}
