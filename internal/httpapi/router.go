package httpapi

import (
	"net/http"
	"time"
)

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()
	authed := RequireUser(d.Auth)
	limited := func(h http.HandlerFunc) http.HandlerFunc {
		return RateLimit(d.Limiter)(h).ServeHTTP
	}

	// Jobs
	jh := JobsHandler{DB: d.DB, Cfg: d.Cfg, Syncer: d.Syncer}
	mux.HandleFunc("/api/jobs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  jh.List,
		http.MethodPost: limited(jh.Sync),
	}))
	mux.HandleFunc("/api/jobs/sync/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: jh.SyncStatus,
	}))

	// Auth
	ah := AuthHandler{Auth: d.Auth}
	mux.HandleFunc("/api/auth/signup", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: limited(ah.SignUp),
	}))
	mux.HandleFunc("/api/auth/signin", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: limited(ah.SignIn),
	}))
	mux.HandleFunc("/api/auth/signout", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.SignOut,
	}))
	mux.HandleFunc("/api/auth/session", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ah.Session,
	}))

	// Applied
	aph := AppliedHandler{DB: d.DB, Hub: d.Hub, Cfg: d.Cfg, Now: time.Now}
	mux.HandleFunc("/api/applied", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  authed(aph.List),
		http.MethodPost: authed(aph.Create),
	}))
	mux.HandleFunc("/api/applied/count", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: authed(aph.Count),
	}))
	mux.HandleFunc("/api/applied/export", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: authed(aph.Export),
	}))
	mux.HandleFunc("/api/applied/", methodMux(map[string]http.HandlerFunc{
		http.MethodPatch:  authed(aph.UpdateNotes), // expects /api/applied/{jobID}
		http.MethodDelete: authed(aph.Delete),
	}))

	// Not suitable
	nh := NotSuitableHandler{DB: d.DB, Hub: d.Hub}
	mux.HandleFunc("/api/not-suitable", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  authed(nh.List),
		http.MethodPost: authed(nh.Create),
	}))
	mux.HandleFunc("/api/not-suitable/count", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: authed(nh.Count),
	}))
	mux.HandleFunc("/api/not-suitable/", methodMux(map[string]http.HandlerFunc{
		http.MethodDelete: authed(nh.Delete),
	}))

	// Tracker view
	th := TrackerHandler{DB: d.DB, Cfg: d.Cfg, Auth: d.Auth}
	mux.HandleFunc("/api/tracker", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: th.Get,
	}))

	// Config
	ch := ConfigHandler{Cfg: d.Cfg, UserCfgPath: d.UserCfgPath}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Storage maintenance
	dh := DBHandler{DB: d.DB}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Checkpoint,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub, Auth: d.Auth}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	hh := HealthHandler{DB: d.DB, Hub: d.Hub, Syncer: d.Syncer}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	ph := PageHandler{DB: d.DB, Cfg: d.Cfg}
	mux.HandleFunc("/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ph.Jobs,
	}))

	return mux
}

// Handler wraps h in the standard middleware stack.
func Handler(h http.Handler) http.Handler {
	return Chain(h, Recover, RequestID, AccessLog, Cors)
}
