package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"internhunt-engine/internal/auth"
	"internhunt-engine/internal/events"
)

const keepAliveEvery = 25 * time.Second

type EventsHandler struct {
	Hub  *events.Hub
	Auth *auth.Service
}

// ServeSSE streams broadcast events, plus the caller's own account events
// when a session is presented.
func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, "stream_unsupported", "Streaming unsupported")
		return
	}
	u, err := optionalUser(r, h.Auth)
	if err != nil {
		writeStoreError(w, r, "Failed to load session: ", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.Hub.Subscribe(u.ID)
	defer h.Hub.Unsubscribe(ch)

	// Ping as a proper event envelope
	reqID := RequestIDFrom(r.Context())
	ping := events.MakeEvent(reqID, "ping", 1, map[string]bool{"signed_in": u.ID != ""})
	fmt.Fprintf(w, "event: message\ndata: %s\n\n", ping.Encode())
	flusher.Flush()

	tick := time.NewTicker(keepAliveEvery)
	defer tick.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case evt, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", evt.Encode())
			flusher.Flush()
		}
	}
}
