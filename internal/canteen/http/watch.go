package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/canteenhq/canteen/internal/canteen/notify"
	"github.com/canteenhq/canteen/pkg/httpx"
	"github.com/canteenhq/canteen/pkg/slogx"
)

// WatchHandler streams hub events for one topic as Server-Sent Events. The
// subscription lives exactly as long as the request context; disconnecting
// cancels it deterministically.
type WatchHandler struct {
	Hub   *notify.Hub
	Topic string
}

// ServeHTTP godoc
//
//	@Summary		Live Update Stream
//	@Description	Server-Sent Events stream of changes on one topic. Each event's data is a
//	@Description	JSON document; clients re-render from the payload rather than diffing.
//	@Tags			Watch
//	@Produce		text/event-stream
//	@Success		200	{string}	string	"event stream"
//	@Security		BearerAuth
//	@Router			/v1/menu/watch [get].
func (h *WatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "server_error", "streaming unsupported")
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := h.Hub.Subscribe(h.Topic, 16)
	defer cancel()

	log.Debug("watch stream opened", "topic", h.Topic)

	for {
		select {
		case <-ctx.Done():
			log.Debug("watch stream closed", "topic", h.Topic)
			return
		case ev, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(ev.Payload)
			if err != nil {
				log.Warn("failed to encode watch event", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, payload)
			flusher.Flush()
		}
	}
}
