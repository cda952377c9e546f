package api

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/sundrop/budget-planner/engine"
)

const (
	liveWriteWait  = 10 * time.Second
	liveBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Live streams a summary of the plan on connect and again for every
// snapshot published on the feed, whatever its origin. Snapshots that
// arrive faster than the client reads are dropped; the next one supersedes
// them anyway. Handler.Close disconnects every live client.
// GET /api/plans/{id}/live
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "id")

	plan, err := h.Plan(r.Context(), planID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load plan", err)
		return
	}
	if h.Feed == nil {
		writeError(w, http.StatusServiceUnavailable, "No change feed configured", nil)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Live] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan engine.Plan, liveBufferSize)
	unsubscribe := h.Feed.Subscribe(planID, func(s engine.Snapshot) {
		select {
		case send <- s.Plan:
		default:
			log.Printf("[Live] Dropped snapshot for slow client on %s", planID)
		}
	})
	defer unsubscribe()

	// Reader: nothing is expected from the client, but reading is how we
	// notice it went away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("[Live] Unexpected close on %s: %v", planID, err)
				}
				return
			}
		}
	}()

	if err := writeSnapshot(conn, planID, plan); err != nil {
		return
	}

	for {
		select {
		case p := <-send:
			if err := writeSnapshot(conn, planID, p); err != nil {
				return
			}
		case <-done:
			return
		case <-h.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(liveWriteWait))
			return
		}
	}
}

func writeSnapshot(conn *websocket.Conn, planID string, plan engine.Plan) error {
	conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	err := conn.WriteJSON(LiveMessage{Type: "snapshot", Summary: toSummaryDTO(planID, plan)})
	if err != nil {
		log.Printf("[Live] Write to %s failed: %v", planID, err)
	}
	return err
}
