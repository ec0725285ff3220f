// Package session implements the duplex-socket connection lifecycle:
// attaching one websocket connection to a table as a viewer, decoding
// inbound action frames, and writing outbound state/event frames.
package session

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pokerserver/internal/metrics"
	"pokerserver/internal/table"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type inboundFrame struct {
	Type    string        `json:"type"`
	Payload inboundPayload `json:"payload"`
}

type inboundPayload struct {
	Command string `json:"command"`
	Amount  int64  `json:"amount"`
	Message string `json:"message"`
	Show    bool   `json:"show"`
}

type outboundFrame struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Session owns one live connection: one reader goroutine decoding
// inbound frames, and synchronous writes performed from whichever
// goroutine holds the table's mutex (via the ViewerSink callback).
type Session struct {
	conn     *websocket.Conn
	t        *table.Table
	userID   string
	connID   string
	writeMu  sync.Mutex
	lastHand *table.HandResult
	revealed map[string]bool
}

// Serve upgrades an HTTP request to a websocket, attaches it to t as
// userID/displayName, and blocks reading inbound frames until the
// connection closes or errors. Call from a gin handler.
func Serve(w http.ResponseWriter, r *http.Request, t *table.Table, userID, displayName, connID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("session: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	s := &Session{conn: conn, t: t, userID: userID, connID: connID, revealed: make(map[string]bool)}

	if err := t.AddPlayer(userID, displayName); err != nil && err != table.ErrAlreadySeated {
		s.writeFrame(outboundFrame{Type: "error", Message: err.Error()})
		conn.Close()
		return
	}

	metrics.ConnectedSessions.Inc()
	defer metrics.ConnectedSessions.Dec()

	t.Subscribe(connID, userID, s.deliver)
	defer t.Unsubscribe(connID)

	s.writeFrame(outboundFrame{Type: "welcome", Payload: map[string]string{"tableId": t.ID()}})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("session: websocket error for %s: %v", userID, err)
			}
			break
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}

		start := time.Now()
		s.handleInbound(frame)
		metrics.MessageHandleDuration.WithLabelValues(frame.Type).Observe(time.Since(start).Seconds())
	}
}

func (s *Session) handleInbound(frame inboundFrame) {
	switch frame.Type {
	case "ping":
		s.writeFrame(outboundFrame{Type: "pong"})
	case "action":
		action := table.Action{
			Command: table.Command(frame.Payload.Command),
			Amount:  frame.Payload.Amount,
			Message: frame.Payload.Message,
			Show:    frame.Payload.Show,
		}
		_ = s.t.HandleAction(s.userID, action)
	}
}

// deliver is the table.ViewerSink: it is called with the mutex held,
// so it must not block. It translates one state change into one or
// more outbound frames (handComplete/showdownComplete ahead of the
// raw state snapshot when a hand just finished, playerCardsVisibility
// for any seat whose hole cards just became visible to this viewer)
// and writes them.
func (s *Session) deliver(snap table.Snapshot) error {
	if snap.Stage != table.StageShowdown {
		for k := range s.revealed {
			delete(s.revealed, k)
		}
	}

	if snap.LastHand != nil && snap.LastHand != s.lastHand {
		s.lastHand = snap.LastHand
		if err := s.writeFrame(outboundFrame{Type: "handComplete", Payload: snap.LastHand}); err != nil {
			return err
		}
		if snap.LastHand.WinType == "showdown" {
			if err := s.writeFrame(outboundFrame{Type: "showdownComplete", Payload: snap.LastHand}); err != nil {
				return err
			}
		}
	}

	for _, sv := range snap.Seats {
		if sv.UserID == s.userID || len(sv.HoleCards) == 0 || s.revealed[sv.UserID] {
			continue
		}
		s.revealed[sv.UserID] = true
		if err := s.writeFrame(outboundFrame{Type: "playerCardsVisibility", Payload: map[string]interface{}{
			"userId":    sv.UserID,
			"holeCards": sv.HoleCards,
		}}); err != nil {
			return err
		}
	}

	return s.writeFrame(outboundFrame{Type: "state", Payload: snap})
}

func (s *Session) writeFrame(f outboundFrame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return s.conn.WriteJSON(f)
}
