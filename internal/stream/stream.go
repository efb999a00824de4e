// Package stream pushes view snapshots to websocket clients.
package stream

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/vladslugin987/stock-simulator/internal/view"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 15 * time.Second
)

// Quote is the wire form of a single instrument.
type Quote struct {
	Symbol  string  `json:"symbol"`
	Price   int64   `json:"price"`
	Change  int64   `json:"change"`
	Seq     uint64  `json:"seq"`
	History []int64 `json:"history,omitempty"`
}

// Message is sent once on connect and again after every view change.
type Message struct {
	Version  uint64           `json:"version"`
	Selected string           `json:"selected,omitempty"`
	Balance  int64            `json:"balance"`
	Holdings map[string]int64 `json:"holdings"`
	Notice   string           `json:"notice,omitempty"`
	Quotes   []Quote          `json:"quotes"`
}

// NewMessage converts st into its wire form. History is only copied when
// withHistory is set.
func NewMessage(version uint64, st view.State, withHistory bool) Message {
	msg := Message{
		Version:  version,
		Selected: st.Selected,
		Balance:  st.Balance,
		Holdings: st.Holdings,
		Notice:   st.Notice,
		Quotes:   make([]Quote, 0, len(st.Order)),
	}
	if msg.Holdings == nil {
		msg.Holdings = map[string]int64{}
	}
	for _, sym := range st.Order {
		q := st.Quotes[sym]
		wq := Quote{Symbol: sym, Price: q.Price, Change: q.Change(), Seq: q.Seq}
		if withHistory {
			wq.History = q.History
		}
		msg.Quotes = append(msg.Quotes, wq)
	}
	return msg
}

// Hub upgrades HTTP requests and streams the view to each client.
type Hub struct {
	view     *view.View
	log      zerolog.Logger
	upgrader websocket.Upgrader
	clients  atomic.Int64
}

// NewHub is the constructor for Hub.
func NewHub(v *view.View, log zerolog.Logger) *Hub {
	return &Hub{
		view: v,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int64 { return h.clients.Load() }

// ServeHTTP handles one client until it disconnects or a write fails.
// Add ?history=1 to receive price histories.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sigs, cancel, err := h.view.Subscribe()
	if err != nil {
		h.log.Error().Err(err).Msg("view subscribe failed")
		return
	}
	defer cancel()

	withHistory := r.URL.Query().Get("history") == "1"
	remote := r.RemoteAddr
	h.log.Info().Str("remote", remote).Bool("history", withHistory).Int64("clients", h.clients.Add(1)).Msg("stream client connected")
	defer func() {
		h.log.Info().Str("remote", remote).Int64("clients", h.clients.Add(-1)).Msg("stream client gone")
	}()

	closed := make(chan struct{})
	go h.readLoop(conn, closed)

	if err := h.write(conn, NewMessage(h.view.Version(), h.view.State(), withHistory)); err != nil {
		h.log.Warn().Err(err).Str("remote", remote).Msg("stream write failed")
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return
		case sig, ok := <-sigs:
			if !ok {
				return
			}
			sig = latest(sigs, sig)
			if err := h.write(conn, NewMessage(sig.State.Version, view.FromSignal(sig), withHistory)); err != nil {
				h.log.Warn().Err(err).Str("remote", remote).Msg("stream write failed")
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.log.Warn().Err(err).Str("remote", remote).Msg("stream ping failed")
				return
			}
		}
	}
}

func (h *Hub) write(conn *websocket.Conn, msg Message) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// readLoop discards client frames so control messages are processed, and
// closes done when the connection goes away.
func (h *Hub) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
