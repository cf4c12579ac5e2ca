// Package stats streams frame diagnostics to websocket subscribers.
package stats

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/coder/websocket"
)

// Snapshot is one diagnostic sample of the render loop.
type Snapshot struct {
	Backend     string  `json:"backend"`
	FrameTimeUS int64   `json:"frame_time_us"`
	OffsetReal  float64 `json:"offset_real"`
	OffsetImag  float64 `json:"offset_imag"`
	Scale       float64 `json:"scale"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
}

// Hub fans snapshots out to connected subscribers. Publishing never blocks:
// a subscriber that falls behind loses messages.
type Hub struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan []byte]struct{})}
}

// Publish encodes s and offers it to every subscriber.
func (h *Hub) Publish(s Snapshot) error {
	msg, err := sonic.Marshal(s)
	if err != nil {
		return fmt.Errorf("stats: marshal: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) subscribe() chan []byte {
	ch := make(chan []byte, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// Handler upgrades the request to a websocket and streams snapshots as text
// messages until either side goes away.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			log.Println(err)
			return
		}
		defer c.CloseNow()

		// nothing is read from subscribers; CloseRead handles control frames
		ctx := c.CloseRead(r.Context())

		ch := h.subscribe()
		defer h.unsubscribe(ch)

		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-ch:
				wctx, cancel := context.WithTimeout(ctx, time.Second)
				err := c.Write(wctx, websocket.MessageText, msg)
				cancel()
				if err != nil {
					return
				}
			}
		}
	}
}

// NewServer returns an http.Server exposing the hub at /ws.
func NewServer(addr string, h *Hub) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
