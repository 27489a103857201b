/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Live scoreboard
//
// Browsers viewing the score history open a websocket to $prefix/scores/ws.
// On connect they receive the current list, and every saved score pushes the
// updated list to all connected viewers, so the table refreshes without a reload.

package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const writeWait = 10 * time.Second

// ScoreListMessage is sent to viewers on connect and after every save.
type ScoreListMessage struct {
	Type   string `json:"type"` // "score_list"
	Scores []int  `json:"scores"`
}

type Client struct {
	conn *websocket.Conn
	send chan any
	id   string
}

type Scoreboard struct {
	store   ScoreStore
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client

	// latest published list, picked up by run on notify
	mu      sync.Mutex
	pending []int
	notify  chan struct{}

	done chan struct{}
}

func newScoreboard(store ScoreStore) *Scoreboard {
	return &Scoreboard{
		store:    store,
		clients:  make(map[*Client]bool),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

func (sb *Scoreboard) run(ctx context.Context, cfg *Config) {
	defer close(sb.done)

	for {
		select {
		case c := <-sb.register:
			sb.clients[c] = true

			c.send <- ScoreListMessage{
				Type:   "score_list",
				Scores: sb.store.Load(),
			}

			logf(cfg, "LIVE: Viewer %s connected (%d watching)", c.id, len(sb.clients))

		case c := <-sb.unreg:
			if _, ok := sb.clients[c]; ok {
				delete(sb.clients, c)
				close(c.send)

				logf(cfg, "LIVE: Viewer %s disconnected (%d watching)", c.id, len(sb.clients))
			}

		case <-sb.notify:
			sb.mu.Lock()
			scores := sb.pending
			sb.mu.Unlock()

			sb.broadcast(ScoreListMessage{
				Type:   "score_list",
				Scores: scores,
			})

		case <-ctx.Done():
			for c := range sb.clients {
				delete(sb.clients, c)
				close(c.send)
			}

			return
		}
	}
}

// broadcast drops any viewer whose send buffer is full.
func (sb *Scoreboard) broadcast(msg any) {
	for c := range sb.clients {
		select {
		case c.send <- msg:
		default:
			delete(sb.clients, c)
			close(c.send)
		}
	}
}

// Publish pushes an updated score list to every connected viewer.
// It never blocks: lists published faster than run can broadcast them are
// collapsed into the most recent one. It is safe to call on a nil Scoreboard,
// and after the scoreboard has stopped.
func (sb *Scoreboard) Publish(scores []int) {
	if sb == nil {
		return
	}

	sb.mu.Lock()
	sb.pending = scores
	sb.mu.Unlock()

	select {
	case sb.notify <- struct{}{}:
	default:
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveScoreboardWS(cfg *Config, sb *Scoreboard) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "LIVE: Upgrade failed for %s: %v", realIP(r), err)

			return
		}

		// drop the read deadline inherited from the http server
		_ = conn.SetReadDeadline(time.Time{})

		client := &Client{
			conn: conn,
			send: make(chan any, 8),
			id:   uuid.NewString(),
		}

		select {
		case sb.register <- client:
		case <-sb.done:
			_ = conn.Close()

			return
		}

		go client.writePump()
		client.readPump(sb)
	}
}

// readPump only watches for the viewer going away; viewers never send anything.
func (c *Client) readPump(sb *Scoreboard) {
	defer func() {
		select {
		case sb.unreg <- c:
		case <-sb.done:
		}
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}
