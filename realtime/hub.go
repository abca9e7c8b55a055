package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

// EventChange is the websocket event name for row changes.
const EventChange = "db_change"

// PublicTables may be subscribed to by any client. Other tables need an
// admin session, except that customers receive changes of their own orders
// and return requests.
var PublicTables = map[string]bool{
	"menu_items":           true,
	"menu_categories":      true,
	"special_sections":     true,
	"store_settings":       true,
	"reservation_settings": true,
}

var ownedTables = map[string]bool{
	"orders":          true,
	"return_requests": true,
}

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Subscription describes what a websocket client listens to.
type Subscription struct {
	UserID uint
	Admin  bool
	Tables []string
}

// Allowed reports whether a subscriber may listen to table.
func (s Subscription) Allowed(table string) bool {
	return s.Admin || PublicTables[table] || (s.UserID != 0 && ownedTables[table])
}

// wsConn is the part of *websocket.Conn the hub writes through.
type wsConn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type client struct {
	conn   wsConn
	sub    Subscription
	tables map[string]bool

	// gorilla allows one concurrent writer per connection
	writeMu sync.Mutex
}

func (c *client) send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub holds the connected websocket clients and fans change events out to them.
type Hub struct {
	clients map[wsConn]*client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[wsConn]*client)}
}

// Register adds conn with the tables of sub it is allowed to see.
func (h *Hub) Register(conn *websocket.Conn, sub Subscription) {
	h.register(conn, sub)
}

func (h *Hub) register(conn wsConn, sub Subscription) {
	tables := make(map[string]bool, len(sub.Tables))
	for _, t := range sub.Tables {
		if sub.Allowed(t) {
			tables[t] = true
		}
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = &client{conn: conn, sub: sub, tables: tables}
}

// Unregister removes conn and closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.unregister(conn)
}

func (h *Hub) unregister(conn wsConn) {
	h.mutex.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mutex.Unlock()
	if ok {
		conn.Close()
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish sends ev to every client subscribed to its table. Clients are
// written to in parallel, outside the hub lock.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	data, err := json.Marshal(Message{Event: EventChange, Data: ev})
	if err != nil {
		return err
	}

	h.mutex.Lock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		if c.tables[ev.Table] && visibleTo(c.sub, ev) {
			targets = append(targets, c)
		}
	}
	h.mutex.Unlock()

	var wg sync.WaitGroup
	for _, c := range targets {
		wg.Add(1)
		go func(c *client) {
			defer wg.Done()
			if err := c.send(data); err != nil {
				utils.ErrorLogger.Printf("Error sending %s change to client: %v", ev.Table, err)
				h.unregister(c.conn)
			}
		}(c)
	}
	wg.Wait()
	return nil
}

// visibleTo filters owned tables down to the subscriber's own rows.
func visibleTo(sub Subscription, ev Event) bool {
	if sub.Admin || !ownedTables[ev.Table] {
		return true
	}
	switch r := ev.Record.(type) {
	case models.Order:
		return r.UserID == sub.UserID
	case *models.Order:
		return r.UserID == sub.UserID
	case models.ReturnRequest:
		return r.UserID == sub.UserID
	case *models.ReturnRequest:
		return r.UserID == sub.UserID
	}
	return false
}
