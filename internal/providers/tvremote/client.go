package tvremote

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sandevgo/homevoice/internal/config"
	"github.com/sandevgo/homevoice/pkg/log"
)

const dialTimeout = 5 * time.Second

// Client sends key presses to a Samsung TV over its websocket remote
// protocol. The connection is dialed lazily and redialed once after a
// write failure, since the TV drops idle connections.
type Client struct {
	url string

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewClient(cfg *config.HomeConfig) *Client {
	return &Client{url: cfg.TVRemoteURL}
}

type keyFrame struct {
	Method string    `json:"method"`
	Params keyParams `json:"params"`
}

type keyParams struct {
	Cmd          string `json:"Cmd"`
	DataOfCmd    string `json:"DataOfCmd"`
	Option       string `json:"Option"`
	TypeOfRemote string `json:"TypeOfRemote"`
}

func (c *Client) SendKey(ctx context.Context, key string) error {
	frame := keyFrame{
		Method: "ms.remote.control",
		Params: keyParams{
			Cmd:          "Click",
			DataOfCmd:    key,
			Option:       "false",
			TypeOfRemote: "SendRemoteKey",
		},
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.write(ctx, frame); err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("tv write failed, redialing")
		c.close()
		if err := c.write(ctx, frame); err != nil {
			return fmt.Errorf("send key %s: %w", key, err)
		}
	}
	return nil
}

// write must hold c.mu.
func (c *Client) write(ctx context.Context, frame keyFrame) error {
	if c.conn == nil {
		dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		defer cancel()

		conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, c.url, nil)
		if err != nil {
			return fmt.Errorf("dial tv: %w", err)
		}
		c.conn = conn
	}
	return c.conn.WriteJSON(frame)
}

// close must hold c.mu.
func (c *Client) close() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.close()
	return nil
}
