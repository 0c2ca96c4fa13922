package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"trivia-lobby-backend/internal/hub"
	"trivia-lobby-backend/internal/protocol"
)

const (
	sendBufferSize = 32
	maxMessageSize = 4096
)

// client wraps one websocket connection and implements conn.Conn for the
// hub. Outbound frames go through a buffered send channel drained by
// writePump; inbound frames are decoded by readLoop and posted to the hub.
type client struct {
	conn  *websocket.Conn
	inbox chan<- hub.Msg
	send  chan protocol.ServerMessage
	addr  string

	writeTimeout time.Duration
	pingTimeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

func newClient(parent context.Context, conn *websocket.Conn, inbox chan<- hub.Msg, addr string, writeTimeout, pingTimeout time.Duration, log *zap.Logger) *client {
	ctx, cancel := context.WithCancel(parent)
	return &client{
		conn:         conn,
		inbox:        inbox,
		send:         make(chan protocol.ServerMessage, sendBufferSize),
		addr:         addr,
		writeTimeout: writeTimeout,
		pingTimeout:  pingTimeout,
		ctx:          ctx,
		cancel:       cancel,
		log:          log,
	}
}

// Send enqueues a frame without blocking the hub loop. A full buffer drops
// the frame; broadcasts are fire-and-forget and the heartbeat sweep reaps
// peers that stay unreachable.
func (c *client) Send(msg protocol.ServerMessage) {
	select {
	case c.send <- msg:
	default:
		c.log.Warn("send buffer full, dropping frame",
			zap.String("addr", c.addr), zap.String("type", msg.Type))
	}
}

// Ping probes the peer and posts a Pong event on success. The pong is only
// seen because readLoop keeps a reader pumping control frames.
func (c *client) Ping() {
	go func() {
		ctx, cancel := context.WithTimeout(c.ctx, c.pingTimeout)
		defer cancel()
		if err := c.conn.Ping(ctx); err != nil {
			return
		}
		select {
		case c.inbox <- hub.Pong{C: c}:
		case <-c.ctx.Done():
		}
	}()
}

func (c *client) Close(reason string) {
	c.cancel()
	_ = c.conn.Close(websocket.StatusNormalClosure, reason)
}

func (c *client) RemoteAddr() string { return c.addr }

func (c *client) writePump() {
	defer c.cancel()
	for {
		select {
		case <-c.ctx.Done():
			return
		case msg := <-c.send:
			payload, err := json.Marshal(msg)
			if err != nil {
				c.log.Error("encoding frame failed", zap.Error(err))
				continue
			}
			ctx, cancel := context.WithTimeout(c.ctx, c.writeTimeout)
			err = c.conn.Write(ctx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// readLoop decodes inbound frames. Frames that fail to parse or carry no
// type tag are logged and dropped with no response; everything else goes
// to the hub. Returns on transport close or error.
func (c *client) readLoop() {
	defer func() {
		c.cancel()
		c.inbox <- hub.Disconnect{C: c}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := c.conn.Read(c.ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				c.log.Debug("read ended", zap.String("addr", c.addr), zap.Error(err))
			}
			return
		}

		var msg protocol.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Info("dropping malformed frame", zap.String("addr", c.addr))
			continue
		}
		if msg.Type == "" {
			c.log.Info("dropping untagged frame", zap.String("addr", c.addr))
			continue
		}
		c.inbox <- hub.Request{C: c, Msg: msg}
	}
}
