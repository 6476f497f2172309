package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
)

var ErrUnknownMessageType = errors.New("unknown message type")

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error

// ErrorFunc is invoked when a handler fails; returning an error aborts the
// serve loop and closes the connection.
type ErrorFunc func(ctx context.Context, conn *websocket.Conn, err error) error

type WSRouter struct {
	routes  map[string]HandlerFunc
	onError ErrorFunc
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc)}
}

func (r *WSRouter) Handle(messageType string, handler HandlerFunc) {
	r.routes[messageType] = handler
}

func (r *WSRouter) OnError(fn ErrorFunc) {
	r.onError = fn
}

// ServeConn reads messages until the connection or ctx ends, dispatching
// each to its registered handler. Handlers run sequentially on this
// goroutine, so per-connection work is naturally serialized.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		handler, exists := r.routes[msg.Type]
		if !exists {
			if err := r.fail(ctx, conn, fmt.Errorf("%w: %s", ErrUnknownMessageType, msg.Type)); err != nil {
				return err
			}
			continue
		}

		msgCtx := withMessageType(ctx, msg.Type)
		if err := handler(msgCtx, conn, msg.Payload); err != nil {
			if err := r.fail(msgCtx, conn, err); err != nil {
				return err
			}
		}
	}
}

func (r *WSRouter) fail(ctx context.Context, conn *websocket.Conn, err error) error {
	if r.onError == nil {
		return err
	}

	return r.onError(ctx, conn, err)
}
