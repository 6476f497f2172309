package controller

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"

	"github.com/alicehocane/watch/internal/session"
	"github.com/alicehocane/watch/pkg/wsrouter"
)

type SeekToInput struct {
	Seconds float64 `json:"seconds" validate:"gte=0"`
}

type SeekByInput struct {
	DeltaSeconds float64 `json:"delta_seconds"`
}

type SendChatInput struct {
	Text string `json:"text" validate:"required,max=500"`
}

type ToggleEveryoneControlInput struct {
	Allow bool `json:"allow"`
}

type UpdateProfileInput struct {
	Username string `json:"username" validate:"required,max=16"`
}

type ReportStateInput struct {
	CurrentTime float64 `json:"current_time" validate:"gte=0"`
	State       string  `json:"state" validate:"required"`
}

// SurfaceEventInput is a genuine user action the surface observed, as
// opposed to the echo of a programmatic command.
type SurfaceEventInput struct {
	Kind      string  `json:"kind" validate:"required"`
	Seconds   float64 `json:"seconds"`
	ErrorKind string  `json:"error_kind"`
	Detail    string  `json:"detail"`
}

type PlayResultInput struct {
	Blocked bool   `json:"blocked"`
	Detail  string `json:"detail"`
}

func (c controller) newWSMux(sess *session.Session, bridge *surfaceBridge, surf surface) *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Handle("ALIVE", func(_ context.Context, _ *websocket.Conn, _ json.RawMessage) error {
		return nil
	})

	mux.Handle("PLAY", func(_ context.Context, _ *websocket.Conn, _ json.RawMessage) error {
		sess.Play()
		return nil
	})

	mux.Handle("PAUSE", func(_ context.Context, _ *websocket.Conn, _ json.RawMessage) error {
		sess.Pause()
		return nil
	})

	mux.Handle("SEEK_TO", func(_ context.Context, _ *websocket.Conn, payload json.RawMessage) error {
		input, err := decode[SeekToInput](c.validate, payload)
		if err != nil {
			return err
		}

		sess.SeekTo(input.Seconds)
		return nil
	})

	mux.Handle("SEEK_BY", func(_ context.Context, _ *websocket.Conn, payload json.RawMessage) error {
		input, err := decode[SeekByInput](c.validate, payload)
		if err != nil {
			return err
		}

		sess.SeekBy(input.DeltaSeconds)
		return nil
	})

	mux.Handle("SYNC_NOW", func(_ context.Context, _ *websocket.Conn, _ json.RawMessage) error {
		sess.SyncNow()
		return nil
	})

	mux.Handle("START_GESTURE", func(_ context.Context, _ *websocket.Conn, _ json.RawMessage) error {
		sess.StartGesture()
		return nil
	})

	mux.Handle("SEND_CHAT", func(_ context.Context, _ *websocket.Conn, payload json.RawMessage) error {
		input, err := decode[SendChatInput](c.validate, payload)
		if err != nil {
			return err
		}

		sess.SendChat(input.Text)
		return nil
	})

	mux.Handle("TOGGLE_EVERYONE_CONTROL", func(_ context.Context, _ *websocket.Conn, payload json.RawMessage) error {
		input, err := decode[ToggleEveryoneControlInput](c.validate, payload)
		if err != nil {
			return err
		}

		sess.SetAllowEveryoneControl(input.Allow)
		return nil
	})

	mux.Handle("UPDATE_PROFILE", func(_ context.Context, _ *websocket.Conn, payload json.RawMessage) error {
		input, err := decode[UpdateProfileInput](c.validate, payload)
		if err != nil {
			return err
		}

		sess.Rename(input.Username)
		return nil
	})

	mux.Handle("REPORT_STATE", func(_ context.Context, _ *websocket.Conn, payload json.RawMessage) error {
		input, err := decode[ReportStateInput](c.validate, payload)
		if err != nil {
			return err
		}

		bridge.reportState(input.CurrentTime, input.State)
		return nil
	})

	mux.Handle("SURFACE_EVENT", func(_ context.Context, _ *websocket.Conn, payload json.RawMessage) error {
		input, err := decode[SurfaceEventInput](c.validate, payload)
		if err != nil {
			return err
		}

		surf.ingest(input)
		return nil
	})

	mux.Handle("PLAY_RESULT", func(_ context.Context, _ *websocket.Conn, payload json.RawMessage) error {
		input, err := decode[PlayResultInput](c.validate, payload)
		if err != nil {
			return err
		}

		bridge.playResult(input.Blocked, input.Detail)
		return nil
	})

	mux.OnError(func(ctx context.Context, _ *websocket.Conn, err error) error {
		c.logger.DebugContext(ctx, "websocket message failed",
			"message_type", wsrouter.GetMessageTypeFromCtx(ctx),
			"error", err,
		)

		bridge.send(&Output{Type: outError, Payload: errorPayload{Message: err.Error()}})

		return nil
	})

	return mux
}
