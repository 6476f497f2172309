package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/alicehocane/watch/internal/domain"
	"github.com/alicehocane/watch/internal/session"
	"github.com/alicehocane/watch/pkg/validator"
	"github.com/alicehocane/watch/pkg/ytmeta"
)

type iRoomReader interface {
	GetRoom(ctx context.Context, roomID string) (domain.Room, error)
}

type iIdentity interface {
	ParticipantID() string
}

type iRegistry interface {
	Add(participantID string, s *session.Session) error
	Remove(participantID string)
}

// sessionFactory builds a session bound to the given notifier and playback
// controller factory. Every websocket connection gets its own session.
type sessionFactory func(notifier session.Notifier, factory session.ControllerFactory) *session.Session

type Deps struct {
	Rooms      iRoomReader
	Identity   iIdentity
	Registry   iRegistry
	NewSession sessionFactory
	Logger     *slog.Logger
}

type controller struct {
	rooms      iRoomReader
	identity   iIdentity
	registry   iRegistry
	newSession sessionFactory
	ytClient   *ytmeta.Client
	upgrader   websocket.Upgrader
	validate   *validator.Validator
	logger     *slog.Logger
}

func NewController(deps *Deps) *controller {
	return &controller{
		rooms:      deps.Rooms,
		identity:   deps.Identity,
		registry:   deps.Registry,
		newSession: deps.NewSession,
		ytClient:   ytmeta.NewClient(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		logger:   deps.Logger,
	}
}
