package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alicehocane/watch/internal/domain"
	"github.com/alicehocane/watch/internal/player"
	"github.com/alicehocane/watch/internal/session"
	"github.com/alicehocane/watch/pkg/ytmeta"
)

type createRoomInput struct {
	VideoURL string `json:"video_url" validate:"required,url"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	input := createRoomInput{VideoURL: r.URL.Query().Get("video-url")}
	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.logger.DebugContext(r.Context(), "invalid create room request", "errors", validationErrors)
		c.respondError(w, http.StatusBadRequest, "video-url is required and must be a valid url")
		return
	}

	// classification happens before the upgrade so an unplayable source is
	// rejected with a proper status instead of a dead socket
	source, err := player.ClassifySource(input.VideoURL)
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to classify source", "error", err)
		c.respondError(w, http.StatusUnprocessableEntity, "unplayable video source")
		return
	}

	c.serveRoom(w, r, source, func(ctx context.Context, sess *session.Session) (session.Snapshot, error) {
		return sess.Create(ctx, source.URL)
	})
}

func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room-id")
	if roomID == "" {
		c.respondError(w, http.StatusNotFound, "room not found")
		return
	}

	room, err := c.rooms.GetRoom(r.Context(), roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			c.respondError(w, http.StatusNotFound, "room not found")
			return
		}

		c.logger.WarnContext(r.Context(), "failed to get room", "error", err)
		c.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	source, err := player.ClassifySource(room.VideoURL)
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to classify source", "error", err)
		c.respondError(w, http.StatusUnprocessableEntity, "unplayable video source")
		return
	}

	c.serveRoom(w, r, source, func(ctx context.Context, sess *session.Session) (session.Snapshot, error) {
		return sess.Join(ctx, roomID)
	})
}

func (c controller) serveRoom(
	w http.ResponseWriter,
	r *http.Request,
	source player.Source,
	enter func(ctx context.Context, sess *session.Session) (session.Snapshot, error),
) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	bridge := newSurfaceBridge(conn, c.logger)

	// the UI hosts the media surface, so the controller backend is driven
	// through the same socket the session notifies on
	var surf surface
	sess := c.newSession(bridge, func(events player.Events) player.Controller {
		switch source.Kind {
		case player.SourceWidget:
			widget := newWidgetSurface(bridge)
			surf = widget
			return player.NewWidget(widget, events)
		default:
			media := newMediaSurface(bridge)
			surf = media
			return player.NewMedia(media, events)
		}
	})
	defer sess.Close()

	participantID := c.identity.ParticipantID()
	if err := c.registry.Add(participantID, sess); err != nil {
		c.logger.DebugContext(r.Context(), "failed to register session", "error", err)
		bridge.SessionError(err)
		return
	}
	defer c.registry.Remove(participantID)

	snapshot, err := enter(r.Context(), sess)
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to enter room", "error", err)
		bridge.SessionError(err)
		return
	}

	bridge.send(&Output{Type: outJoinedRoom, Payload: joinedRoomPayload{
		Snapshot:  snapshot,
		Source:    sourcePayload{Kind: sourceKindString(source.Kind), URL: source.URL, VideoID: source.VideoID},
		VideoData: c.lookupVideoData(r.Context(), source),
	}})

	if err := c.newWSMux(sess, bridge, surf).ServeConn(r.Context(), conn); err != nil {
		c.logger.DebugContext(r.Context(), "websocket closed", "error", err)
	}
}

// lookupVideoData is cosmetic and best effort; a failed lookup never
// blocks joining.
func (c controller) lookupVideoData(ctx context.Context, source player.Source) *ytmeta.VideoData {
	if source.Kind != player.SourceWidget {
		return nil
	}

	videoData, err := c.ytClient.Get(ctx, source.VideoID)
	if err != nil {
		c.logger.DebugContext(ctx, "failed to get video data", "error", err)
		return nil
	}

	return videoData
}

func sourceKindString(kind player.SourceKind) string {
	if kind == player.SourceWidget {
		return "widget"
	}

	return "media"
}
