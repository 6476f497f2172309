package session

import (
	"context"
	"math"
	"time"

	"github.com/alicehocane/watch/internal/domain"
	"github.com/alicehocane/watch/internal/player"
)

// DriftThreshold is the deadband below which local position is left alone.
// Tighter causes constant micro-seeks that look janky; looser feels
// unsynced.
const DriftThreshold = 0.6

// Reconciler pulls a local controller toward the shared playback state.
// Seeks it issues go through the controller's suppression path, so a
// correction never loops back into a new publish.
type Reconciler struct {
	now func() time.Time
}

func NewReconciler() *Reconciler {
	return &Reconciler{now: time.Now}
}

func (r *Reconciler) Reconcile(ctx context.Context, state domain.PlaybackState, ctrl player.Controller) error {
	expected := state.ExpectedPosition(r.now())
	if drift := math.Abs(expected - ctrl.CurrentTime()); drift > DriftThreshold {
		ctrl.Seek(expected)
	}

	switch {
	case state.IsPlaying && !ctrl.IsPlaying():
		return ctrl.Play(ctx)
	case !state.IsPlaying && ctrl.IsPlaying():
		ctrl.Pause()
	}

	return nil
}
