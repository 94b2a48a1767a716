package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"devconnector/internal/logging"
	"devconnector/internal/queue"
)

// AvatarRemover deletes a user's stored avatar. Implemented by
// service.AvatarService.
type AvatarRemover interface {
	Remove(ctx context.Context, userID string) error
}

// Handler processes account events from the queue.
type Handler struct {
	avatars AvatarRemover
	log     zerolog.Logger
}

// NewHandler creates a new event handler. avatars may be nil when object
// storage is not configured.
func NewHandler(avatars AvatarRemover) *Handler {
	return &Handler{avatars: avatars, log: logging.For("worker")}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.AccountEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventAccountDeleted:
		err = h.handleAccountDeleted(ctx, event)
	default:
		h.log.Warn().Str("type", event.Type).Msg("unknown event type")
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		h.log.Error().Err(err).Str("type", event.Type).Dur("duration", time.Since(startTime)).Msg("event failed")
		return err
	}

	h.log.Debug().Str("type", event.Type).Dur("duration", time.Since(startTime)).Msg("event handled")
	return nil
}

// handleAccountDeleted removes the uploaded avatar of a deleted account.
// Database rows are already gone by the time the event is published.
func (h *Handler) handleAccountDeleted(ctx context.Context, event queue.AccountEvent) error {
	if !event.HasAvatar {
		return nil
	}
	if h.avatars == nil {
		h.log.Warn().Str(logging.UserID, event.UserID).Msg("object storage not configured, avatar left in place")
		return nil
	}

	if err := h.avatars.Remove(ctx, event.UserID); err != nil {
		return fmt.Errorf("remove avatar of %s: %w", event.UserID, err)
	}

	h.log.Info().Str(logging.UserID, event.UserID).Msg("avatar removed")
	return nil
}
