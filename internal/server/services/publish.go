package services

import (
	"context"

	"github.com/dmitrijs2005/spacestar/internal/logging"
	"github.com/dmitrijs2005/spacestar/internal/server/events"
	"github.com/dmitrijs2005/spacestar/internal/server/metrics"
)

// publish emits e after the surrounding transaction has committed. Failures
// are logged and counted but never returned.
func publish(ctx context.Context, p events.Publisher, log logging.Logger, e events.Event) {
	if err := p.Publish(ctx, e); err != nil {
		metrics.RecordEventPublishError()
		log.Error(ctx, "event publish failed", "type", e.Type, "uuid", e.UUID, "error", err)
	}
}
