// Package service holds the operations shared by the REST handlers and the
// realtime channel: recording messages, validating annonces and rating users.
package service

import (
	"context"
	"log"
	"time"

	"github.com/ptitsvieux/backend/internal/queue"
)

const publishTimeout = 2 * time.Second

// Publish sends ev without letting a broker problem reach the caller.  The
// request context may already be done when the response is written, so the
// publish gets its own deadline.
func Publish(ctx context.Context, p queue.Publisher, ev queue.ActivityEvent) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, ev); err != nil {
		log.Printf("events: %s not published: %v", ev.Type, err)
	}
}
