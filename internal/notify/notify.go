// Package notify delivers merged change reports. Sinks implement the
// Notifier interface; the coordinator calls Notify at most once per
// cycle and never retries a failed delivery.
package notify

import (
	"context"

	"github.com/hazyhaar/orgwatch/internal/snapshot"
)

// Notifier delivers one change report.
type Notifier interface {
	Notify(ctx context.Context, report snapshot.ChangeSet) error
	Close() error
}
