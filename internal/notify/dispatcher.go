package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Dispatcher fans one notification out to every enabled, available transport
// concurrently. A failing transport never aborts its siblings; each failure is
// logged and the caller only learns that dispatch was attempted.
type Dispatcher struct {
	transports []Transport
	logger     *zap.Logger
}

// NewDispatcher creates a dispatcher over the given transports. Transports
// that are nil (not configured) are skipped.
func NewDispatcher(logger *zap.Logger, transports ...Transport) *Dispatcher {
	active := make([]Transport, 0, len(transports))
	for _, t := range transports {
		if t != nil {
			active = append(active, t)
		}
	}
	return &Dispatcher{transports: active, logger: logger}
}

// Transports returns the number of configured transports.
func (d *Dispatcher) Transports() int {
	return len(d.transports)
}

// Dispatch sends the notification through every available transport and
// returns the number of transports attempted.
func (d *Dispatcher) Dispatch(ctx context.Context, n Notification) int {
	if n.Title == "" {
		n.Title = TitleFor(n.Category)
	}

	var wg sync.WaitGroup
	attempted := 0
	for _, t := range d.transports {
		if !t.Available(n) {
			continue
		}
		attempted++
		wg.Add(1)
		go func(t Transport) {
			defer wg.Done()
			if err := t.Send(ctx, n); err != nil && d.logger != nil {
				d.logger.Error("notification_send_failed",
					zap.String("transport", t.Name()),
					zap.String("user_id", n.UserID.String()),
					zap.String("category", string(n.Category)),
					zap.Error(err),
				)
			}
		}(t)
	}
	wg.Wait()

	if d.logger != nil {
		d.logger.Debug("notification_dispatched",
			zap.String("user_id", n.UserID.String()),
			zap.String("category", string(n.Category)),
			zap.Int("transports_attempted", attempted),
		)
	}
	return attempted
}
