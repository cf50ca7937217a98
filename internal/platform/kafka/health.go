package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// HealthChecker reports broker reachability for the readiness probe. It
// dials raw TCP instead of reusing the producer client so a wedged producer
// cannot mask an unreachable cluster.
type HealthChecker struct {
	brokers string
	timeout time.Duration
}

// NewHealthChecker creates a checker over a comma-separated broker list.
func NewHealthChecker(brokers string) *HealthChecker {
	return &HealthChecker{
		brokers: brokers,
		timeout: 5 * time.Second,
	}
}

// Check returns nil when at least one broker accepts a TCP connection.
func (h *HealthChecker) Check(ctx context.Context) error {
	dialer := net.Dialer{Timeout: h.timeout}
	var errs []error

	for _, broker := range strings.Split(h.brokers, ",") {
		broker = strings.TrimSpace(broker)
		if broker == "" {
			continue
		}
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		conn.Close()
		// one reachable broker is enough to accept alert events
		return nil
	}

	if len(errs) == 0 {
		return errors.New("no kafka brokers configured")
	}
	return fmt.Errorf("no kafka brokers reachable: %w", errors.Join(errs...))
}

// Name returns the check name for health reporting.
func (h *HealthChecker) Name() string {
	return "kafka"
}
