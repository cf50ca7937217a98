// Package alert delivers fraud notifications to operations staff. Delivery is
// fire-and-forget from the caller's perspective: the lifecycle service logs
// failures and moves on.
package alert

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var alertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fides_fraud_alerts_total",
	Help: "Fraud alerts by delivery status",
}, []string{"status"})

// Notifier sends a fraud alert message to the given recipients.
type Notifier interface {
	Notify(ctx context.Context, recipients []string, message string) error
}

// LogNotifier writes alerts to the structured log. It is the default sink and
// the fallback when no broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, recipients []string, message string) error {
	n.logger.WarnContext(ctx, "fraud alert",
		"recipients", recipients,
		"message", message,
	)
	alertsTotal.WithLabelValues("sent").Inc()
	return nil
}
