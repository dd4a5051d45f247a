package report

import (
	"context"
	"fmt"

	"github.com/arbscan/arbwatch/internal/domain"
	"github.com/arbscan/arbwatch/internal/notify"
)

// NotifySink forwards decisions to the notifier, which applies the
// operator-configured event filter before dispatching to Telegram/Discord.
type NotifySink struct {
	notifier *notify.Notifier
}

// NewNotifySink creates a NotifySink.
func NewNotifySink(notifier *notify.Notifier) *NotifySink {
	return &NotifySink{notifier: notifier}
}

// Name returns the sink identifier.
func (s *NotifySink) Name() string { return "notify" }

// Publish maps the decision outcome to a notification event. NoOpportunity
// ticks are deliberately never forwarded; they would drown every channel.
func (s *NotifySink) Publish(ctx context.Context, report domain.TickReport) error {
	dec := report.Decision
	switch dec.Outcome {
	case domain.OutcomeOpportunity:
		title := fmt.Sprintf("Arbitrage opportunity: %s", dec.Pair)
		msg := fmt.Sprintf(
			"Buy on %s at %.2f, sell on %s at %.2f\nGross profit: $%.2f\nNet profit: $%.2f",
			dec.BuyVenue, dec.BuyPrice, dec.SellVenue, dec.SellPrice,
			dec.GrossProfit, dec.NetProfit,
		)
		return s.notifier.Notify(ctx, "opportunity", title, msg)
	case domain.OutcomeIndeterminate:
		title := fmt.Sprintf("Tick %d indeterminate", report.Seq)
		return s.notifier.Notify(ctx, "indeterminate", title, dec.Reason)
	default:
		return nil
	}
}

// Compile-time interface check.
var _ domain.ReportSink = (*NotifySink)(nil)
