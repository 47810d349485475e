package jobs

import (
	"context"
	"fmt"

	"partytab-backend/internal/domain"
	"partytab-backend/internal/logger"
)

// ReconcileAcknowledgements is the cron entry point for RunReconcileAcknowledgements.
func (jr *JobRunner) ReconcileAcknowledgements() {
	_ = jr.RunReconcileAcknowledgements()
}

// RunReconcileAcknowledgements removes stale acknowledgements from every
// tab. Expense writes already reconcile; this catches writes whose reconcile
// step failed. Closed tabs are included because they can still be settled.
func (jr *JobRunner) RunReconcileAcknowledgements() error {
	return jr.runWithRecovery(JobReconcileAcknowledgements, func() error {
		ctx := context.Background()

		var tabs []domain.Tab
		for _, status := range []domain.TabStatus{domain.TabStatusActive, domain.TabStatusClosed} {
			batch, err := jr.tabs.ListByStatus(ctx, status)
			if err != nil {
				return fmt.Errorf("failed to list %s tabs: %w", status, err)
			}
			tabs = append(tabs, batch...)
		}

		removed, failed := 0, 0
		for _, tab := range tabs {
			n, err := jr.services.Settlement.ReconcileTab(ctx, tab.ID)
			if err != nil {
				failed++
				logger.Error("Failed to reconcile tab", "tabID", tab.ID, "error", err)
				continue
			}
			removed += n
		}

		logger.Info("Reconciled acknowledgements", "tabs", len(tabs), "removed", removed, "failed", failed)
		if failed > 0 {
			return fmt.Errorf("%d of %d tabs failed to reconcile", failed, len(tabs))
		}
		return nil
	})
}

// SendConfirmationReminders is the cron entry point for RunSendConfirmationReminders.
func (jr *JobRunner) SendConfirmationReminders() {
	_ = jr.RunSendConfirmationReminders()
}

// RunSendConfirmationReminders nudges payees whose transfers have been
// waiting for confirmation longer than the configured window.
func (jr *JobRunner) RunSendConfirmationReminders() error {
	return jr.runWithRecovery(JobSendConfirmationReminders, func() error {
		ctx := context.Background()
		cutoff := jr.now().Add(-jr.config.ReminderAfter())

		sent, err := jr.services.Settlement.RemindAwaitingConfirmations(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to send confirmation reminders: %w", err)
		}

		logger.Info("Sent confirmation reminders", "count", sent, "markedBefore", cutoff)
		return nil
	})
}
