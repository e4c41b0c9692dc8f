package worker

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"aurum-payment-api/config"
	"aurum-payment-api/database"
	"aurum-payment-api/metrics"
	"aurum-payment-api/models"
	"aurum-payment-api/queue"
	"aurum-payment-api/services/billing"
	"aurum-payment-api/services/payment"
	"aurum-payment-api/services/payment/cardgate"
	"aurum-payment-api/utils"
)

// Worker drains the job queue: payment verification, recurring charges,
// reconciliation and the billing sweep.
type Worker struct {
	queue          *queue.Queue
	db             *database.Connection
	paymentService *payment.Service
	metrics        *metrics.PaymentMetrics
	billingCfg     config.BillingConfig
	shutdown       chan struct{}
	isRunning      bool
}

func NewWorker(q *queue.Queue, db *database.Connection, ps *payment.Service, m *metrics.PaymentMetrics, billingCfg config.BillingConfig) *Worker {
	return &Worker{
		queue:          q,
		db:             db,
		paymentService: ps,
		metrics:        m,
		billingCfg:     billingCfg,
		shutdown:       make(chan struct{}),
	}
}

// Start launches the worker pool plus the scheduler goroutine.
func (w *Worker) Start(concurrency int) {
	w.isRunning = true

	for i := 0; i < concurrency; i++ {
		go w.processJobs(i)
	}
	go w.runScheduler()

	log.Printf("Started %d worker goroutines and scheduler", concurrency)
}

func (w *Worker) Stop() {
	if !w.isRunning {
		return
	}

	log.Println("Stopping worker...")
	close(w.shutdown)
	w.isRunning = false
}

// runScheduler pumps the delayed queue and enqueues the periodic jobs on
// their intervals.
func (w *Worker) runScheduler() {
	delayedTicker := time.NewTicker(time.Minute)
	reconcileTicker := time.NewTicker(w.billingCfg.ReconcileInterval)
	sweepTicker := time.NewTicker(w.billingCfg.SweepInterval)
	defer delayedTicker.Stop()
	defer reconcileTicker.Stop()
	defer sweepTicker.Stop()

	for {
		select {
		case <-w.shutdown:
			log.Println("Scheduler shutting down")
			return
		case <-delayedTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := w.queue.ProcessDelayedJobs(ctx); err != nil {
				log.Printf("Scheduler: error pumping delayed jobs: %v", err)
			}
			cancel()
		case <-reconcileTicker.C:
			w.enqueuePeriodic(queue.JobTypeReconcilePending)
		case <-sweepTicker.C:
			w.enqueuePeriodic(queue.JobTypeBillingSweep)
		}
	}
}

func (w *Worker) enqueuePeriodic(jobType queue.JobType) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.queue.Enqueue(ctx, jobType, map[string]interface{}{}); err != nil {
		log.Printf("Scheduler: error enqueueing %s: %v", jobType, err)
	}
}

func (w *Worker) processJobs(workerID int) {
	log.Printf("Worker %d starting", workerID)

	for {
		select {
		case <-w.shutdown:
			log.Printf("Worker %d shutting down", workerID)
			return
		default:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			job, err := w.queue.Dequeue(ctx, 5*time.Second)
			cancel()

			if err != nil {
				log.Printf("Worker %d: Error dequeuing job: %v", workerID, err)
				time.Sleep(time.Second)
				continue
			}

			if job == nil {
				time.Sleep(100 * time.Millisecond)
				continue
			}

			log.Printf("Worker %d processing job %s of type %s", workerID, job.ID, job.Type)

			jobErr := w.processJob(job)
			if jobErr != nil {
				log.Printf("Worker %d: Error processing job %s: %v", workerID, job.ID, jobErr)
				w.metrics.JobsProcessedTotal.WithLabelValues(string(job.Type), "error").Inc()

				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if failErr := w.queue.FailJob(ctx, job, jobErr); failErr != nil {
					log.Printf("Worker %d: Error marking job %s as failed: %v", workerID, job.ID, failErr)
				}
				cancel()

				time.Sleep(time.Second)
				continue
			}

			w.metrics.JobsProcessedTotal.WithLabelValues(string(job.Type), "ok").Inc()

			ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
			if completeErr := w.queue.CompleteJob(ctx, job); completeErr != nil {
				log.Printf("Worker %d: Error marking job %s as complete: %v", workerID, job.ID, completeErr)
			}
			cancel()
		}
	}
}

func (w *Worker) processJob(job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeVerifyPayment:
		return w.processVerifyPayment(job)
	case queue.JobTypeChargeSubscription:
		return w.processChargeSubscription(job)
	case queue.JobTypeReconcilePending:
		return w.processReconcilePending()
	case queue.JobTypeBillingSweep:
		return w.processBillingSweep()
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// processVerifyPayment settles a top-up from a webhook delivery: verify with
// the gateway under the settlement lock, then apply the outcome.
func (w *Worker) processVerifyPayment(job *queue.Job) error {
	reference, ok := job.Data["reference"].(string)
	if !ok || reference == "" {
		return fmt.Errorf("invalid reference in job data")
	}

	topup, err := w.db.GetTopupByReference(reference)
	if err != nil {
		return fmt.Errorf("failed to load topup %s: %v", reference, err)
	}

	if topup.Status.IsFinal() {
		log.Printf("Topup %s already settled (status=%s). Skipping.", reference, topup.Status)
		return nil
	}

	locked, err := w.db.LockSettlement(reference)
	if err != nil {
		return err
	}
	if !locked {
		log.Printf("Topup %s is being settled elsewhere. Skipping.", reference)
		return nil
	}
	defer w.db.ReleaseSettlementLock(reference)

	result, err := w.paymentService.VerifyTopup(topup.GatewayToken)
	if err != nil {
		return fmt.Errorf("verify failed for topup %s: %v", reference, err)
	}

	if err := w.settleTopup(topup, result); err != nil {
		return err
	}
	return nil
}

func (w *Worker) settleTopup(topup *models.TopupTransaction, result *models.VerifyResult) error {
	err := w.db.SettleTopup(topup, result)
	if err == database.ErrAlreadySettled {
		log.Printf("Topup %s settled concurrently. Nothing to do.", topup.Reference)
		return nil
	}
	if err != nil {
		return err
	}

	status := "failed"
	if result.Success {
		status = "succeeded"
	}
	w.metrics.TopupsSettledTotal.WithLabelValues(status).Inc()
	return nil
}

// processChargeSubscription runs one recurring-charge attempt: wallet first,
// then the stored card, then the bank mandate.
func (w *Worker) processChargeSubscription(job *queue.Job) error {
	subscriptionID, ok := job.Data["subscription_id"].(string)
	if !ok || subscriptionID == "" {
		return fmt.Errorf("invalid subscription_id in job data")
	}

	sub, err := w.db.GetSubscriptionByID(subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to load subscription %s: %v", subscriptionID, err)
	}

	if sub.Status == models.SubscriptionStatusCanceled {
		log.Printf("Subscription %s is canceled. Skipping charge.", subscriptionID)
		return nil
	}

	plan, err := w.db.GetPlanByID(sub.PlanID)
	if err != nil {
		return fmt.Errorf("failed to load plan %d: %v", sub.PlanID, err)
	}

	now := time.Now()

	// PREPAID bills the period being entered; roll forward first when the
	// stored period is over. POSTPAID bills the period just finished and
	// rolls only after a successful charge.
	if plan.Mode == models.PlanModePrepaid && !now.Before(sub.PeriodEnd) {
		cycle := billing.NextCycle(plan, sub)
		sub.PeriodStart = cycle.PeriodStart
		sub.PeriodEnd = cycle.PeriodEnd
	}

	charged, err := w.db.HasInvoiceForPeriod(sub.ID, sub.PeriodStart)
	if err != nil {
		return err
	}
	if charged {
		log.Printf("Subscription %s already invoiced for period starting %s. Skipping.",
			sub.ID, sub.PeriodStart.Format("2006-01-02"))
		return nil
	}

	invoice := &models.Invoice{
		ID:             uuid.New().String(),
		SubscriptionID: sub.ID,
		BusinessID:     sub.BusinessID,
		Amount:         plan.Fee,
		Status:         models.InvoiceStatusPending,
		PeriodStart:    sub.PeriodStart,
		PeriodEnd:      sub.PeriodEnd,
	}

	tx, err := w.db.BeginTransaction()
	if err != nil {
		return err
	}
	if err := tx.SaveInvoice(invoice); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	paidVia, gatewayRef, chargeErr := w.attemptCharge(sub, invoice)

	if chargeErr == nil {
		w.metrics.RecurringChargesTotal.WithLabelValues(paidVia, "succeeded").Inc()
		return w.finishSuccessfulCharge(sub, plan, invoice, paidVia, gatewayRef, now)
	}

	log.Printf("Charge failed for subscription %s: %v", sub.ID, chargeErr)
	w.metrics.RecurringChargesTotal.WithLabelValues(paidVia, "failed").Inc()

	if err := w.db.MarkInvoiceFailed(invoice.ID); err != nil {
		log.Printf("Warning: failed to mark invoice %s failed: %v", invoice.ID, err)
	}

	return w.finishFailedCharge(sub, now)
}

// attemptCharge walks the payment instrument chain. Returns the instrument
// that paid and the gateway reference.
func (w *Worker) attemptCharge(sub *models.Subscription, invoice *models.Invoice) (string, string, error) {
	// 1. Wallet.
	tx, err := w.db.BeginTransaction()
	if err != nil {
		return "", "", err
	}
	debitErr := tx.DebitWallet(sub.BusinessID, invoice.Amount, models.WalletEntrySubscriptionFee, invoice.ID)
	if debitErr == nil {
		if err := tx.Commit(); err != nil {
			return "wallet", "", err
		}
		return "wallet", "", nil
	}
	tx.Rollback()
	if debitErr != database.ErrInsufficientBalance {
		return "wallet", "", debitErr
	}
	log.Printf("Wallet balance insufficient for subscription %s, falling back to card", sub.ID)

	// 2. Stored card.
	card, cardErr := w.db.GetDefaultCard(sub.BusinessID)
	if cardErr == nil {
		result, err := w.paymentService.ChargeStoredCard(card, invoice.Amount, invoice.ID)
		if err == nil && result.Success {
			return "card", result.GatewayRef, nil
		}
		if err != nil {
			log.Printf("Card charge errored for subscription %s: %v", sub.ID, err)
		} else {
			log.Printf("Card charge declined for subscription %s: %s", sub.ID, result.Message)
		}
	} else if cardErr != sql.ErrNoRows {
		return "card", "", cardErr
	}

	// 3. Bank mandate.
	mandateRef, mandateErr := w.db.GetMandateRef(sub.BusinessID)
	if mandateErr == nil && mandateRef != "" {
		result, err := w.paymentService.DebitMandate(mandateRef, invoice.Amount, invoice.ID)
		if err == nil && result.Success {
			return "mandate", result.GatewayRef, nil
		}
		if err != nil {
			log.Printf("Mandate debit errored for subscription %s: %v", sub.ID, err)
		} else {
			log.Printf("Mandate debit declined for subscription %s: %s", sub.ID, result.Message)
		}
	}

	return "none", "", fmt.Errorf("no payment instrument could cover invoice %s", invoice.ID)
}

func (w *Worker) finishSuccessfulCharge(sub *models.Subscription, plan *models.Plan, invoice *models.Invoice, paidVia, gatewayRef string, now time.Time) error {
	if err := w.db.MarkInvoicePaid(invoice.ID, paidVia, gatewayRef); err != nil {
		return err
	}

	if sub.Status != models.SubscriptionStatusActive {
		w.metrics.SubscriptionsByStatus.WithLabelValues(string(sub.Status)).Dec()
		w.metrics.SubscriptionsByStatus.WithLabelValues(string(models.SubscriptionStatusActive)).Inc()
	}
	sub.Status = models.SubscriptionStatusActive
	sub.FailedCharges = 0

	if plan.Mode == models.PlanModePostpaid {
		// The paid invoice covered the finished period; enter the next one.
		cycle := billing.NextCycle(plan, sub)
		sub.PeriodStart = cycle.PeriodStart
		sub.PeriodEnd = cycle.PeriodEnd
		sub.NextBillingAt = cycle.PeriodEnd
	} else {
		sub.NextBillingAt = sub.PeriodEnd
	}

	tx, err := w.db.BeginTransaction()
	if err != nil {
		return err
	}
	if err := tx.UpdateSubscriptionCycle(sub); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	log.Printf("Subscription %s charged via %s; next billing at %s",
		sub.ID, paidVia, sub.NextBillingAt.Format(time.RFC3339))
	return nil
}

// applyChargeFailure records one failed billing attempt on the subscription
// and schedules the next try. Exhausting the retry budget cancels the
// subscription for good, stamping canceled_at. Returns the new status.
func applyChargeFailure(sub *models.Subscription, maxRetries int, now time.Time) models.SubscriptionStatus {
	next := billing.ChargeOutcome(sub, false, maxRetries)
	sub.FailedCharges++
	sub.Status = next
	// Daily retry until the budget runs out.
	sub.NextBillingAt = utils.AddDays(now, 1)
	if next == models.SubscriptionStatusCanceled {
		canceled := now
		sub.CanceledAt = &canceled
	}
	return next
}

func (w *Worker) finishFailedCharge(sub *models.Subscription, now time.Time) error {
	prev := sub.Status
	next := applyChargeFailure(sub, w.billingCfg.MaxChargeRetries, now)

	if next != prev {
		w.metrics.SubscriptionsByStatus.WithLabelValues(string(prev)).Dec()
		w.metrics.SubscriptionsByStatus.WithLabelValues(string(next)).Inc()
	}

	tx, err := w.db.BeginTransaction()
	if err != nil {
		return err
	}
	if err := tx.UpdateSubscriptionCycle(sub); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if next == models.SubscriptionStatusCanceled {
		log.Printf("Subscription %s canceled after %d failed charges", sub.ID, sub.FailedCharges)
	} else {
		log.Printf("Subscription %s now %s (%d failed charges)", sub.ID, next, sub.FailedCharges)
	}
	return nil
}

// processReconcilePending polls the gateway for top-ups stuck in PENDING and
// settles what it learns. Anything still pending past the hard timeout is
// failed.
func (w *Worker) processReconcilePending() error {
	pending, err := w.db.ListPendingTopups(2*time.Minute, 100)
	if err != nil {
		return err
	}

	for _, topup := range pending {
		locked, err := w.db.LockSettlement(topup.Reference)
		if err != nil {
			log.Printf("Reconcile: error locking topup %s: %v", topup.Reference, err)
			continue
		}
		if !locked {
			continue
		}

		w.reconcileTopup(&topup)
		w.db.ReleaseSettlementLock(topup.Reference)
	}

	return nil
}

// reconcileOutcome decides how a pending top-up settles given the gateway's
// inquiry answer. inquiry is nil when the gateway was unreachable; the hard
// pending timeout still applies. A nil result leaves the top-up pending for
// the next pass.
func reconcileOutcome(topup *models.TopupTransaction, inquiry *cardgate.InquiryResult, now time.Time, timeout time.Duration) *models.VerifyResult {
	if inquiry != nil {
		switch inquiry.State {
		case cardgate.InquiryStateSucceeded:
			return &models.VerifyResult{
				Success:    true,
				Reference:  topup.Reference,
				GatewayRef: inquiry.RRN,
				MaskedPAN:  inquiry.MaskedPAN,
				CardToken:  inquiry.CardToken,
			}
		case cardgate.InquiryStateFailed:
			return &models.VerifyResult{
				Success:     false,
				Reference:   topup.Reference,
				FailureCode: "gateway_failed",
				Message:     inquiry.Message,
			}
		}
	}

	if now.Sub(topup.CreatedAt) > timeout {
		return &models.VerifyResult{
			Success:     false,
			Reference:   topup.Reference,
			FailureCode: "timeout",
			Message:     "transaction expired without gateway confirmation",
		}
	}

	return nil
}

func (w *Worker) reconcileTopup(topup *models.TopupTransaction) {
	inquiry, err := w.paymentService.InquireTopup(topup.GatewayToken)
	if err != nil {
		log.Printf("Reconcile: inquiry failed for topup %s: %v", topup.Reference, err)
		inquiry = nil
	}

	result := reconcileOutcome(topup, inquiry, time.Now(), w.billingCfg.PendingTopupTimeout)
	if result == nil {
		return
	}

	if err := w.settleTopup(topup, result); err != nil {
		log.Printf("Reconcile: error settling topup %s: %v", topup.Reference, err)
		return
	}

	if result.FailureCode == "timeout" {
		w.metrics.TopupsExpiredTotal.Inc()
		log.Printf("Topup %s expired after pending timeout", topup.Reference)
	}
}

// processBillingSweep enqueues a charge job for every due subscription.
func (w *Worker) processBillingSweep() error {
	due, err := w.db.ListDueSubscriptions(time.Now(), 100)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, sub := range due {
		err := w.queue.Enqueue(ctx, queue.JobTypeChargeSubscription, map[string]interface{}{
			"subscription_id": sub.ID,
		})
		if err != nil {
			log.Printf("Sweep: error enqueueing charge for subscription %s: %v", sub.ID, err)
		}
	}

	if len(due) > 0 {
		log.Printf("Billing sweep enqueued %d charge jobs", len(due))
	}
	return nil
}
