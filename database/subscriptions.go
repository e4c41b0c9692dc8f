package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"aurum-payment-api/models"
)

const subscriptionColumns = `
        s.id, s.business_id, s.plan_id, p.code, s.status,
        s.period_start, s.period_end, s.next_billing_at,
        s.grace_granted, s.failed_charges, s.created_at, s.canceled_at
`

func scanSubscription(row interface {
	Scan(dest ...interface{}) error
}) (*models.Subscription, error) {
	var s models.Subscription
	var canceledAt sql.NullTime
	err := row.Scan(
		&s.ID, &s.BusinessID, &s.PlanID, &s.PlanCode, &s.Status,
		&s.PeriodStart, &s.PeriodEnd, &s.NextBillingAt,
		&s.GraceGranted, &s.FailedCharges, &s.CreatedAt, &canceledAt)
	if err != nil {
		return nil, err
	}
	if canceledAt.Valid {
		s.CanceledAt = &canceledAt.Time
	}
	return &s, nil
}

// GetCurrentSubscription returns the business's non-canceled subscription,
// or sql.ErrNoRows.
func (c *Connection) GetCurrentSubscription(businessID int64) (*models.Subscription, error) {
	query := `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions s
        JOIN plans p ON p.id = s.plan_id
        WHERE s.business_id = ? AND s.status != ?
        ORDER BY s.created_at DESC
        LIMIT 1
    `

	return scanSubscription(c.db.QueryRow(query, businessID, models.SubscriptionStatusCanceled))
}

func (c *Connection) GetSubscriptionByID(id string) (*models.Subscription, error) {
	query := `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions s
        JOIN plans p ON p.id = s.plan_id
        WHERE s.id = ?
    `

	return scanSubscription(c.db.QueryRow(query, id))
}

// ListDueSubscriptions finds subscriptions the billing sweep must charge.
func (c *Connection) ListDueSubscriptions(now time.Time, limit int) ([]models.Subscription, error) {
	query := `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions s
        JOIN plans p ON p.id = s.plan_id
        WHERE s.status IN (?, ?) AND s.next_billing_at <= ?
        ORDER BY s.next_billing_at ASC
        LIMIT ?
    `

	rows, err := c.db.Query(query,
		models.SubscriptionStatusActive, models.SubscriptionStatusPastDue, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due subscriptions: %v", err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}

	return subs, rows.Err()
}

func (c *Connection) UpdateSubscriptionStatus(id string, from, to models.SubscriptionStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("invalid subscription transition %s -> %s", from, to)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `UPDATE subscriptions SET status = ? WHERE id = ? AND status = ?`
	if to == models.SubscriptionStatusCanceled {
		query = `UPDATE subscriptions SET status = ?, canceled_at = NOW() WHERE id = ? AND status = ?`
	}

	result, err := c.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("subscription %s no longer in status %s", id, from)
	}

	return nil
}

// HasInvoiceForPeriod is the billing-sweep idempotency check: one invoice
// per subscription per period start.
func (c *Connection) HasInvoiceForPeriod(subscriptionID string, periodStart time.Time) (bool, error) {
	var exists bool
	err := c.db.QueryRow(`
        SELECT EXISTS(
            SELECT 1 FROM subscription_invoices
            WHERE subscription_id = ? AND period_start = ? AND status != ?
        )
    `, subscriptionID, periodStart, models.InvoiceStatusFailed).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking invoice for period: %v", err)
	}
	return exists, nil
}

func (c *Connection) GetInvoiceByID(id string) (*models.Invoice, error) {
	query := `
        SELECT id, subscription_id, business_id, amount, status,
               period_start, period_end, COALESCE(paid_via, ''),
               COALESCE(gateway_ref, ''), created_at, paid_at
        FROM subscription_invoices
        WHERE id = ?
    `

	var inv models.Invoice
	var paidAt sql.NullTime
	err := c.db.QueryRow(query, id).Scan(
		&inv.ID, &inv.SubscriptionID, &inv.BusinessID, &inv.Amount, &inv.Status,
		&inv.PeriodStart, &inv.PeriodEnd, &inv.PaidVia, &inv.GatewayRef,
		&inv.CreatedAt, &paidAt)
	if err != nil {
		return nil, err
	}
	if paidAt.Valid {
		inv.PaidAt = &paidAt.Time
	}
	return &inv, nil
}

func (c *Connection) MarkInvoicePaid(id, paidVia, gatewayRef string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := c.db.ExecContext(ctx, `
        UPDATE subscription_invoices
        SET status = ?, paid_via = ?, gateway_ref = ?, paid_at = NOW()
        WHERE id = ? AND status = ?
    `, models.InvoiceStatusPaid, paidVia, gatewayRef, id, models.InvoiceStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark invoice paid: %v", err)
	}
	return nil
}

func (c *Connection) MarkInvoiceFailed(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := c.db.ExecContext(ctx, `
        UPDATE subscription_invoices SET status = ? WHERE id = ? AND status = ?
    `, models.InvoiceStatusFailed, id, models.InvoiceStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark invoice failed: %v", err)
	}
	return nil
}
