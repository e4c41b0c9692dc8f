package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"aurum-payment-api/models"
)

func (c *Connection) CreateTopup(t *models.TopupTransaction) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `
        INSERT INTO topup_transactions (
            reference, business_id, amount, status, gateway,
            gateway_token, save_card, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, NOW())
    `

	_, err := c.db.ExecContext(ctx, query,
		t.Reference, t.BusinessID, t.Amount, t.Status, t.Gateway,
		t.GatewayToken, t.SaveCard)
	if err != nil {
		log.Printf("Error creating topup %s: %v", t.Reference, err)
		return fmt.Errorf("failed to create topup: %v", err)
	}

	return nil
}

func (c *Connection) GetTopupByReference(reference string) (*models.TopupTransaction, error) {
	query := `
        SELECT reference, business_id, amount, status, gateway,
               gateway_token, COALESCE(gateway_ref, ''), COALESCE(failure_code, ''),
               save_card, created_at, settled_at
        FROM topup_transactions
        WHERE reference = ?
    `

	var t models.TopupTransaction
	var settledAt sql.NullTime
	err := c.db.QueryRow(query, reference).Scan(
		&t.Reference, &t.BusinessID, &t.Amount, &t.Status, &t.Gateway,
		&t.GatewayToken, &t.GatewayRef, &t.FailureCode,
		&t.SaveCard, &t.CreatedAt, &settledAt)
	if err != nil {
		return nil, err
	}
	if settledAt.Valid {
		t.SettledAt = &settledAt.Time
	}
	return &t, nil
}

func (c *Connection) GetTopupByGatewayToken(token string) (*models.TopupTransaction, error) {
	var reference string
	err := c.db.QueryRow(
		`SELECT reference FROM topup_transactions WHERE gateway_token = ?`,
		token).Scan(&reference)
	if err != nil {
		return nil, err
	}
	return c.GetTopupByReference(reference)
}

func (c *Connection) UpdateTopupGatewayToken(reference, token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := c.db.ExecContext(ctx,
		`UPDATE topup_transactions SET gateway_token = ? WHERE reference = ?`,
		token, reference)
	if err != nil {
		return fmt.Errorf("failed to update gateway token: %v", err)
	}
	return nil
}

// ListPendingTopups returns PENDING top-ups created before the cutoff, for
// the reconciliation poller.
func (c *Connection) ListPendingTopups(olderThan time.Duration, limit int) ([]models.TopupTransaction, error) {
	query := `
        SELECT reference, business_id, amount, status, gateway,
               gateway_token, COALESCE(gateway_ref, ''), COALESCE(failure_code, ''),
               save_card, created_at, settled_at
        FROM topup_transactions
        WHERE status = ? AND created_at < NOW() - INTERVAL ? SECOND
        ORDER BY created_at ASC
        LIMIT ?
    `

	rows, err := c.db.Query(query, models.TopupStatusPending, int(olderThan.Seconds()), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending topups: %v", err)
	}
	defer rows.Close()

	var topups []models.TopupTransaction
	for rows.Next() {
		var t models.TopupTransaction
		var settledAt sql.NullTime
		err := rows.Scan(
			&t.Reference, &t.BusinessID, &t.Amount, &t.Status, &t.Gateway,
			&t.GatewayToken, &t.GatewayRef, &t.FailureCode,
			&t.SaveCard, &t.CreatedAt, &settledAt)
		if err != nil {
			return nil, err
		}
		if settledAt.Valid {
			t.SettledAt = &settledAt.Time
		}
		topups = append(topups, t)
	}

	return topups, rows.Err()
}
