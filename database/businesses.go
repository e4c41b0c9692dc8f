package database

import (
	"context"
	"fmt"
	"time"

	"aurum-payment-api/models"
)

func (c *Connection) GetBusinessByID(id int64) (*models.Business, error) {
	query := `
        SELECT id, name, email, COALESCE(phone_number, ''), is_active, grace_used, created_at
        FROM businesses
        WHERE id = ?
    `

	var b models.Business
	err := c.db.QueryRow(query, id).Scan(
		&b.ID, &b.Name, &b.Email, &b.PhoneNumber, &b.IsActive, &b.GraceUsed, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetMandateRef returns the business's active direct-debit mandate
// reference, or empty string when none exists.
func (c *Connection) GetMandateRef(businessID int64) (string, error) {
	var ref string
	err := c.db.QueryRow(`
        SELECT mandate_ref FROM mandates
        WHERE business_id = ? AND status = 'active'
        ORDER BY created_at DESC
        LIMIT 1
    `, businessID).Scan(&ref)
	if err != nil {
		return "", err
	}
	return ref, nil
}

func (c *Connection) CreateMandate(businessID int64, mandateRef string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := c.db.ExecContext(ctx, `
        INSERT INTO mandates (business_id, mandate_ref, status, created_at)
        VALUES (?, ?, 'pending', NOW())
    `, businessID, mandateRef)
	if err != nil {
		return fmt.Errorf("failed to create mandate: %v", err)
	}
	return nil
}

func (c *Connection) UpdateMandateStatus(mandateRef, status string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := c.db.ExecContext(ctx,
		`UPDATE mandates SET status = ? WHERE mandate_ref = ?`,
		status, mandateRef)
	if err != nil {
		return fmt.Errorf("failed to update mandate status: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("mandate %s not found", mandateRef)
	}
	return nil
}
