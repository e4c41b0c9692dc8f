package database

import (
	"context"
	"fmt"
	"time"

	"aurum-payment-api/models"
)

func (c *Connection) ListCards(businessID int64) ([]models.Card, error) {
	query := `
        SELECT id, business_id, token, masked_pan, COALESCE(brand, ''),
               expiry, is_default, created_at
        FROM cards
        WHERE business_id = ? AND deleted_at IS NULL
        ORDER BY is_default DESC, id ASC
    `

	rows, err := c.db.Query(query, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %v", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var card models.Card
		err := rows.Scan(&card.ID, &card.BusinessID, &card.Token, &card.MaskedPAN,
			&card.Brand, &card.Expiry, &card.IsDefault, &card.CreatedAt)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	return cards, rows.Err()
}

func (c *Connection) GetDefaultCard(businessID int64) (*models.Card, error) {
	query := `
        SELECT id, business_id, token, masked_pan, COALESCE(brand, ''),
               expiry, is_default, created_at
        FROM cards
        WHERE business_id = ? AND is_default = 1 AND deleted_at IS NULL
    `

	var card models.Card
	err := c.db.QueryRow(query, businessID).Scan(
		&card.ID, &card.BusinessID, &card.Token, &card.MaskedPAN,
		&card.Brand, &card.Expiry, &card.IsDefault, &card.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Connection) SetDefaultCard(businessID, cardID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE cards SET is_default = 1 WHERE id = ? AND business_id = ? AND deleted_at IS NULL`,
		cardID, businessID)
	if err != nil {
		return fmt.Errorf("failed to set default card: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("card %d not found for business %d", cardID, businessID)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE cards SET is_default = 0 WHERE business_id = ? AND id != ?`,
		businessID, cardID)
	if err != nil {
		return fmt.Errorf("failed to clear previous default card: %v", err)
	}

	return tx.Commit()
}

func (c *Connection) DeleteCard(businessID, cardID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := c.db.ExecContext(ctx,
		`UPDATE cards SET deleted_at = NOW(), is_default = 0 WHERE id = ? AND business_id = ? AND deleted_at IS NULL`,
		cardID, businessID)
	if err != nil {
		return fmt.Errorf("failed to delete card: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("card %d not found for business %d", cardID, businessID)
	}

	return nil
}
