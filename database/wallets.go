package database

import (
	"fmt"

	"aurum-payment-api/models"
)

func (c *Connection) GetWalletByBusiness(businessID int64) (*models.Wallet, error) {
	query := `
        SELECT id, business_id, balance, currency, updated_at
        FROM wallets
        WHERE business_id = ?
    `

	var w models.Wallet
	err := c.db.QueryRow(query, businessID).Scan(
		&w.ID, &w.BusinessID, &w.Balance, &w.Currency, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Connection) ListWalletTransactions(businessID int64, limit, offset int) ([]models.WalletTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
        SELECT wt.id, wt.wallet_id, wt.kind, wt.amount, wt.balance_after,
               COALESCE(wt.reference, ''), wt.created_at
        FROM wallet_transactions wt
        JOIN wallets w ON w.id = wt.wallet_id
        WHERE w.business_id = ?
        ORDER BY wt.id DESC
        LIMIT ? OFFSET ?
    `

	rows, err := c.db.Query(query, businessID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %v", err)
	}
	defer rows.Close()

	var entries []models.WalletTransaction
	for rows.Next() {
		var e models.WalletTransaction
		err := rows.Scan(&e.ID, &e.WalletID, &e.Kind, &e.Amount,
			&e.BalanceAfter, &e.Reference, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
