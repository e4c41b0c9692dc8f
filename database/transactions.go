package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"aurum-payment-api/models"
)

type Transaction struct {
	tx *sql.Tx
}

func (t *Transaction) Commit() error {
	return t.tx.Commit()
}

func (t *Transaction) Rollback() error {
	return t.tx.Rollback()
}

var ErrAlreadySettled = fmt.Errorf("transaction already settled")

// LockTopupForSettlement re-reads the top-up under FOR UPDATE and returns
// ErrAlreadySettled unless it is still PENDING. This is the guard that makes
// duplicate callbacks and webhooks no-ops.
func (t *Transaction) LockTopupForSettlement(reference string) (*models.TopupTransaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `
        SELECT reference, business_id, amount, status, gateway, gateway_token, save_card
        FROM topup_transactions
        WHERE reference = ?
        FOR UPDATE
    `

	var topup models.TopupTransaction
	err := t.tx.QueryRowContext(ctx, query, reference).Scan(
		&topup.Reference, &topup.BusinessID, &topup.Amount,
		&topup.Status, &topup.Gateway, &topup.GatewayToken, &topup.SaveCard)
	if err != nil {
		return nil, fmt.Errorf("failed to lock topup %s: %v", reference, err)
	}

	if topup.Status.IsFinal() {
		return &topup, ErrAlreadySettled
	}
	return &topup, nil
}

func (t *Transaction) MarkTopupSucceeded(reference, gatewayRef string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `
        UPDATE topup_transactions
        SET status = ?, gateway_ref = ?, settled_at = NOW()
        WHERE reference = ? AND status = ?
    `

	result, err := t.tx.ExecContext(ctx, query,
		models.TopupStatusSucceeded, gatewayRef, reference, models.TopupStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark topup succeeded: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAlreadySettled
	}

	log.Printf("Topup %s marked succeeded (gateway ref %s)", reference, gatewayRef)
	return nil
}

func (t *Transaction) MarkTopupFailed(reference, failureCode string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `
        UPDATE topup_transactions
        SET status = ?, failure_code = ?, settled_at = NOW()
        WHERE reference = ? AND status = ?
    `

	result, err := t.tx.ExecContext(ctx, query,
		models.TopupStatusFailed, failureCode, reference, models.TopupStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark topup failed: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAlreadySettled
	}

	log.Printf("Topup %s marked failed (code %s)", reference, failureCode)
	return nil
}

// CreditWallet adds to the balance and writes the ledger row in one step.
// The wallet row is locked so concurrent settlements serialize.
func (t *Transaction) CreditWallet(businessID int64, amount decimal.Decimal, kind models.WalletEntryKind, reference string) error {
	return t.applyWalletDelta(businessID, amount, kind, reference)
}

func (t *Transaction) DebitWallet(businessID int64, amount decimal.Decimal, kind models.WalletEntryKind, reference string) error {
	return t.applyWalletDelta(businessID, amount.Neg(), kind, reference)
}

var ErrInsufficientBalance = fmt.Errorf("insufficient wallet balance")

func (t *Transaction) applyWalletDelta(businessID int64, delta decimal.Decimal, kind models.WalletEntryKind, reference string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var walletID int64
	var balance decimal.Decimal
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, balance FROM wallets WHERE business_id = ? FOR UPDATE`,
		businessID).Scan(&walletID, &balance)
	if err != nil {
		return fmt.Errorf("failed to lock wallet for business %d: %v", businessID, err)
	}

	newBalance := balance.Add(delta)
	if newBalance.IsNegative() {
		return ErrInsufficientBalance
	}

	_, err = t.tx.ExecContext(ctx,
		`UPDATE wallets SET balance = ?, updated_at = NOW() WHERE id = ?`,
		newBalance, walletID)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance: %v", err)
	}

	_, err = t.tx.ExecContext(ctx, `
        INSERT INTO wallet_transactions (wallet_id, kind, amount, balance_after, reference, created_at)
        VALUES (?, ?, ?, ?, ?, NOW())
    `, walletID, kind, delta, newBalance, reference)
	if err != nil {
		return fmt.Errorf("failed to write wallet ledger row: %v", err)
	}

	return nil
}

func (t *Transaction) SaveCard(card *models.Card) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// First card on file becomes the default.
	var count int
	if err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards WHERE business_id = ?`,
		card.BusinessID).Scan(&count); err != nil {
		return fmt.Errorf("failed to count cards: %v", err)
	}
	card.IsDefault = count == 0

	query := `
        INSERT INTO cards (business_id, token, masked_pan, brand, expiry, is_default, created_at)
        VALUES (?, ?, ?, ?, ?, ?, NOW())
        ON DUPLICATE KEY UPDATE expiry = VALUES(expiry), brand = VALUES(brand)
    `

	_, err := t.tx.ExecContext(ctx, query,
		card.BusinessID, card.Token, card.MaskedPAN, card.Brand, card.Expiry, card.IsDefault)
	if err != nil {
		return fmt.Errorf("failed to save card: %v", err)
	}

	log.Printf("Saved card %s for business %d", card.MaskedPAN, card.BusinessID)
	return nil
}

func (t *Transaction) SaveSubscription(sub *models.Subscription) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `
        INSERT INTO subscriptions (
            id, business_id, plan_id, status, period_start, period_end,
            next_billing_at, grace_granted, failed_charges, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, NOW())
    `

	_, err := t.tx.ExecContext(ctx, query,
		sub.ID, sub.BusinessID, sub.PlanID, sub.Status,
		sub.PeriodStart, sub.PeriodEnd, sub.NextBillingAt, sub.GraceGranted)
	if err != nil {
		return fmt.Errorf("failed to save subscription: %v", err)
	}

	log.Printf("Saved subscription %s for business %d", sub.ID, sub.BusinessID)
	return nil
}

func (t *Transaction) SaveInvoice(inv *models.Invoice) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `
        INSERT INTO subscription_invoices (
            id, subscription_id, business_id, amount, status,
            period_start, period_end, paid_via, gateway_ref, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())
    `

	_, err := t.tx.ExecContext(ctx, query,
		inv.ID, inv.SubscriptionID, inv.BusinessID, inv.Amount, inv.Status,
		inv.PeriodStart, inv.PeriodEnd, inv.PaidVia, inv.GatewayRef)
	if err != nil {
		return fmt.Errorf("failed to save invoice: %v", err)
	}

	return nil
}

// MarkGraceUsed flips the once-per-business grace flag. Returns false when
// another subscription already consumed it.
func (t *Transaction) MarkGraceUsed(businessID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := t.tx.ExecContext(ctx,
		`UPDATE businesses SET grace_used = 1 WHERE id = ? AND grace_used = 0`,
		businessID)
	if err != nil {
		return false, fmt.Errorf("failed to mark grace used: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (t *Transaction) UpdateSubscriptionCycle(sub *models.Subscription) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `
        UPDATE subscriptions
        SET status = ?, period_start = ?, period_end = ?,
            next_billing_at = ?, failed_charges = ?, canceled_at = ?
        WHERE id = ?
    `

	_, err := t.tx.ExecContext(ctx, query,
		sub.Status, sub.PeriodStart, sub.PeriodEnd,
		sub.NextBillingAt, sub.FailedCharges, sub.CanceledAt, sub.ID)
	if err != nil {
		return fmt.Errorf("failed to update subscription cycle: %v", err)
	}

	return nil
}
