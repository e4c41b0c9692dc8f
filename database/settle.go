package database

import (
	"fmt"
	"log"

	"aurum-payment-api/models"
)

// SettleTopup applies a verified gateway outcome to a PENDING top-up in one
// SQL transaction: status flip, wallet credit and ledger row, and the card
// token when one came back. Returns ErrAlreadySettled for duplicate
// deliveries, which callers treat as success.
func (c *Connection) SettleTopup(topup *models.TopupTransaction, result *models.VerifyResult) error {
	tx, err := c.BeginTransaction()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	locked, err := tx.LockTopupForSettlement(topup.Reference)
	if err != nil {
		return err
	}

	if result.Success {
		if err := tx.MarkTopupSucceeded(locked.Reference, result.GatewayRef); err != nil {
			return err
		}

		if err := tx.CreditWallet(locked.BusinessID, locked.Amount, models.WalletEntryTopup, locked.Reference); err != nil {
			return fmt.Errorf("failed to credit wallet for topup %s: %v", locked.Reference, err)
		}

		if locked.SaveCard && result.CardToken != "" {
			card := &models.Card{
				BusinessID: locked.BusinessID,
				Token:      result.CardToken,
				MaskedPAN:  result.MaskedPAN,
				Expiry:     "", // the gateway does not expose expiry with the token
			}
			if err := tx.SaveCard(card); err != nil {
				// A failed card save must not lose the credit.
				log.Printf("Warning: failed to save card for topup %s: %v", locked.Reference, err)
			}
		}
	} else {
		if err := tx.MarkTopupFailed(locked.Reference, result.FailureCode); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settlement for topup %s: %v", topup.Reference, err)
	}

	log.Printf("Settled topup %s (success=%v)", topup.Reference, result.Success)
	return nil
}
