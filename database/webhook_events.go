package database

import (
	"context"
	"fmt"
	"time"
)

// RecordWebhookEvent inserts the event ID and reports whether it was seen
// before. Gateways redeliver; the first insert wins and every later delivery
// is acknowledged without reprocessing.
func (c *Connection) RecordWebhookEvent(eventID, gateway, eventType string, payload []byte) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := c.db.ExecContext(ctx, `
        INSERT IGNORE INTO webhook_events (event_id, gateway, event_type, payload, received_at)
        VALUES (?, ?, ?, ?, NOW())
    `, eventID, gateway, eventType, payload)
	if err != nil {
		return false, fmt.Errorf("failed to record webhook event: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}
