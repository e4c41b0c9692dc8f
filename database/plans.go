package database

import (
	"fmt"

	"aurum-payment-api/models"
)

func (c *Connection) GetPlans() ([]models.Plan, error) {
	query := `
        SELECT id, code, name, mode, fee, interval_days, grace_days, features
        FROM plans
        WHERE deleted_at IS NULL
        ORDER BY fee ASC
    `

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %v", err)
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		var p models.Plan
		err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Mode, &p.Fee,
			&p.IntervalDays, &p.GraceDays, &p.Features)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}

	return plans, rows.Err()
}

func (c *Connection) GetPlanByCode(code string) (*models.Plan, error) {
	query := `
        SELECT id, code, name, mode, fee, interval_days, grace_days, features
        FROM plans
        WHERE code = ? AND deleted_at IS NULL
    `

	var p models.Plan
	err := c.db.QueryRow(query, code).Scan(
		&p.ID, &p.Code, &p.Name, &p.Mode, &p.Fee,
		&p.IntervalDays, &p.GraceDays, &p.Features)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Connection) GetPlanByID(id int64) (*models.Plan, error) {
	query := `
        SELECT id, code, name, mode, fee, interval_days, grace_days, features
        FROM plans
        WHERE id = ? AND deleted_at IS NULL
    `

	var p models.Plan
	err := c.db.QueryRow(query, id).Scan(
		&p.ID, &p.Code, &p.Name, &p.Mode, &p.Fee,
		&p.IntervalDays, &p.GraceDays, &p.Features)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
