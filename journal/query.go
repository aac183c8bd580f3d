package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetOrder returns a single order record by ID.
func (j *SQLite) GetOrder(id string) (OrderRecord, error) {
	var rec OrderRecord

	row := j.db.QueryRow(`
		SELECT id, pair, action, side, volume, price, stop_loss, target, order_no, time
		FROM orders
		WHERE id = ?`, id)

	err := row.Scan(
		&rec.ID,
		&rec.Pair,
		&rec.Action,
		&rec.Side,
		&rec.Volume,
		&rec.Price,
		&rec.StopLoss,
		&rec.Target,
		&rec.Order,
		&rec.Time,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return OrderRecord{}, fmt.Errorf("order %q not found", id)
		}
		return OrderRecord{}, err
	}
	return rec, nil
}

// ListOrdersBetween returns orders recorded within [start, end), oldest first.
func (j *SQLite) ListOrdersBetween(start, end time.Time) ([]OrderRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, pair, action, side, volume, price, stop_loss, target, order_no, time
		FROM orders
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderRecord
	for rows.Next() {
		var rec OrderRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Pair,
			&rec.Action,
			&rec.Side,
			&rec.Volume,
			&rec.Price,
			&rec.StopLoss,
			&rec.Target,
			&rec.Order,
			&rec.Time,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityBetween returns account snapshots within [start, end), oldest first.
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, balance, equity, margin, margin_free, margin_level
		FROM equity
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var rec EquitySnapshot
		if err := rows.Scan(
			&rec.Time,
			&rec.Balance,
			&rec.Equity,
			&rec.Margin,
			&rec.MarginFree,
			&rec.MarginLevel,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
