package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"
)

// PutSlot writes payload into the slot, replacing whatever was there.
// The upsert is a single statement, so a failed write leaves the old payload intact.
func PutSlot(ctx context.Context, db *sql.DB, key, payload string) error {
	query := `
		INSERT INTO handoff_slots (slot_key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(slot_key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`
	_, err := db.ExecContext(ctx, query, key, payload, time.Now().UnixMilli())
	return err
}

// GetSlot returns the raw payload stored in the slot.
// The second return value is false when the slot is empty.
func GetSlot(ctx context.Context, db *sql.DB, key string) (string, bool, error) {
	var payload string
	err := db.QueryRowContext(ctx, `SELECT payload FROM handoff_slots WHERE slot_key = ?`, key).Scan(&payload)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return payload, true, nil
}

// DeleteSlot empties the slot. Deleting an empty slot is not an error.
// Returns whether a payload was removed.
func DeleteSlot(ctx context.Context, db *sql.DB, key string) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM handoff_slots WHERE slot_key = ?`, key)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

