package db

import (
	"database/sql"
	"errors"
	"time"

	"african-culture-quiz/models"
	"african-culture-quiz/utils"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// CreateTransaction records a freshly created checkout as pending.
func (db *DB) CreateTransaction(tx models.Transaction) error {
	utils.LogDB("Creating transaction %s (amount %d)", tx.ID, tx.Amount)

	_, err := db.Exec(
		`INSERT INTO payments (id, amount, status, reference, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Amount, tx.Status, tx.Reference, tx.CreatedAt, tx.UpdatedAt,
	)
	return err
}

// GetTransaction looks up one transaction by ID.
func (db *DB) GetTransaction(id string) (models.Transaction, error) {
	var tx models.Transaction
	var reference sql.NullString

	err := db.QueryRow(
		`SELECT id, amount, status, reference, created_at, updated_at FROM payments WHERE id = ?`,
		id,
	).Scan(&tx.ID, &tx.Amount, &tx.Status, &reference, &tx.CreatedAt, &tx.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, ErrTransactionNotFound
	}
	if err != nil {
		utils.LogError("GetTransaction %s failed: %v", id, err)
		return models.Transaction{}, err
	}

	if reference.Valid {
		tx.Reference = reference.String
	}
	return tx, nil
}

// UpdateTransactionStatus applies a webhook event's outcome.
func (db *DB) UpdateTransactionStatus(id, status, reference string) error {
	utils.LogDB("Updating transaction %s -> %s", id, status)

	result, err := db.Exec(
		`UPDATE payments SET status = ?, reference = ?, updated_at = ? WHERE id = ?`,
		status, reference, time.Now(), id,
	)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrTransactionNotFound
	}
	return nil
}
