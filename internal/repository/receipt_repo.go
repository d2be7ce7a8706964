// repository/receipt_repo.go
package repository

import (
	"context"

	"walletflow-service/internal/usecase/receipt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReceiptRepo is the durable archive of settled receipts. It backs the
// transaction history surface a user checks when a submission's outcome is
// unconfirmed. Saves are keyed on transaction id, so re-archiving the same
// record is a no-op.
type ReceiptRepo struct {
	db *pgxpool.Pool
}

func NewReceiptRepo(db *pgxpool.Pool) *ReceiptRepo {
	return &ReceiptRepo{db: db}
}

func (r *ReceiptRepo) Save(ctx context.Context, userID string, rc *receipt.Receipt) error {
	query := `
        INSERT INTO receipts
        (transaction_id, user_id, header, gross_amount, fee, net_amount, currency, status_label, occurred_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (transaction_id) DO NOTHING
    `
	_, err := r.db.Exec(ctx, query,
		rc.TransactionID, userID, rc.Header, rc.GrossAmount, rc.Fee,
		rc.NetAmount, rc.Currency, rc.StatusLabel, rc.Timestamp,
	)
	return err
}

func (r *ReceiptRepo) GetByTransactionID(ctx context.Context, userID, transactionID string) (*receipt.Receipt, error) {
	query := `
        SELECT transaction_id, header, gross_amount, fee, net_amount, currency, status_label, occurred_at
        FROM receipts
        WHERE user_id = $1 AND transaction_id = $2
    `
	var rc receipt.Receipt
	err := r.db.QueryRow(ctx, query, userID, transactionID).Scan(
		&rc.TransactionID, &rc.Header, &rc.GrossAmount, &rc.Fee,
		&rc.NetAmount, &rc.Currency, &rc.StatusLabel, &rc.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *ReceiptRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]receipt.Receipt, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM receipts WHERE user_id = $1`
	if err := r.db.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
        SELECT transaction_id, header, gross_amount, fee, net_amount, currency, status_label, occurred_at
        FROM receipts
        WHERE user_id = $1
        ORDER BY occurred_at DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var receipts []receipt.Receipt
	for rows.Next() {
		var rc receipt.Receipt
		if err := rows.Scan(
			&rc.TransactionID, &rc.Header, &rc.GrossAmount, &rc.Fee,
			&rc.NetAmount, &rc.Currency, &rc.StatusLabel, &rc.Timestamp,
		); err != nil {
			return nil, 0, err
		}
		receipts = append(receipts, rc)
	}
	return receipts, total, rows.Err()
}
