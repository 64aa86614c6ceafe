package postgres

import (
	"context"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/domain"
	"github.com/canteenhq/canteen/internal/canteen/store"
)

type transfersRepo struct {
	q querier
}

func (r *transfersRepo) CreateTransfer(ctx context.Context, t domain.Transfer) error {
	now := time.Now().UTC()
	_, err := r.q.Exec(ctx,
		`INSERT INTO transfers (id, sender_id, receiver_id, amount, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.SenderID, t.ReceiverID, t.Amount, string(t.State), now, now,
	)
	return mapUniqueViolation(err)
}

func (r *transfersRepo) MarkTransferCompleted(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE transfers SET state = $1, updated_at = $2 WHERE id = $3`,
		string(domain.TransferCompleted), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *transfersRepo) ListTransfersByState(ctx context.Context, state domain.TransferState) ([]domain.Transfer, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, sender_id, receiver_id, amount, state, created_at, updated_at
		FROM transfers WHERE state = $1 ORDER BY created_at ASC, id ASC`,
		string(state))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		var (
			t domain.Transfer
			s string
		)
		if err := rows.Scan(&t.ID, &t.SenderID, &t.ReceiverID, &t.Amount, &s, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.State = domain.TransferState(s)
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}
