package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/settleup/internal/models"
)

// GetLedger loads a group's roster, expenses and settlements in one read
// transaction so balances never see a half-applied write.
func (s *SQLiteStore) GetLedger(ctx context.Context, groupID string) (*models.Ledger, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	group, err := getGroup(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := listExpenses(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := listSettlements(ctx, tx, groupID)
	if err != nil {
		return nil, err
	}

	return &models.Ledger{
		Group:       group,
		Expenses:    expenses,
		Settlements: settlements,
	}, nil
}

// ListActivity returns up to limit expenses and settlements of a group,
// newest first.
func (s *SQLiteStore) ListActivity(ctx context.Context, groupID string, limit int) ([]*models.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, description, amount, actor_id, counterparty_id, created_at FROM (
		   SELECT id, 'expense' AS kind, description, amount, payer_id AS actor_id,
		          '' AS counterparty_id, created_at
		   FROM expenses WHERE group_id = ?
		   UNION ALL
		   SELECT id, 'settle' AS kind, COALESCE(note, '') AS description, amount, payer_id AS actor_id,
		          receiver_id AS counterparty_id, created_at
		   FROM settlements WHERE group_id = ?
		 )
		 ORDER BY created_at DESC, id
		 LIMIT ?`,
		groupID, groupID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var activity []*models.Activity
	for rows.Next() {
		a := &models.Activity{GroupID: groupID}
		var kind string
		if err := rows.Scan(&a.ID, &kind, &a.Description, &a.Amount, &a.ActorID, &a.CounterpartyID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Kind = models.ActivityKind(kind)
		activity = append(activity, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity: %w", err)
	}
	return activity, nil
}
