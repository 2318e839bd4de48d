package rank

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/qrsurvey/qrs-api/internal/domain/status"
	"github.com/qrsurvey/qrs-api/internal/pkg/database"
)

// SQLStore keeps ranks in a table with (id, <parent column>, rank, status).
type SQLStore struct {
	db           *sqlx.DB
	table        string
	parentColumn string
}

// NewSQLStore binds a table. table and parentColumn are fixed identifiers
// supplied by the caller, never request input.
func NewSQLStore(db *sqlx.DB, table, parentColumn string) *SQLStore {
	return &SQLStore{db: db, table: table, parentColumn: parentColumn}
}

func (s *SQLStore) ListSiblings(ctx context.Context, parentID uuid.UUID) ([]Item, error) {
	query := fmt.Sprintf(`
		SELECT id, rank FROM %s
		WHERE %s = $1 AND %s
		ORDER BY rank ASC
	`, s.table, s.parentColumn, status.NotDeletedClause)

	var items []Item
	if err := s.db.SelectContext(ctx, &items, query, parentID); err != nil {
		return nil, err
	}
	return items, nil
}

// NextRank returns max(rank)+1 over every row under parentID, deleted included.
func (s *SQLStore) NextRank(ctx context.Context, parentID uuid.UUID) (int, error) {
	query := fmt.Sprintf(`SELECT rank FROM %s WHERE %s = $1`, s.table, s.parentColumn)

	var ranks []int
	if err := s.db.SelectContext(ctx, &ranks, query, parentID); err != nil {
		return 0, err
	}
	return NextRank(ranks), nil
}

// SwapRanks writes both ranks in one statement. The rank unique constraint
// is deferrable, so it is checked once both rows hold their new values.
func (s *SQLStore) SwapRanks(ctx context.Context, parentID uuid.UUID, swap Swap) error {
	query := fmt.Sprintf(`
		UPDATE %[1]s AS t
		SET rank = v.new_rank, updated_at = NOW()
		FROM (VALUES ($1::uuid, $2::int, $3::int), ($4::uuid, $5::int, $6::int)) AS v(id, old_rank, new_rank)
		WHERE t.id = v.id AND t.%[2]s = $7 AND t.rank = v.old_rank AND t.%[3]s
	`, s.table, s.parentColumn, status.NotDeletedClause)

	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, query,
			swap.Target.ID, swap.Target.Rank, swap.Neighbor.Rank,
			swap.Neighbor.ID, swap.Neighbor.Rank, swap.Target.Rank,
			parentID,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n != 2 {
			return ErrRankConflict
		}
		return nil
	})
	if database.IsUniqueViolation(err, "") {
		return ErrRankConflict
	}
	return err
}
