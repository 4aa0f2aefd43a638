package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zaidrahmann/sportz-websockets/internal/domain"
)

const commentaryColumns = "id, match_id, minute, sequence, period, event_type, actor, team, message, metadata, tags, created_at"

type CommentaryRepo struct {
	pool *pgxpool.Pool
}

func NewCommentaryRepo(pool *pgxpool.Pool) *CommentaryRepo {
	return &CommentaryRepo{pool: pool}
}

func (r *CommentaryRepo) Insert(ctx context.Context, entry domain.NewCommentary) (*domain.Commentary, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO commentary (match_id, minute, sequence, period, event_type, actor, team, message, metadata, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+commentaryColumns,
		entry.MatchID, entry.Minute, entry.Sequence, entry.Period, entry.EventType,
		entry.Actor, entry.Team, entry.Message, entry.Metadata, entry.Tags,
	)
	return scanCommentary(row)
}

func (r *CommentaryRepo) ListByMatch(ctx context.Context, matchID int32, limit int) ([]domain.Commentary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+commentaryColumns+`
		FROM commentary
		WHERE match_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, matchID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Commentary
	for rows.Next() {
		entry, err := scanCommentary(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func (r *CommentaryRepo) Delete(ctx context.Context, matchID, id int32) (*domain.Commentary, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM commentary
		WHERE id = $1 AND match_id = $2
		RETURNING `+commentaryColumns,
		id, matchID)

	entry, err := scanCommentary(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCommentaryNotFound
	}
	return entry, err
}

func scanCommentary(row pgx.Row) (*domain.Commentary, error) {
	var entry domain.Commentary
	err := row.Scan(&entry.ID, &entry.MatchID, &entry.Minute, &entry.Sequence, &entry.Period,
		&entry.EventType, &entry.Actor, &entry.Team, &entry.Message, &entry.Metadata,
		&entry.Tags, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
