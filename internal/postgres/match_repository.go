package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zaidrahmann/sportz-websockets/internal/domain"
)

const matchColumns = "id, sport, home_team, away_team, status, start_time, end_time, home_score, away_score, created_at"

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

func (r *MatchRepo) Insert(ctx context.Context, m domain.NewMatch) (*domain.Match, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO matches (sport, home_team, away_team, status, start_time, end_time, home_score, away_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+matchColumns,
		m.Sport, m.HomeTeam, m.AwayTeam, m.Status, m.StartTime, nullableTime(m.EndTime), m.HomeScore, m.AwayScore,
	)
	return scanMatch(row)
}

func (r *MatchRepo) List(ctx context.Context, limit int) ([]domain.Match, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *MatchRepo) GetByID(ctx context.Context, id int32) (*domain.Match, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	return scanMatch(row)
}

func (r *MatchRepo) Update(ctx context.Context, id int32, upd domain.MatchUpdate) (*domain.Match, error) {
	if upd.IsEmpty() {
		return nil, domain.ErrEmptyUpdate
	}

	var (
		assignments []string
		args        []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Sport != nil {
		set("sport", *upd.Sport)
	}
	if upd.HomeTeam != nil {
		set("home_team", *upd.HomeTeam)
	}
	if upd.AwayTeam != nil {
		set("away_team", *upd.AwayTeam)
	}
	if upd.StartTime != nil {
		set("start_time", *upd.StartTime)
	}
	if upd.EndTime != nil {
		set("end_time", *upd.EndTime)
	}
	if upd.Status != nil {
		set("status", *upd.Status)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE matches SET %s WHERE id = $%d RETURNING %s",
		strings.Join(assignments, ", "), len(args), matchColumns)

	return scanMatch(r.pool.QueryRow(ctx, query, args...))
}

func (r *MatchRepo) UpdateScore(ctx context.Context, id int32, homeScore, awayScore int32) (*domain.Match, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE matches SET home_score = $1, away_score = $2
		WHERE id = $3
		RETURNING `+matchColumns,
		homeScore, awayScore, id)
	return scanMatch(row)
}

func (r *MatchRepo) UpdateStatus(ctx context.Context, id int32, status domain.Status) (*domain.Match, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE matches SET status = $1
		WHERE id = $2
		RETURNING `+matchColumns,
		status, id)
	return scanMatch(row)
}

func (r *MatchRepo) ListActive(ctx context.Context) ([]domain.Match, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE status IN ('scheduled', 'live')`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMatches(rows)
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var (
		m   domain.Match
		end *time.Time
	)
	err := row.Scan(&m.ID, &m.Sport, &m.HomeTeam, &m.AwayTeam, &m.Status,
		&m.StartTime, &end, &m.HomeScore, &m.AwayScore, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	if end != nil {
		m.EndTime = *end
	}
	return &m, nil
}

func collectMatches(rows pgx.Rows) ([]domain.Match, error) {
	var matches []domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
