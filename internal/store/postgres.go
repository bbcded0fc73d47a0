package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/grafheim/linklytics/internal/analytics"
	"github.com/grafheim/linklytics/internal/link"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLinkStore is a PostgreSQL implementation of link.Repository.
type PostgresLinkStore struct {
	pool *pgxpool.Pool
}

// NewPostgresLinkStore creates a new PostgreSQL-backed link store.
func NewPostgresLinkStore(pool *pgxpool.Pool) *PostgresLinkStore {
	return &PostgresLinkStore{pool: pool}
}

func (p *PostgresLinkStore) Save(ctx context.Context, l *link.Link) error {
	query := `
		INSERT INTO links (id, short_code, target_url, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := p.pool.Exec(ctx, query,
		l.ID,
		l.ShortCode,
		l.TargetURL,
		l.ExpiresAt,
		l.CreatedAt,
	)

	return err
}

// FindByIDOrCode matches the inbound code against id and short_code in a
// single query so resolution costs one round trip.
func (p *PostgresLinkStore) FindByIDOrCode(ctx context.Context, code string) (*link.Link, error) {
	query := `
		SELECT id, short_code, target_url, expires_at, created_at
		FROM links
		WHERE id = $1 OR short_code = $1
	`

	var l link.Link

	err := p.pool.QueryRow(ctx, query, code).Scan(
		&l.ID,
		&l.ShortCode,
		&l.TargetURL,
		&l.ExpiresAt,
		&l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, link.ErrNotFound
		}

		return nil, err
	}

	return &l, nil
}

// PostgresClickStore is a PostgreSQL implementation of analytics.Store.
// The clicks table is append-only; rows are never updated.
type PostgresClickStore struct {
	pool *pgxpool.Pool
}

// NewPostgresClickStore creates a new PostgreSQL-backed click store.
func NewPostgresClickStore(pool *pgxpool.Pool) *PostgresClickStore {
	return &PostgresClickStore{pool: pool}
}

func (p *PostgresClickStore) AppendClick(ctx context.Context, event *analytics.ClickEvent) error {
	query := `
		INSERT INTO clicks (
			link_id, occurred_at, client_ip, user_agent_raw,
			browser, os, device_type, referer, country, region, city
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := p.pool.Exec(ctx, query,
		event.LinkID,
		event.OccurredAt,
		event.ClientIP,
		event.UserAgentRaw,
		event.Browser,
		event.OS,
		string(event.DeviceType),
		event.Referer,
		event.Country,
		event.Region,
		event.City,
	)

	return err
}

func (p *PostgresClickStore) ListClicks(ctx context.Context, filter analytics.Filter) ([]analytics.ClickEvent, error) {
	query := `
		SELECT link_id, occurred_at, client_ip, user_agent_raw,
		       browser, os, device_type, referer, country, region, city
		FROM clicks
		WHERE ($1 = '' OR link_id = $1)
		  AND ($2::timestamptz IS NULL OR occurred_at >= $2)
		  AND ($3::timestamptz IS NULL OR occurred_at < $3)
		ORDER BY occurred_at, link_id
	`

	rows, err := p.pool.Query(ctx, query,
		filter.LinkID,
		nullableTime(filter.From),
		nullableTime(filter.To),
	)
	if err != nil {
		return nil, fmt.Errorf("query clicks: %w", err)
	}
	defer rows.Close()

	var events []analytics.ClickEvent

	for rows.Next() {
		var e analytics.ClickEvent

		if err := rows.Scan(
			&e.LinkID,
			&e.OccurredAt,
			&e.ClientIP,
			&e.UserAgentRaw,
			&e.Browser,
			&e.OS,
			&e.DeviceType,
			&e.Referer,
			&e.Country,
			&e.Region,
			&e.City,
		); err != nil {
			return nil, fmt.Errorf("scan click: %w", err)
		}

		events = append(events, e)
	}

	return events, rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}

// Compile-time checks.
var (
	_ link.Repository = (*PostgresLinkStore)(nil)
	_ analytics.Store = (*PostgresClickStore)(nil)
)
