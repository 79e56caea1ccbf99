package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linkveil/linkveil/internal/model"
)

// PostgresStore implements LinkStore and ClickStore on PostgreSQL.
// It is the production backend for deployments with concurrent writers;
// appends are plain INSERTs, so no events can be lost to read-modify-write
// races. Schema lives in migrations/.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

const linkColumns = `
	id, alias, destination, campaign_id, owner_id, status,
	tracking_params, tags, cloak_enabled, cloak_config,
	custom_domain, created_at, updated_at
`

// GetLink resolves a link by id or custom alias.
func (s *PostgresStore) GetLink(ctx context.Context, id string) (*model.Link, error) {
	query := `SELECT ` + linkColumns + `
		FROM links
		WHERE id = $1 OR alias = $1
		LIMIT 1`

	link, err := scanLink(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("query link: %w", err)
	}
	return link, nil
}

// LoadLinks reads the complete link collection.
func (s *PostgresStore) LoadLinks(ctx context.Context) ([]*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	var links []*model.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

// SaveLinks upserts the complete link collection in one transaction.
// The whole-file rewrite of the flat-file store maps to per-row upserts here.
func (s *PostgresStore) SaveLinks(ctx context.Context, links []*model.Link) error {
	query := `
		INSERT INTO links (` + linkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			alias = EXCLUDED.alias,
			destination = EXCLUDED.destination,
			campaign_id = EXCLUDED.campaign_id,
			owner_id = EXCLUDED.owner_id,
			status = EXCLUDED.status,
			tracking_params = EXCLUDED.tracking_params,
			tags = EXCLUDED.tags,
			cloak_enabled = EXCLUDED.cloak_enabled,
			cloak_config = EXCLUDED.cloak_config,
			custom_domain = EXCLUDED.custom_domain,
			updated_at = EXCLUDED.updated_at
	`

	batch := &pgx.Batch{}
	for _, l := range links {
		params, _ := json.Marshal(l.TrackingParams)
		tags, _ := json.Marshal(l.Tags)
		cloak, _ := json.Marshal(l.Cloak)

		batch.Queue(query,
			l.ID, l.Alias, l.Destination, l.CampaignID, l.OwnerID,
			string(l.Status), params, tags, l.CloakEnabled, cloak,
			l.CustomDomain, l.CreatedAt, l.UpdatedAt,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(links); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert link %d: %w", i, err)
		}
	}
	return nil
}

// AppendClick inserts one click event.
func (s *PostgresStore) AppendClick(ctx context.Context, click *model.ClickEvent) error {
	query := `
		INSERT INTO clicks (
			id, link_id, clicked_at, user_agent, referer,
			accept_language, ip_address, country
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := s.pool.Exec(ctx, query,
		click.ID, click.LinkID, click.ClickedAt, click.UserAgent,
		click.Referer, click.AcceptLanguage, click.IPAddress, click.Country,
	)
	if err != nil {
		return fmt.Errorf("insert click: %w", err)
	}
	return nil
}

// LoadClicks reads the complete click log in arrival order.
func (s *PostgresStore) LoadClicks(ctx context.Context) ([]*model.ClickEvent, error) {
	query := `
		SELECT id, link_id, clicked_at, user_agent, referer,
			   accept_language, ip_address, country
		FROM clicks
		ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query clicks: %w", err)
	}
	defer rows.Close()

	var clicks []*model.ClickEvent
	for rows.Next() {
		var c model.ClickEvent
		err := rows.Scan(
			&c.ID, &c.LinkID, &c.ClickedAt, &c.UserAgent,
			&c.Referer, &c.AcceptLanguage, &c.IPAddress, &c.Country,
		)
		if err != nil {
			return nil, fmt.Errorf("scan click: %w", err)
		}
		clicks = append(clicks, &c)
	}
	return clicks, rows.Err()
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func scanLink(row pgx.Row) (*model.Link, error) {
	var l model.Link
	var params, tags, cloak []byte

	err := row.Scan(
		&l.ID, &l.Alias, &l.Destination, &l.CampaignID, &l.OwnerID,
		&l.Status, &params, &tags, &l.CloakEnabled, &cloak,
		&l.CustomDomain, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(params) > 0 {
		_ = json.Unmarshal(params, &l.TrackingParams)
	}
	if len(tags) > 0 {
		_ = json.Unmarshal(tags, &l.Tags)
	}
	if len(cloak) > 0 {
		_ = json.Unmarshal(cloak, &l.Cloak)
	}

	l.Normalize()
	return &l, nil
}
