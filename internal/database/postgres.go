package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wotmaps-api/internal/models"
	"wotmaps-api/internal/retry"

	"go.uber.org/zap"
	"gocloud.dev/postgres"
	_ "gocloud.dev/postgres/awspostgres"
	_ "gocloud.dev/postgres/gcppostgres"
)

const (
	maxOpenConns = 20

	// connectTimeout bounds a single connection attempt.
	connectTimeout = 5 * time.Second
)

// Repository defines the interface for database operations
type Repository interface {
	Close() error
	Ping(ctx context.Context) error

	// Played maps
	InsertPlayedMap(ctx context.Context, player string, payload models.PlayedMapPayload) (bool, error)
	CurrentMaps(ctx context.Context, query models.CurrentMapsQuery, since time.Time) ([]models.CurrentMap, error)
	CurrentServers(ctx context.Context, since time.Time) ([]models.CurrentServer, error)
}

// PostgresRepository handles database operations
type PostgresRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRepository connects to databaseURL, retrying up to attempts times with
// interval between attempts. Any URL scheme registered with gocloud.dev
// postgres is accepted.
func NewRepository(ctx context.Context, databaseURL string, logger *zap.Logger, attempts int, interval time.Duration) (*PostgresRepository, error) {
	db, err := retry.Do(ctx, logger, attempts, interval, func(ctx context.Context) (*sql.DB, error) {
		logger.Info("Connecting to database")
		return open(ctx, databaseURL)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)

	return New(db, logger), nil
}

func open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := postgres.Open(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// New wraps an open database handle.
func New(db *sql.DB, logger *zap.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		logger: logger,
	}
}

// DB returns the underlying handle.
func (r *PostgresRepository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks that the database is reachable.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// InsertPlayedMap stores a report for player. It returns false without error
// when the server, map or mode is not in the catalog.
func (r *PostgresRepository) InsertPlayedMap(ctx context.Context, player string, payload models.PlayedMapPayload) (bool, error) {
	query := `
		INSERT INTO played_maps (player, server_id, map_id, mode_id, bottom_tier, top_tier)
		SELECT $1, s.id, m.id, mo.id, $5, $6
		FROM servers s, maps m, modes mo
		WHERE s.name = $2 AND m.name = $3 AND mo.name = $4
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		player,
		payload.Server,
		payload.Map,
		payload.Mode,
		payload.BottomTier,
		payload.TopTier,
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		r.logger.Error("Failed to insert played map",
			zap.String("server", payload.Server),
			zap.String("map", payload.Map),
			zap.String("mode", payload.Mode),
			zap.Error(err))
		return false, err
	}

	return true, nil
}

// CurrentMaps counts the reports on a server since the given time whose tier
// range overlaps the query range, grouped by map and mode.
func (r *PostgresRepository) CurrentMaps(ctx context.Context, q models.CurrentMapsQuery, since time.Time) ([]models.CurrentMap, error) {
	query := `
		SELECT m.name AS map, mo.name AS mode, COUNT(*) AS count
		FROM played_maps p
		JOIN servers s ON s.id = p.server_id
		JOIN maps m ON m.id = p.map_id
		JOIN modes mo ON mo.id = p.mode_id
		WHERE s.name = $1
		  AND p.bottom_tier <= $3
		  AND p.top_tier >= $2
		  AND p.created_at >= $4
		GROUP BY m.name, mo.name
		ORDER BY mo.name, m.name
	`

	rows, err := r.db.QueryContext(ctx, query, q.Server, q.MinTier, q.MaxTier, since)
	if err != nil {
		r.logger.Error("Failed to get current maps", zap.String("server", q.Server), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var maps []models.CurrentMap
	for rows.Next() {
		var row models.CurrentMap
		if err := rows.Scan(&row.Map, &row.Mode, &row.Count); err != nil {
			r.logger.Error("Failed to scan current map", zap.Error(err))
			return nil, err
		}
		maps = append(maps, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return maps, nil
}

// CurrentServers counts the reports per server since the given time.
func (r *PostgresRepository) CurrentServers(ctx context.Context, since time.Time) ([]models.CurrentServer, error) {
	query := `
		SELECT s.name, s.region, COUNT(*) AS count
		FROM played_maps p
		JOIN servers s ON s.id = p.server_id
		WHERE p.created_at >= $1
		GROUP BY s.name, s.region
		ORDER BY s.region, s.name
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		r.logger.Error("Failed to get current servers", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var servers []models.CurrentServer
	for rows.Next() {
		var row models.CurrentServer
		if err := rows.Scan(&row.Name, &row.Region, &row.Count); err != nil {
			r.logger.Error("Failed to scan current server", zap.Error(err))
			return nil, err
		}
		servers = append(servers, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return servers, nil
}
