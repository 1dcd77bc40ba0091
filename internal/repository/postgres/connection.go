package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"galeria/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Events  string
	Folders string
	Assets  string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Events:  fmt.Sprintf("%sevents", prefix),
		Folders: fmt.Sprintf("%sfolders", prefix),
		Assets:  fmt.Sprintf("%sassets", prefix),
	}
}

// CreateConnectionPool creates a pgx connection pool with automatic
// PgBouncer compatibility.
//
// Supabase's transaction pooler (port 6543) does not support prepared
// statements, so when that port is detected the pool switches from the
// default QueryExecModeCacheStatement to QueryExecModeCacheDescribe:
// still the extended protocol (needed for proper JSONB/array encoding),
// but caching statement descriptions instead of server-side prepared
// statements, which avoids "prepared statement already exists" errors.
// An explicit default_query_exec_mode in the connection string takes
// precedence over the auto-detection. Direct connections on 5432 keep
// the default mode.
//
// Dynamic table prefixes (dev_, test_, prod_) are interpolated into the
// SQL before it reaches the database, so each environment gets its own
// statement cache entries and the prefixes stay safe with either mode.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	// Configure pool size
	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the query executor for the context: the
// transaction when one is present, the pool otherwise. Repositories
// call this on every query so they automatically participate in
// transactions opened by the service layer.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
