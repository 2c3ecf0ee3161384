// Package snowflake wraps the warehouse operations the load step needs:
// existence checks, the backup rename dance, table creation and the staged
// PUT + COPY bulk load.
package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/snowflakedb/gosnowflake"

	"snowlift/pkg/errors"
)

// Config holds Snowflake connection configuration.
type Config struct {
	Account   string
	Username  string
	Password  string
	Database  string
	Schema    string
	Warehouse string
	Role      string
	Timeout   time.Duration
}

// Service provides Snowflake database operations. One Service holds one
// connection; callers open a fresh Service per logical operation and close
// it when done.
type Service struct {
	db        *sql.DB
	config    Config
	connected bool
}

// NewService creates a new Snowflake service.
func NewService(config Config) *Service {
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Minute
	}
	return &Service{config: config}
}

// NewServiceWithDB wraps an existing handle. Used by tests.
func NewServiceWithDB(db *sql.DB) *Service {
	return &Service{db: db, connected: true, config: Config{Timeout: 5 * time.Minute}}
}

// Connect establishes a connection to Snowflake.
func (s *Service) Connect() error {
	if s.connected {
		return nil
	}

	dsn := fmt.Sprintf("%s:%s@%s/%s/%s?warehouse=%s&role=%s",
		s.config.Username,
		s.config.Password,
		s.config.Account,
		s.config.Database,
		s.config.Schema,
		s.config.Warehouse,
		s.config.Role,
	)

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return errors.ConnectionError("Failed to open Snowflake connection", err).
			WithContext("account", s.config.Account).
			WithContext("warehouse", s.config.Warehouse)
	}

	ctx, cancel := s.getContext()
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()

		if strings.Contains(err.Error(), "authentication") {
			return errors.New(errors.ErrCodeAuthenticationFailed, "Authentication failed").
				WithContext("user", s.config.Username).
				WithSuggestions(
					"Verify your username and password",
					"Check if your account is locked",
				)
		}

		return errors.ConnectionError("Failed to connect to Snowflake", err).
			WithContext("account", s.config.Account)
	}

	s.db = db
	s.connected = true
	return nil
}

// Close closes the database connection.
func (s *Service) Close() error {
	if !s.connected {
		return nil
	}
	s.connected = false
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

func (s *Service) getContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.config.Timeout)
}

// bound caps one statement at the configured timeout so a hung warehouse
// call surfaces as a failure instead of stalling the load.
func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.config.Timeout)
}

// quoteIdent escapes an identifier for Snowflake.
func quoteIdent(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

func (s *Service) qualified(table string) string {
	return quoteIdent(s.config.Schema) + "." + quoteIdent(table)
}

// TableExists checks for a table in the configured schema.
func (s *Service) TableExists(ctx context.Context, table string) (bool, error) {
	if !s.connected {
		return false, errors.New(errors.ErrCodeConnectionFailed, "Not connected to database").
			WithSuggestions("Call Connect() before executing SQL")
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	query := fmt.Sprintf("SHOW TABLES LIKE '%s' IN SCHEMA %s",
		strings.ReplaceAll(table, "'", "''"), quoteIdent(s.config.Schema))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return false, errors.SQLError(
			fmt.Sprintf("Failed to check existence of %s", table), query, err)
	}
	defer rows.Close()

	exists := rows.Next()
	return exists, rows.Err()
}

// DropTableIfExists drops a table, ignoring the missing-table case.
func (s *Service) DropTableIfExists(ctx context.Context, table string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", s.qualified(table))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.SQLError(fmt.Sprintf("Failed to drop %s", table), query, err)
	}
	return nil
}

// RenameTable renames a table inside the configured schema.
func (s *Service) RenameTable(ctx context.Context, from, to string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	query := fmt.Sprintf("ALTER TABLE %s RENAME TO %s", s.qualified(from), quoteIdent(to))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.Wrap(err, errors.ErrCodeRenameBackup,
			fmt.Sprintf("Failed to rename %s to %s", from, to)).
			WithContext("query", query)
	}
	return nil
}

// CreateTable creates a table from column definitions in declaration order.
func (s *Service) CreateTable(ctx context.Context, table string, columns []ColumnDef) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("%s %s", quoteIdent(col.Name), col.Type)
	}

	query := fmt.Sprintf("CREATE TABLE %s (\n  %s\n)",
		s.qualified(table), strings.Join(parts, ",\n  "))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.Wrap(err, errors.ErrCodeCreateTable,
			fmt.Sprintf("Failed to create table %s", table)).
			WithContext("columns", len(columns))
	}
	return nil
}

// StageFile uploads a local file to the user stage.
func (s *Service) StageFile(ctx context.Context, localPath string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	stagePath := filepath.ToSlash(localPath)
	query := fmt.Sprintf("PUT file://%s @~/staged_data AUTO_COMPRESS=TRUE OVERWRITE=TRUE", stagePath)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.Wrap(err, errors.ErrCodeStagingFailed,
			fmt.Sprintf("Failed to stage %s", filepath.Base(localPath)))
	}
	return nil
}

// CopyInto loads a staged CSV into a table, matching columns by name
// case-insensitively and aborting on the first bad record.
func (s *Service) CopyInto(ctx context.Context, table, stagedFile string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	query := fmt.Sprintf(`COPY INTO %s
FROM @~/staged_data/%s
FILE_FORMAT = (TYPE = CSV PARSE_HEADER = TRUE FIELD_OPTIONALLY_ENCLOSED_BY = '"' ENCODING = 'UTF8')
MATCH_BY_COLUMN_NAME = CASE_INSENSITIVE
ON_ERROR = ABORT_STATEMENT`, s.qualified(table), stagedFile)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.Wrap(err, errors.ErrCodeCopyFailed,
			fmt.Sprintf("COPY INTO %s failed", table))
	}
	return nil
}

// RemoveStaged deletes a file from the user stage after a load.
func (s *Service) RemoveStaged(ctx context.Context, stagedFile string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	query := fmt.Sprintf("REMOVE @~/staged_data/%s", stagedFile)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.SQLError("Failed to clean staged file", query, err)
	}
	return nil
}
