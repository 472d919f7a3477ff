package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	admsg "github.com/beautyflow/admsg-sdk-go"
)

// MySQLResultArchive keeps a durable history of generation results in
// MySQL, so campaign teams can audit and re-run past message batches.
//
// It uses one table (auto-created if AutoMigrate is true):
//   - {prefix}_results: (request_id, brand, persona_id, campaign_goal, payload)
type MySQLResultArchive struct {
	db     *sql.DB
	prefix string
}

// MySQLArchiveConfig configures the result archive.
type MySQLArchiveConfig struct {
	Prefix      string // table prefix, default "admsg"
	AutoMigrate bool   // create table if not exist, default true
}

// NewMySQLResultArchive creates a result archive backed by MySQL.
// The sql.DB must be already opened with a MySQL driver.
func NewMySQLResultArchive(db *sql.DB, config ...MySQLArchiveConfig) (*MySQLResultArchive, error) {
	cfg := MySQLArchiveConfig{Prefix: "admsg", AutoMigrate: true}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "admsg"
	}

	s := &MySQLResultArchive{db: db, prefix: cfg.Prefix}
	if cfg.AutoMigrate {
		if err := s.migrate(); err != nil {
			return nil, fmt.Errorf("auto-migrate failed: %w", err)
		}
	}
	return s, nil
}

func (s *MySQLResultArchive) table() string { return s.prefix + "_results" }

func (s *MySQLResultArchive) migrate() error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		request_id    VARCHAR(64)  NOT NULL,
		brand         VARCHAR(255) NOT NULL,
		persona_id    VARCHAR(255) NOT NULL,
		campaign_goal VARCHAR(255) NOT NULL,
		payload       LONGTEXT     NOT NULL,
		created_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (request_id),
		KEY idx_brand (brand, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, s.table())

	_, err := s.db.Exec(ddl)
	return err
}

// Save archives a generation result, keyed by its request id. Saving the
// same request id again overwrites the previous payload.
func (s *MySQLResultArchive) Save(ctx context.Context, result *admsg.GenerationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(
		`INSERT INTO %s (request_id, brand, persona_id, campaign_goal, payload)
		 VALUES (?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE payload=VALUES(payload)`, s.table())
	_, err = s.db.ExecContext(ctx, q,
		result.Metadata.RequestID, result.Brand, result.PersonaID, result.CampaignGoal, string(payload))
	return err
}

// Get returns the archived result for a request id.
func (s *MySQLResultArchive) Get(ctx context.Context, requestID string) (*admsg.GenerationResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT payload FROM %s WHERE request_id=?", s.table()),
		requestID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no archived result for request %q", requestID)
	}
	if err != nil {
		return nil, err
	}
	var result admsg.GenerationResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("corrupt archive payload for %q: %w", requestID, err)
	}
	return &result, nil
}

// ListByBrand returns the most recent archived results for a brand,
// newest first. limit <= 0 means no limit.
func (s *MySQLResultArchive) ListByBrand(ctx context.Context, brand string, limit int) ([]*admsg.GenerationResult, error) {
	q := fmt.Sprintf("SELECT payload FROM %s WHERE brand=? ORDER BY created_at DESC", s.table())
	var args []interface{}
	args = append(args, brand)
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*admsg.GenerationResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var result admsg.GenerationResult
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			return nil, err
		}
		results = append(results, &result)
	}
	return results, rows.Err()
}

// DeleteBrand removes all archived results for a brand.
func (s *MySQLResultArchive) DeleteBrand(ctx context.Context, brand string) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE brand=?", s.table()), brand)
	return err
}
