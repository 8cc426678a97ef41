package pg

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	_ "github.com/lib/pq"

	"github.com/parley-chat/parley/backend/internal/service"
	"github.com/parley-chat/parley/backend/internal/storage/codec"
	"github.com/parley-chat/parley/shared/config"
	"github.com/parley-chat/parley/shared/domain"
	"github.com/parley-chat/parley/shared/logger"
)

//go:embed migrations/init.sql
var initSQL string

// The table holds a single row; id is fixed.
const snapshotRow = 1

type Storage struct {
	db    *sql.DB
	codec *codec.Codec
}

var _ service.SnapshotStore = (*Storage)(nil)

func New(ctx context.Context, cfg *config.Config, c *codec.Codec) (*Storage, error) {
	log := logger.Component("storage.pg")
	log.Info("connecting to db", "host", cfg.Private.Pg.Host, "dbname", cfg.Private.Pg.Dbname)
	db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, initSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	log.Info("successfully connected to db")
	return &Storage{db: db, codec: c}, nil
}

func Connect(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Private.Pg.Host, cfg.Private.Pg.Port, cfg.Private.Pg.User, cfg.Private.Pg.Password, cfg.Private.Pg.Dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (s *Storage) Load(ctx context.Context) (*domain.Snapshot, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM snapshots WHERE id = $1`, snapshotRow).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return s.codec.Decode(data)
}

func (s *Storage) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	data, err := s.codec.Encode(snapshot)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, data, size_bytes, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET data = EXCLUDED.data, size_bytes = EXCLUDED.size_bytes, updated_at = EXCLUDED.updated_at`,
		snapshotRow, data, len(data))
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	logger.Log.Debug("snapshot saved", "component", "storage.pg", "size", humanize.Bytes(uint64(len(data))))
	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
