package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/xaenox/chat-profiler/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type PostgresStorage struct {
	db     *sqlx.DB
	logger *zap.Logger
}

type conversationRow struct {
	SenderID string `db:"sender_id"`
	Events   []byte `db:"events"`
	Address  []byte `db:"address"`
}

type profileRow struct {
	ClientID          string         `db:"client_id"`
	Category          sql.NullString `db:"category"`
	Items             pq.StringArray `db:"item"`
	Brands            pq.StringArray `db:"brands"`
	Text              string         `db:"text"`
	LatestMessageDate time.Time      `db:"latest_message_date"`
	Address           []byte         `db:"address"`
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	// Connect also pings the server
	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := NewPostgresStorageFromDB(db, logger)

	if err := storage.initializeSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

// NewPostgresStorageFromDB wraps an open connection without running migrations.
func NewPostgresStorageFromDB(db *sqlx.DB, logger *zap.Logger) *PostgresStorage {
	return &PostgresStorage{db: db, logger: logger}
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

func (s *PostgresStorage) ListConversations(ctx context.Context) ([]*models.Conversation, error) {
	var rows []conversationRow
	query := `SELECT sender_id, events, address FROM conversations ORDER BY sender_id`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error querying conversations: %w", err)
	}

	convs := make([]*models.Conversation, 0, len(rows))
	for _, row := range rows {
		conv, err := row.decode()
		if err != nil {
			s.logger.Error("Skipping undecodable conversation",
				zap.Error(err),
				zap.String("sender_id", row.SenderID))
			continue
		}
		convs = append(convs, conv)
	}
	return convs, nil
}

func (s *PostgresStorage) GetConversation(ctx context.Context, senderID string) (*models.Conversation, error) {
	var row conversationRow
	query := `SELECT sender_id, events, address FROM conversations WHERE sender_id = $1`
	if err := s.db.GetContext(ctx, &row, query, senderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying conversation: %w", err)
	}
	return row.decode()
}

func (s *PostgresStorage) SaveConversation(ctx context.Context, conv *models.Conversation) error {
	events, err := json.Marshal(conv.Events)
	if err != nil {
		return fmt.Errorf("error encoding events: %w", err)
	}
	address, err := nullableJSON(conv.Address)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO conversations (sender_id, events, address)
		VALUES ($1, $2, $3)
		ON CONFLICT (sender_id) DO UPDATE
		SET events = EXCLUDED.events, address = EXCLUDED.address`

	if _, err := s.db.ExecContext(ctx, query, conv.SenderID, string(events), address); err != nil {
		return fmt.Errorf("error saving conversation: %w", err)
	}
	return nil
}

func (s *PostgresStorage) UpsertProfile(ctx context.Context, profile *models.ClientProfile) error {
	address, err := nullableJSON(profile.Address)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO clients (client_id, category, item, brands, text, latest_message_date, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (client_id) DO UPDATE
		SET category = EXCLUDED.category,
			item = EXCLUDED.item,
			brands = EXCLUDED.brands,
			text = EXCLUDED.text,
			latest_message_date = EXCLUDED.latest_message_date,
			address = EXCLUDED.address`

	_, err = s.db.ExecContext(ctx, query,
		profile.ClientID,
		profile.Category,
		pq.Array(nonNil(profile.Items)),
		pq.Array(nonNil(profile.Brands)),
		profile.Text,
		profile.LatestMessageDate,
		address,
	)
	if err != nil {
		return fmt.Errorf("error upserting profile: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetProfile(ctx context.Context, clientID string) (*models.ClientProfile, error) {
	var row profileRow
	query := `
		SELECT client_id, category, item, brands, text, latest_message_date, address
		FROM clients
		WHERE client_id = $1`

	if err := s.db.GetContext(ctx, &row, query, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying profile: %w", err)
	}

	profile := &models.ClientProfile{
		ClientID:          row.ClientID,
		Items:             nonNil(row.Items),
		Brands:            nonNil(row.Brands),
		Text:              row.Text,
		LatestMessageDate: row.LatestMessageDate.UTC(),
	}
	if row.Category.Valid {
		category := row.Category.String
		profile.Category = &category
	}
	if err := decodeJSON(row.Address, &profile.Address); err != nil {
		return nil, fmt.Errorf("error decoding address: %w", err)
	}
	return profile, nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func (r conversationRow) decode() (*models.Conversation, error) {
	conv := &models.Conversation{SenderID: r.SenderID}
	if err := decodeJSON(r.Events, &conv.Events); err != nil {
		return nil, fmt.Errorf("error decoding events: %w", err)
	}
	if err := decodeJSON(r.Address, &conv.Address); err != nil {
		return nil, fmt.Errorf("error decoding address: %w", err)
	}
	return conv, nil
}

// nullableJSON encodes v as JSON text, or returns nil for a nil value so
// the column is written as NULL.
func nullableJSON(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error encoding json column: %w", err)
	}
	return string(data), nil
}

func decodeJSON(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
