package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/xaenox/chat-profiler/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS conversations (
	sender_id TEXT PRIMARY KEY,
	events    TEXT NOT NULL,
	address   TEXT
);

CREATE TABLE IF NOT EXISTS clients (
	client_id           TEXT PRIMARY KEY,
	category            TEXT,
	item                TEXT NOT NULL,
	brands              TEXT NOT NULL,
	text                TEXT NOT NULL,
	latest_message_date TEXT NOT NULL,
	address             TEXT
);`

// SQLiteStorage keeps conversations and profiles in a single SQLite file.
// List columns and the address are stored as JSON text.
type SQLiteStorage struct {
	db     *sqlx.DB
	logger *zap.Logger
}

type sqliteProfileRow struct {
	ClientID          string         `db:"client_id"`
	Category          sql.NullString `db:"category"`
	Items             string         `db:"item"`
	Brands            string         `db:"brands"`
	Text              string         `db:"text"`
	LatestMessageDate string         `db:"latest_message_date"`
	Address           sql.NullString `db:"address"`
}

func NewSQLiteStorage(path string, logger *zap.Logger) (*SQLiteStorage, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteStorage{db: db, logger: logger}, nil
}

func (s *SQLiteStorage) ListConversations(ctx context.Context) ([]*models.Conversation, error) {
	var rows []conversationRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT sender_id, events, address FROM conversations ORDER BY sender_id`); err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
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

func (s *SQLiteStorage) GetConversation(ctx context.Context, senderID string) (*models.Conversation, error) {
	var row conversationRow
	err := s.db.GetContext(ctx, &row, `SELECT sender_id, events, address FROM conversations WHERE sender_id = ?`, senderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return row.decode()
}

func (s *SQLiteStorage) SaveConversation(ctx context.Context, conv *models.Conversation) error {
	events, err := json.Marshal(conv.Events)
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}
	address, err := nullableJSON(conv.Address)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO conversations (sender_id, events, address)
		VALUES (?, ?, ?)
		ON CONFLICT (sender_id) DO UPDATE
		SET events = excluded.events, address = excluded.address`

	if _, err := s.db.ExecContext(ctx, query, conv.SenderID, string(events), address); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpsertProfile(ctx context.Context, profile *models.ClientProfile) error {
	items, err := json.Marshal(nonNil(profile.Items))
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}
	brands, err := json.Marshal(nonNil(profile.Brands))
	if err != nil {
		return fmt.Errorf("failed to marshal brands: %w", err)
	}
	address, err := nullableJSON(profile.Address)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO clients (client_id, category, item, brands, text, latest_message_date, address)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (client_id) DO UPDATE
		SET category = excluded.category,
			item = excluded.item,
			brands = excluded.brands,
			text = excluded.text,
			latest_message_date = excluded.latest_message_date,
			address = excluded.address`

	_, err = s.db.ExecContext(ctx, query,
		profile.ClientID,
		profile.Category,
		string(items),
		string(brands),
		profile.Text,
		profile.LatestMessageDate.UTC().Format(time.RFC3339Nano),
		address,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetProfile(ctx context.Context, clientID string) (*models.ClientProfile, error) {
	var row sqliteProfileRow
	query := `
		SELECT client_id, category, item, brands, text, latest_message_date, address
		FROM clients
		WHERE client_id = ?`

	err := s.db.GetContext(ctx, &row, query, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	latest, err := time.Parse(time.RFC3339Nano, row.LatestMessageDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse latest_message_date: %w", err)
	}

	profile := &models.ClientProfile{
		ClientID:          row.ClientID,
		Text:              row.Text,
		LatestMessageDate: latest.UTC(),
	}
	if row.Category.Valid {
		category := row.Category.String
		profile.Category = &category
	}
	if err := json.Unmarshal([]byte(row.Items), &profile.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items: %w", err)
	}
	if err := json.Unmarshal([]byte(row.Brands), &profile.Brands); err != nil {
		return nil, fmt.Errorf("failed to unmarshal brands: %w", err)
	}
	if row.Address.Valid {
		if err := json.Unmarshal([]byte(row.Address.String), &profile.Address); err != nil {
			return nil, fmt.Errorf("failed to unmarshal address: %w", err)
		}
	}
	return profile, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
