package storage_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xaenox/chat-profiler/internal/models"
	"github.com/xaenox/chat-profiler/internal/storage"
)

func newMockPostgres(t *testing.T) (*storage.PostgresStorage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return storage.NewPostgresStorageFromDB(sqlx.NewDb(db, "postgres"), zap.NewNop()), mock
}

func TestPostgresStorage_UpsertProfile(t *testing.T) {
	store, mock := newMockPostgres(t)
	p := sampleProfile()

	mock.ExpectExec("INSERT INTO clients").
		WithArgs("client-1", "Mode", sqlmock.AnyArg(), sqlmock.AnyArg(), p.Text, p.LatestMessageDate, `"12 rue de la Paix"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.UpsertProfile(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_UpsertProfileWithoutCategory(t *testing.T) {
	store, mock := newMockPostgres(t)
	p := sampleProfile()
	p.Category = nil
	p.Address = nil

	mock.ExpectExec("INSERT INTO clients").
		WithArgs("client-1", nil, sqlmock.AnyArg(), sqlmock.AnyArg(), p.Text, p.LatestMessageDate, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.UpsertProfile(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_UpsertProfileError(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectExec("INSERT INTO clients").WillReturnError(sql.ErrConnDone)

	err := store.UpsertProfile(context.Background(), sampleProfile())
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_GetProfile(t *testing.T) {
	columns := []string{"client_id", "category", "item", "brands", "text", "latest_message_date", "address"}

	testCases := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name: "found",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(columns).AddRow(
					"client-1", "Mode", []byte(`{bag,shoe}`), []byte(`{apple}`),
					"looking for a bag/I love my apple iphone", time.Unix(200, 0), []byte(`"12 rue de la Paix"`),
				)
				mock.ExpectQuery("SELECT client_id, category").WithArgs("client-1").WillReturnRows(rows)
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT client_id, category").WithArgs("client-1").WillReturnError(sql.ErrNoRows)
			},
			wantErr: storage.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, mock := newMockPostgres(t)
			tc.setupMock(mock)

			got, err := store.GetProfile(context.Background(), "client-1")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, sampleProfile(), got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStorage_ListConversationsSkipsBadRows(t *testing.T) {
	store, mock := newMockPostgres(t)

	rows := sqlmock.NewRows([]string{"sender_id", "events", "address"}).
		AddRow("a", []byte(`[{"event":"user","timestamp":1,"text":"bag"}]`), nil).
		AddRow("b", []byte(`not json`), nil).
		AddRow("c", []byte(`[]`), []byte(`{"city":"Lyon"}`))
	mock.ExpectQuery("SELECT sender_id, events, address FROM conversations").WillReturnRows(rows)

	convs, err := store.ListConversations(context.Background())
	require.NoError(t, err)
	require.Len(t, convs, 2)

	assert.Equal(t, "a", convs[0].SenderID)
	require.Len(t, convs[0].Events, 1)
	assert.Equal(t, 1.0, *convs[0].Events[0].Timestamp)
	assert.Nil(t, convs[0].Address)

	assert.Equal(t, "c", convs[1].SenderID)
	assert.Equal(t, map[string]any{"city": "Lyon"}, convs[1].Address)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_GetConversationNotFound(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectQuery("SELECT sender_id, events, address FROM conversations").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetConversation(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPostgresStorage_SaveConversation(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectExec("INSERT INTO conversations").
		WithArgs("a", `[{"event":"user","timestamp":1,"text":"bag"}]`, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	conv := sampleConversation()
	require.NoError(t, store.SaveConversation(context.Background(), conv))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func sampleConversation() *models.Conversation {
	return &models.Conversation{
		SenderID: "a",
		Events:   []models.Event{{Event: "user", Timestamp: ts(1), Text: "bag"}},
	}
}
