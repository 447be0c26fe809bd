package state

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"dialogbot/core/logger"
	"log/slog"
)

// PostgresStore persists conversations in the dialog_states table, with the
// answers map stored as JSONB.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type stateRow struct {
	ChatID int64          `db:"chat_id"`
	UserID int64          `db:"user_id"`
	Name   sql.NullString `db:"name"`
	Data   []byte         `db:"data"`
}

func (s *PostgresStore) Get(ctx context.Context, chatID, userID int64) (Conversation, error) {
	var row stateRow
	err := s.db.GetContext(ctx, &row,
		`SELECT chat_id, user_id, name, data FROM dialog_states
		 WHERE chat_id = $1 AND user_id = $2`, chatID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Conversation{ChatID: chatID, UserID: userID}, nil
	}
	if err != nil {
		return Conversation{}, fmt.Errorf("state get: %w", err)
	}

	cv := Conversation{ChatID: row.ChatID, UserID: row.UserID}
	if row.Name.Valid {
		name := row.Name.String
		cv.Name = &name
	}
	if len(row.Data) > 0 {
		data, err := decodeData(row.Data)
		if err != nil {
			return Conversation{}, fmt.Errorf("state decode: %w", err)
		}
		cv.Data = data
	}
	return cv, nil
}

// decodeData parses the JSONB column without losing integer identity:
// plain json.Unmarshal turns every number into float64, which would hand
// completion callbacks float64(30) for an answer validated as int64.
func decodeData(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	for k, v := range data {
		data[k] = normalizeJSONValue(v)
	}
	return data, nil
}

func normalizeJSONValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeJSONValue(e)
		}
	case []any:
		for i, e := range t {
			t[i] = normalizeJSONValue(e)
		}
	}
	return v
}

func (s *PostgresStore) Set(ctx context.Context, cv Conversation) error {
	data := cv.Data
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("state encode: %w", err)
	}

	var name sql.NullString
	if cv.Name != nil {
		name = sql.NullString{String: *cv.Name, Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO dialog_states (chat_id, user_id, name, data)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (chat_id, user_id) DO UPDATE SET
			name = EXCLUDED.name,
			data = EXCLUDED.data,
			updated_at = now()`,
		cv.ChatID, cv.UserID, name, raw)
	if err != nil {
		logger.Store.Error("set failed",
			slog.String("event", "state.set"),
			slog.Int64("chat_id", cv.ChatID),
			slog.Int64("user_id", cv.UserID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("state set: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, chatID, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM dialog_states WHERE chat_id = $1 AND user_id = $2`, chatID, userID)
	if err != nil {
		return fmt.Errorf("state clear: %w", err)
	}
	return nil
}
