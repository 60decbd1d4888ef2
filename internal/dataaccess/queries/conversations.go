// internal/dataaccess/queries/conversations.go
package queries

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"support-chatbot/internal/models"
)

// SaveConversation inserts params["record"] (models.ConversationRecord) and
// returns it with the assigned id.
func SaveConversation(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	rec, ok := params["record"].(models.ConversationRecord)
	if !ok {
		return nil, 0, 0, fmt.Errorf("%w: record", ErrMissingParam)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	start := time.Now()
	err := db.QueryRowContext(ctx, `
		INSERT INTO conversations (conversation_id, user_message, ai_response, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		rec.ConversationID, rec.UserMessage, rec.AIResponse, rec.CreatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return nil, 0, 0, err
	}

	return &rec, 1, time.Since(start).Milliseconds(), nil
}

// RecentConversations lists the newest exchanges first. params: limit.
func RecentConversations(ctx context.Context, db *sql.DB, params Params) (interface{}, int, int64, error) {
	limit, err := intParam(params, "limit")
	if err != nil {
		return nil, 0, 0, err
	}

	start := time.Now()
	rows, err := db.QueryContext(ctx, `
		SELECT id, conversation_id, user_message, ai_response, created_at
		FROM conversations
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	records := []models.ConversationRecord{}
	for rows.Next() {
		var r models.ConversationRecord
		if err := rows.Scan(&r.ID, &r.ConversationID, &r.UserMessage, &r.AIResponse, &r.CreatedAt); err != nil {
			return nil, 0, 0, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	return records, len(records), time.Since(start).Milliseconds(), nil
}
