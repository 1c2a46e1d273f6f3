package services

import (
	"context"
	"encoding/json"
	"fmt"

	"meal-admin/db"
)

const outboundRole = "system/outbound"

// SaveOutboundMessage persists a notification sent to an admin chat.
// meta should carry "kind" and "key" so repeated sends can be detected.
func SaveOutboundMessage(ctx context.Context, chatID int64, content string, meta map[string]interface{}) error {
	metaJSON := "{}"
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal meta: %w", err)
		}
		metaJSON = string(b)
	}
	_, err := db.Pool.ExecContext(ctx, `
		INSERT INTO messages (chat_id, role, content, meta)
		VALUES ($1, $2, $3, $4::jsonb)`,
		chatID, outboundRole, content, metaJSON,
	)
	return err
}

// SentNotificationWithin30s reports whether a notification with the same kind and key
// was already sent in the last 30 seconds.
func SentNotificationWithin30s(ctx context.Context, kind, key string) (bool, error) {
	var count int
	err := db.Pool.QueryRowxContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE role = $1 AND meta->>'kind' = $2 AND meta->>'key' = $3
		  AND created_at > now() - interval '30 seconds'`,
		outboundRole, kind, key,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
