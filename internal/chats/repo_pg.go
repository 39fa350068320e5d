package chats

import (
	"context"
	"database/sql"
	"fmt"
)

// PGRepo implements Repo on the chat_messages table.
type PGRepo struct {
	DB *sql.DB
}

// Append inserts every message in one transaction.
func (r *PGRepo) Append(ctx context.Context, submissionID string, msgs ...Message) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `INSERT INTO chat_messages (submission_id, role, content, created_at) VALUES ($1, $2, $3, $4)`
	for _, m := range msgs {
		if _, err := tx.ExecContext(ctx, query, submissionID, m.Role, m.Content, m.Timestamp); err != nil {
			return fmt.Errorf("insert chat message: %w", err)
		}
	}
	return tx.Commit()
}

// History returns messages in insertion order.
func (r *PGRepo) History(ctx context.Context, submissionID string) ([]Message, error) {
	const query = `
SELECT role, content, created_at
FROM chat_messages
WHERE submission_id = $1
ORDER BY id ASC`
	rows, err := r.DB.QueryContext(ctx, query, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
