package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jobtrail/jobtrail/pkg/models"
)

// ErrNotFound is returned when a record is not found
var ErrNotFound = errors.New("record not found")

const messageColumns = `id, thread_id, date, sender, recipients_to, recipients_cc, recipients_bcc,
	subject, body_text, body_html, attachments, snippet, is_job_related, last_synced`

// ListOptions controls filtering and pagination for message listings
type ListOptions struct {
	JobRelated *bool
	Limit      int
	Offset     int
}

// UpsertMessage inserts or fully replaces a message keyed by its id.
// Collection fields are stored as JSON text, empty collections as "[]".
// LastSynced is set here on every write.
func (db *DB) UpsertMessage(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT OR REPLACE INTO messages (
			id, thread_id, date, sender,
			recipients_to, recipients_cc, recipients_bcc,
			subject, body_text, body_html,
			attachments, snippet, is_job_related, last_synced
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC()
	_, err := db.ExecContext(ctx, query,
		msg.ID,
		msg.ThreadID,
		msg.Date,
		msg.Sender,
		mustJSONList(msg.RecipientsTo),
		mustJSONList(msg.RecipientsCc),
		mustJSONList(msg.RecipientsBcc),
		msg.Subject,
		msg.BodyText,
		msg.BodyHTML,
		mustJSONAttachments(msg.Attachments),
		msg.Snippet,
		msg.IsJobRelated,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert message %s: %w", msg.ID, err)
	}

	msg.LastSynced = now
	return nil
}

// CountMessages returns the total number of stored messages
func (db *DB) CountMessages(ctx context.Context) (int, error) {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages`); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// GetMessageByID returns a message by its id
func (db *DB) GetMessageByID(ctx context.Context, id string) (*models.Message, error) {
	row := db.QueryRowxContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = ?`, id)
	msg, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return &msg, nil
}

// GetThread returns all messages sharing a thread id, ordered by date
// ascending so the conversation reads top to bottom.
func (db *DB) GetThread(ctx context.Context, threadID string) ([]models.Message, error) {
	rows, err := db.QueryxContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE thread_id = ? ORDER BY date ASC`, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query thread %s: %w", threadID, err)
	}
	defer rows.Close()

	var thread []models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread %s: %w", threadID, err)
		}
		thread = append(thread, msg)
	}
	return thread, rows.Err()
}

// ListMessages returns messages ordered by date descending
func (db *DB) ListMessages(ctx context.Context, opts ListOptions) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages`
	var args []interface{}

	if opts.JobRelated != nil {
		query += ` WHERE is_job_related = ?`
		args = append(args, *opts.JobRelated)
	}
	query += ` ORDER BY date DESC`

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, limit, opts.Offset)

	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// ListSummaries returns the compact (id, sender, subject, date) projection
// of the most recent messages, used as context for free-text filtering.
func (db *DB) ListSummaries(ctx context.Context, limit int) ([]models.MessageSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	var summaries []models.MessageSummary
	err := db.SelectContext(ctx, &summaries,
		`SELECT id, sender, subject, date FROM messages ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	return summaries, nil
}

// rowScanner covers both sqlx.Row and sqlx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row rowScanner) (models.Message, error) {
	var (
		msg         models.Message
		to, cc, bcc string
		attachments string
		jobRelated  sql.NullBool
	)

	err := row.Scan(
		&msg.ID, &msg.ThreadID, &msg.Date, &msg.Sender,
		&to, &cc, &bcc,
		&msg.Subject, &msg.BodyText, &msg.BodyHTML,
		&attachments, &msg.Snippet, &jobRelated, &msg.LastSynced,
	)
	if err != nil {
		return models.Message{}, err
	}

	if msg.RecipientsTo, err = unmarshalStrings(to); err != nil {
		return models.Message{}, fmt.Errorf("failed to decode recipients_to: %w", err)
	}
	if msg.RecipientsCc, err = unmarshalStrings(cc); err != nil {
		return models.Message{}, fmt.Errorf("failed to decode recipients_cc: %w", err)
	}
	if msg.RecipientsBcc, err = unmarshalStrings(bcc); err != nil {
		return models.Message{}, fmt.Errorf("failed to decode recipients_bcc: %w", err)
	}

	msg.Attachments = []models.Attachment{}
	if attachments != "" {
		if err := json.Unmarshal([]byte(attachments), &msg.Attachments); err != nil {
			return models.Message{}, fmt.Errorf("failed to decode attachments: %w", err)
		}
	}
	if msg.Attachments == nil {
		msg.Attachments = []models.Attachment{}
	}

	if jobRelated.Valid {
		msg.IsJobRelated = &jobRelated.Bool
	}

	return msg, nil
}

func unmarshalStrings(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// mustJSONList serializes a string slice, mapping nil to "[]"
func mustJSONList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// mustJSONAttachments serializes attachments, mapping nil to "[]"
func mustJSONAttachments(list []models.Attachment) string {
	if len(list) == 0 {
		return "[]"
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}
