package ingest

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"payflow/internal/chat"
	"payflow/internal/classify"
	"payflow/internal/salary"
)

// StoreAPI is the pipeline's persistence surface. MessageExists is the
// idempotency gate; it only needs to make duplicates cheap to detect, a race
// between two concurrent deliveries of one key is tolerated.
type StoreAPI interface {
	MessageExists(ctx context.Context, messageID string) (bool, error)

	// SaveProcessed commits the message record, its classification and any
	// salary change set as one atomic unit. A redelivered message therefore
	// either finds everything recorded or nothing.
	SaveProcessed(ctx context.Context, event *chat.Event, cls *classify.Classification, changes *salary.ChangeSet) error

	ThreadContext(ctx context.Context, threadName string) (*classify.ThreadContext, error)
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) MessageExists(ctx context.Context, messageID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM chat_messages WHERE message_id = $1", messageID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) SaveProcessed(ctx context.Context, event *chat.Event, cls *classify.Classification, changes *salary.ChangeSet) error {
	mentioned, err := json.Marshal(event.MentionedUsers)
	if err != nil {
		return err
	}
	annotations, err := json.Marshal(event.Annotations)
	if err != nil {
		return err
	}
	attachments, err := json.Marshal(event.Attachments)
	if err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// ON CONFLICT DO NOTHING keeps the benign dedup race harmless.
	if _, err := tx.Exec(ctx, `
    INSERT INTO chat_messages
      (message_id, name, space_name, sender_user_id, sender_name, sender_type,
       text, formatted_text, message_type, thread_name, parent_message_id,
       mentioned_users, annotations, attachments, is_edited, is_deleted, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
    ON CONFLICT (message_id) DO NOTHING
  `, event.MessageID, event.Name, event.SpaceName, event.SenderUserID, event.SenderName,
		event.SenderType, event.Text, event.FormattedText, event.MessageType,
		nullable(event.ThreadName), nullable(event.ParentMessageID),
		mentioned, annotations, attachments, event.IsEdited, event.IsDeleted, event.CreatedAt); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO intent_classifications
      (message_id, category, confidence, reasoning, classification_method, regex_pattern)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (message_id) DO NOTHING
  `, event.MessageID, string(cls.Category), cls.Confidence, cls.Reasoning, cls.Method, nullable(cls.RegexPattern)); err != nil {
		return err
	}

	if changes != nil && len(changes.Drafts) > 0 {
		if err := salary.InsertDraftBatch(ctx, tx, changes.Drafts, changes.Items); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ThreadContext derives the inheritance context from the thread's first
// message and its stored classification. Nil when the thread has no
// classified parent yet.
func (s *Store) ThreadContext(ctx context.Context, threadName string) (*classify.ThreadContext, error) {
	var category, text string
	var confidence float64
	err := s.DB.QueryRow(ctx, `
    SELECT c.category, c.confidence, m.text
    FROM chat_messages m
    JOIN intent_classifications c ON c.message_id = m.message_id
    WHERE m.thread_name = $1
    ORDER BY m.created_at
    LIMIT 1
  `, threadName).Scan(&category, &confidence, &text)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var replyCount int
	if err := s.DB.QueryRow(ctx,
		"SELECT COUNT(1) FROM chat_messages WHERE thread_name = $1", threadName).Scan(&replyCount); err != nil {
		return nil, err
	}

	return &classify.ThreadContext{
		ParentCategory:   classify.Category(category),
		ParentConfidence: confidence,
		ParentSnippet:    snippet(text, 80),
		ReplyCount:       replyCount,
	}, nil
}

func snippet(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
