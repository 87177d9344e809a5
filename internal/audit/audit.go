package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	ActionMessageReceived  = "message_received"
	ActionIntentClassified = "intent_classified"
	ActionDraftCreated     = "draft_created"
	ActionStatusChanged    = "status_changed"
	ActionBusinessRejected = "business_rejected"

	EntityChatMessage = "chat_message"
	EntitySalaryDraft = "salary_draft"

	ActorPipeline = "pipeline"
)

// Querier is satisfied by both pgxpool.Pool and pgx.Tx so stores can append
// audit rows inside their own transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Insert appends one audit row using the caller's transaction or pool.
func Insert(ctx context.Context, q Querier, actorID, action, entityType, entityID string, details any) error {
	var detailsJSON []byte
	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			return err
		}
		detailsJSON = payload
	}
	_, err := q.Exec(ctx, `
    INSERT INTO audit_events (actor_id, action, entity_type, entity_id, details_json)
    VALUES ($1,$2,$3,$4,$5)
  `, actorID, action, entityType, entityID, detailsJSON)
	return err
}

type Service struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func New(db *pgxpool.Pool, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Record is fire-and-forget: a failed audit write is logged, never propagated.
func (s *Service) Record(ctx context.Context, actorID, action, entityType, entityID string, details any) {
	if err := Insert(ctx, s.db, actorID, action, entityType, entityID, details); err != nil {
		s.logger.Warn("audit write failed",
			zap.String("action", action),
			zap.String("entityId", entityID),
			zap.Error(err))
	}
}
