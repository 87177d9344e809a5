package ingest

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"payflow/internal/audit"
	"payflow/internal/chat"
	"payflow/internal/classify"
	"payflow/internal/salary"
)

// Outcome is the terminal signal of one ingestion call. Ack tells the
// delivery platform to stop; Retry requests redelivery.
type Outcome int

const (
	OutcomeAck Outcome = iota
	OutcomeRetry
)

// SalaryHandler is the downstream consumer of salary-classified messages. It
// computes the change set only; the pipeline commits it with the message.
type SalaryHandler interface {
	HandleMessage(ctx context.Context, chatMessageID, text string, aiConfidence float64, aiReasoning string) (*salary.ChangeSet, error)
}

// Recorder is satisfied by audit.Service.
type Recorder interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, details any)
}

type Pipeline struct {
	store      StoreAPI
	chatClient chat.Client
	classifier classify.Classifier
	salary     SalaryHandler
	audit      Recorder
	logger     *zap.Logger
	now        func() time.Time
}

func NewPipeline(store StoreAPI, chatClient chat.Client, classifier classify.Classifier, salaryHandler SalaryHandler, auditSvc Recorder, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		store:      store,
		chatClient: chatClient,
		classifier: classifier,
		salary:     salaryHandler,
		audit:      auditSvc,
		logger:     logger,
		now:        time.Now,
	}
}

// Process handles one push delivery end to end. All writes for a delivery
// (message record, classification, drafts) commit as one unit at the end, so
// a retried delivery reprocesses from scratch and can never leave a partial
// set behind; a duplicate delivery of a recorded message returns early with
// no new writes.
func (p *Pipeline) Process(ctx context.Context, body []byte) Outcome {
	event, err := chat.Normalize(body, p.now)
	if err != nil {
		p.logger.Warn("discarding unparseable delivery", zap.Error(err))
		return OutcomeAck
	}
	if event == nil {
		p.logger.Debug("delivery filtered")
		return OutcomeAck
	}

	exists, err := p.store.MessageExists(ctx, event.MessageID)
	if err != nil {
		p.logger.Error("dedup check failed", zap.String("messageId", event.MessageID), zap.Error(err))
		return OutcomeRetry
	}
	if exists {
		p.logger.Info("duplicate delivery", zap.String("messageId", event.MessageID))
		return OutcomeAck
	}

	result := chat.Enrich(ctx, event, p.chatClient, p.logger)
	event = result.Event

	p.audit.Record(ctx, audit.ActorPipeline, audit.ActionMessageReceived, audit.EntityChatMessage, event.MessageID, map[string]any{
		"spaceName": event.SpaceName,
		"sender":    event.SenderUserID,
		"enriched":  result.Enriched,
	})

	cls, err := p.classifier.Classify(ctx, event.Text, p.threadContext(ctx, event))
	if err != nil {
		p.logger.Error("classification failed", zap.String("messageId", event.MessageID), zap.Error(err))
		return OutcomeRetry
	}

	var changes *salary.ChangeSet
	var businessErr error
	if cls.Category == classify.CategorySalaryChange {
		changeSet, err := p.salary.HandleMessage(ctx, event.MessageID, event.Text, cls.Confidence, cls.Reasoning)
		switch {
		case err == nil:
			changes = changeSet
		case isPermanent(err):
			businessErr = err
		default:
			p.logger.Error("salary handling failed", zap.String("messageId", event.MessageID), zap.Error(err))
			return OutcomeRetry
		}
	}

	if err := p.store.SaveProcessed(ctx, event, cls, changes); err != nil {
		p.logger.Error("delivery save failed", zap.String("messageId", event.MessageID), zap.Error(err))
		return OutcomeRetry
	}

	p.audit.Record(ctx, audit.ActorPipeline, audit.ActionIntentClassified, audit.EntityChatMessage, event.MessageID, map[string]any{
		"category":   cls.Category,
		"confidence": cls.Confidence,
		"method":     cls.Method,
	})

	if businessErr != nil {
		p.logger.Warn("salary instruction rejected",
			zap.String("messageId", event.MessageID),
			zap.Error(businessErr))
		p.audit.Record(ctx, audit.ActorPipeline, audit.ActionBusinessRejected, audit.EntityChatMessage, event.MessageID, map[string]any{
			"reason": businessErr.Error(),
		})
	}

	return OutcomeAck
}

// threadContext is best-effort: a lookup failure degrades to classification
// without context rather than failing the delivery.
func (p *Pipeline) threadContext(ctx context.Context, event *chat.Event) *classify.ThreadContext {
	if event.MessageType != chat.MessageTypeThreadReply || event.ThreadName == "" {
		return nil
	}
	threadCtx, err := p.store.ThreadContext(ctx, event.ThreadName)
	if err != nil {
		p.logger.Warn("thread context lookup failed",
			zap.String("threadName", event.ThreadName),
			zap.Error(err))
		return nil
	}
	return threadCtx
}

func isPermanent(err error) bool {
	for _, sentinel := range salary.PermanentErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
