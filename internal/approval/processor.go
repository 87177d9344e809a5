package approval

import (
	"context"
	"time"

	"go.uber.org/zap"

	"payflow/internal/auth"
	"payflow/internal/salary"
)

// Processor drives approved drafts through processing to completed (or
// failed) as the system actor, applying the salary change along the way.
type Processor struct {
	service   *Service
	store     StoreAPI
	interval  time.Duration
	batchSize int
	logger    *zap.Logger
}

func NewProcessor(service *Service, store StoreAPI, interval time.Duration, batchSize int, logger *zap.Logger) *Processor {
	return &Processor{
		service:   service,
		store:     store,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (p *Processor) Start(ctx context.Context) {
	go p.loop(ctx)
}

func (p *Processor) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.RunOnce(ctx); err != nil {
				p.logger.Warn("processor pass failed", zap.Error(err))
			}
		}
	}
}

// RunOnce picks one batch of approved drafts and processes each independently.
func (p *Processor) RunOnce(ctx context.Context) error {
	drafts, err := p.store.ListDrafts(ctx, salary.StatusApproved, p.batchSize, 0)
	if err != nil {
		return err
	}
	for _, draft := range drafts {
		p.processDraft(ctx, draft.ID)
	}
	return nil
}

func (p *Processor) processDraft(ctx context.Context, draftID string) {
	draft, err := p.service.Apply(ctx, draftID, salary.StatusProcessing, auth.RoleSystem, auth.RoleSystem)
	if err != nil {
		p.logger.Warn("draft pickup failed", zap.String("draftId", draftID), zap.Error(err))
		return
	}

	if err := p.applyChange(ctx, draft); err != nil {
		p.logger.Error("salary change application failed",
			zap.String("draftId", draftID),
			zap.Error(err))
		if _, err := p.service.Apply(ctx, draftID, salary.StatusFailed, auth.RoleSystem, auth.RoleSystem); err != nil {
			p.logger.Error("draft fail transition failed", zap.String("draftId", draftID), zap.Error(err))
		}
		return
	}

	if _, err := p.service.Apply(ctx, draftID, salary.StatusCompleted, auth.RoleSystem, auth.RoleSystem); err != nil {
		p.logger.Error("draft complete transition failed", zap.String("draftId", draftID), zap.Error(err))
	}
}

func (p *Processor) applyChange(ctx context.Context, draft *salary.Draft) error {
	items, err := p.store.DraftItems(ctx, draft.ID)
	if err != nil {
		return err
	}
	after := breakdownFromItems(items)
	return p.store.ApplySalaryChange(ctx, draft, after)
}

func breakdownFromItems(items []salary.ChangeItem) salary.Breakdown {
	amounts := map[string]int64{}
	for _, item := range items {
		amounts[item.ItemType] = item.AfterAmount
	}
	return salary.BuildBreakdown(
		amounts[salary.ItemTypeBaseSalary],
		amounts[salary.ItemTypePositionAllowance],
		amounts[salary.ItemTypeRegionAllowance],
		amounts[salary.ItemTypeQualificationAllowance],
		amounts[salary.ItemTypeOtherAllowance],
	)
}
