package approval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"payflow/internal/salary"
)

// StoreAPI is the draft persistence surface the workflow needs.
type StoreAPI interface {
	GetDraft(ctx context.Context, draftID string) (*salary.Draft, error)
	ListDrafts(ctx context.Context, status string, limit, offset int) ([]salary.Draft, error)
	DraftItems(ctx context.Context, draftID string) ([]salary.ChangeItem, error)
	EmployeeName(ctx context.Context, employeeID string) (string, error)
	UpdateStatus(ctx context.Context, draft *salary.Draft, toStatus, actorID string) error
	ApplySalaryChange(ctx context.Context, draft *salary.Draft, after salary.Breakdown) error
	UpdateNoticePath(ctx context.Context, draftID, path string) error
}

type Service struct {
	store   StoreAPI
	notices *salary.NoticeWriter
	logger  *zap.Logger
}

func NewService(store StoreAPI, notices *salary.NoticeWriter, logger *zap.Logger) *Service {
	return &Service{store: store, notices: notices, logger: logger}
}

// Apply validates and performs one status transition. The status change and
// its audit entry commit together; concurrent appliers are last-write-wins.
func (s *Service) Apply(ctx context.Context, draftID, toStatus, actorID, actorRole string) (*salary.Draft, error) {
	draft, err := s.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	if err := ValidateTransition(draft.Status, toStatus, actorRole, draft.ChangeType); err != nil {
		return nil, fmt.Errorf("%s -> %s as %s: %w", draft.Status, toStatus, actorRole, err)
	}

	if err := s.store.UpdateStatus(ctx, draft, toStatus, actorID); err != nil {
		return nil, err
	}

	s.logger.Info("draft status changed",
		zap.String("draftId", draft.ID),
		zap.String("from", draft.Status),
		zap.String("to", toStatus),
		zap.String("actor", actorID),
		zap.String("role", actorRole))

	if toStatus == salary.StatusCompleted {
		s.writeNotice(ctx, draft)
	}

	draft.Status = toStatus
	return draft, nil
}

// ActionsFor enumerates the transitions the actor may take on a draft.
func (s *Service) ActionsFor(ctx context.Context, draftID, actorRole string) ([]string, error) {
	draft, err := s.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return NextActions(draft.Status, actorRole, draft.ChangeType), nil
}

func (s *Service) Get(ctx context.Context, draftID string) (*salary.Draft, []salary.ChangeItem, error) {
	draft, err := s.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.store.DraftItems(ctx, draftID)
	if err != nil {
		return nil, nil, err
	}
	return draft, items, nil
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]salary.Draft, error) {
	return s.store.ListDrafts(ctx, status, limit, offset)
}

// writeNotice is best-effort: a notice failure never fails the transition.
func (s *Service) writeNotice(ctx context.Context, draft *salary.Draft) {
	if s.notices == nil {
		return
	}
	items, err := s.store.DraftItems(ctx, draft.ID)
	if err != nil {
		s.logger.Warn("notice items load failed", zap.String("draftId", draft.ID), zap.Error(err))
		return
	}
	employeeName, err := s.store.EmployeeName(ctx, draft.EmployeeID)
	if err != nil {
		s.logger.Warn("notice employee lookup failed", zap.String("draftId", draft.ID), zap.Error(err))
		return
	}
	path, err := s.notices.Write(*draft, employeeName, items)
	if err != nil {
		s.logger.Warn("notice pdf failed", zap.String("draftId", draft.ID), zap.Error(err))
		return
	}
	if err := s.store.UpdateNoticePath(ctx, draft.ID, path); err != nil {
		s.logger.Warn("notice path update failed", zap.String("draftId", draft.ID), zap.Error(err))
	}
}
