package approval

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"payflow/internal/auth"
	"payflow/internal/salary"
)

type fakeDraftStore struct {
	drafts        map[string]*salary.Draft
	items         map[string][]salary.ChangeItem
	applyErr      error
	statusChanges []string
	applied       []salary.Breakdown
}

func newFakeDraftStore() *fakeDraftStore {
	return &fakeDraftStore{
		drafts: map[string]*salary.Draft{},
		items:  map[string][]salary.ChangeItem{},
	}
}

func (s *fakeDraftStore) GetDraft(ctx context.Context, draftID string) (*salary.Draft, error) {
	draft, ok := s.drafts[draftID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	copied := *draft
	return &copied, nil
}

func (s *fakeDraftStore) ListDrafts(ctx context.Context, status string, limit, offset int) ([]salary.Draft, error) {
	var out []salary.Draft
	for _, draft := range s.drafts {
		if status == "" || draft.Status == status {
			out = append(out, *draft)
		}
	}
	return out, nil
}

func (s *fakeDraftStore) DraftItems(ctx context.Context, draftID string) ([]salary.ChangeItem, error) {
	return s.items[draftID], nil
}

func (s *fakeDraftStore) EmployeeName(ctx context.Context, employeeID string) (string, error) {
	return "Sato Hanako", nil
}

func (s *fakeDraftStore) UpdateStatus(ctx context.Context, draft *salary.Draft, toStatus, actorID string) error {
	s.statusChanges = append(s.statusChanges, draft.Status+">"+toStatus)
	s.drafts[draft.ID].Status = toStatus
	return nil
}

func (s *fakeDraftStore) ApplySalaryChange(ctx context.Context, draft *salary.Draft, after salary.Breakdown) error {
	if s.applyErr != nil {
		return s.applyErr
	}
	s.applied = append(s.applied, after)
	return nil
}

func (s *fakeDraftStore) UpdateNoticePath(ctx context.Context, draftID, path string) error {
	return nil
}

func mechanicalDraft(id, status string) *salary.Draft {
	return &salary.Draft{
		ID:            id,
		EmployeeID:    "emp-1",
		Status:        status,
		ChangeType:    salary.ChangeTypeMechanical,
		BeforeTotal:   267000,
		AfterTotal:    282000,
		EffectiveDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:     time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestApplyValidTransition(t *testing.T) {
	store := newFakeDraftStore()
	store.drafts["d-1"] = mechanicalDraft("d-1", salary.StatusReviewed)
	service := NewService(store, nil, zap.NewNop())

	draft, err := service.Apply(context.Background(), "d-1", salary.StatusApproved, "u-2", auth.RoleManager)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.Status != salary.StatusApproved {
		t.Fatalf("expected approved, got %s", draft.Status)
	}
	if len(store.statusChanges) != 1 || store.statusChanges[0] != "reviewed>approved" {
		t.Fatalf("unexpected status changes: %v", store.statusChanges)
	}
}

func TestApplyRejectsWithoutStoreWrite(t *testing.T) {
	store := newFakeDraftStore()
	store.drafts["d-1"] = mechanicalDraft("d-1", salary.StatusDraft)
	service := NewService(store, nil, zap.NewNop())

	_, err := service.Apply(context.Background(), "d-1", salary.StatusApproved, "u-2", auth.RoleManager)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if len(store.statusChanges) != 0 {
		t.Fatal("invalid transition must not touch the store")
	}

	_, err = service.Apply(context.Background(), "missing", salary.StatusReviewed, "u-2", auth.RoleManager)
	if !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
}

func TestActionsForUsesDraftChangeType(t *testing.T) {
	store := newFakeDraftStore()
	draft := mechanicalDraft("d-1", salary.StatusReviewed)
	draft.ChangeType = salary.ChangeTypeDiscretionary
	store.drafts["d-1"] = draft
	service := NewService(store, nil, zap.NewNop())

	actions, err := service.ActionsFor(context.Background(), "d-1", auth.RoleManager)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(actions) != 2 || actions[0] != salary.StatusPendingCEOApproval {
		t.Fatalf("unexpected actions: %v", actions)
	}
}

func TestProcessorCompletesApprovedDraft(t *testing.T) {
	store := newFakeDraftStore()
	store.drafts["d-1"] = mechanicalDraft("d-1", salary.StatusApproved)
	store.items["d-1"] = salary.ToChangeItems(
		salary.BuildBreakdown(247000, 20000, 0, 0, 0),
		salary.BuildBreakdown(262000, 20000, 0, 0, 0),
	)
	service := NewService(store, nil, zap.NewNop())
	processor := NewProcessor(service, store, time.Minute, 10, zap.NewNop())

	if err := processor.RunOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.drafts["d-1"].Status; got != salary.StatusCompleted {
		t.Fatalf("expected completed, got %s", got)
	}
	if len(store.applied) != 1 {
		t.Fatalf("expected one salary change applied, got %d", len(store.applied))
	}
	if store.applied[0].BaseSalary != 262000 || store.applied[0].Total != 282000 {
		t.Fatalf("unexpected applied breakdown: %+v", store.applied[0])
	}
}

func TestProcessorMarksFailedOnApplyError(t *testing.T) {
	store := newFakeDraftStore()
	store.drafts["d-1"] = mechanicalDraft("d-1", salary.StatusApproved)
	store.applyErr = errors.New("constraint violation")
	service := NewService(store, nil, zap.NewNop())
	processor := NewProcessor(service, store, time.Minute, 10, zap.NewNop())

	if err := processor.RunOnce(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.drafts["d-1"].Status; got != salary.StatusFailed {
		t.Fatalf("expected failed, got %s", got)
	}
}
