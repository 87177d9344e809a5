package salary

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"payflow/internal/extract"
)

type fakeStore struct {
	employees []Employee
	breakdown *Breakdown
	master    Master
}

func (s *fakeStore) FindActiveEmployeeByNumber(ctx context.Context, employeeNumber string) (*Employee, error) {
	for _, emp := range s.employees {
		if emp.EmployeeNumber == employeeNumber && emp.Active {
			found := emp
			return &found, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindActiveEmployeeByName(ctx context.Context, name string) (*Employee, error) {
	for _, emp := range s.employees {
		if emp.Name == name && emp.Active {
			found := emp
			return &found, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CurrentBreakdown(ctx context.Context, employeeID string) (*Breakdown, error) {
	return s.breakdown, nil
}

func (s *fakeStore) ActivePitches(ctx context.Context) ([]PitchEntry, error) {
	return s.master.Pitches, nil
}

func (s *fakeStore) ActiveAllowances(ctx context.Context) ([]AllowanceEntry, error) {
	return s.master.Allowances, nil
}

type fakeExtractor struct {
	params *extract.Params
	err    error
}

func (e *fakeExtractor) Extract(ctx context.Context, text string) (*extract.Params, error) {
	return e.params, e.err
}

func int64ptr(v int64) *int64 { return &v }

func newTestService(store *fakeStore, extractor *fakeExtractor) *Service {
	svc := NewService(store, extractor, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func defaultStore() *fakeStore {
	breakdown := BuildBreakdown(247000, 20000, 0, 0, 0)
	return &fakeStore{
		employees: []Employee{{ID: "emp-1", EmployeeNumber: "E100", Name: "Sato Hanako", Active: true}},
		breakdown: &breakdown,
		master:    testMaster(),
	}
}

func TestHandleMessageDiscretionary(t *testing.T) {
	store := defaultStore()
	extractor := &fakeExtractor{params: &extract.Params{
		EmployeeIdentifier: "Sato Hanako",
		ChangeType:         extract.ChangeTypeDiscretionary,
		TargetSalary:       int64ptr(300000),
		Reasoning:          "raise to 300k",
	}}

	changes, err := newTestService(store, extractor).HandleMessage(context.Background(), "msg-1", "raise Sato to 300000", 0.93, "salary instruction")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes.Drafts) == 0 || len(changes.Drafts) > 3 {
		t.Fatalf("expected 1-3 drafts, got %d", len(changes.Drafts))
	}
	if len(changes.Items) != len(changes.Drafts) {
		t.Fatalf("expected one item list per draft, got %d for %d drafts", len(changes.Items), len(changes.Drafts))
	}

	wantEffective := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	for _, draft := range changes.Drafts {
		if draft.Status != StatusDraft {
			t.Fatalf("expected initial status draft, got %s", draft.Status)
		}
		if draft.ChangeType != ChangeTypeDiscretionary {
			t.Fatalf("expected discretionary change type, got %s", draft.ChangeType)
		}
		if !draft.EffectiveDate.Equal(wantEffective) {
			t.Fatalf("expected effective date %v, got %v", wantEffective, draft.EffectiveDate)
		}
		if draft.ChatMessageID != "msg-1" {
			t.Fatalf("expected chat message id msg-1, got %s", draft.ChatMessageID)
		}
	}
}

func TestHandleMessageDiscretionaryMissingTarget(t *testing.T) {
	store := defaultStore()
	extractor := &fakeExtractor{params: &extract.Params{
		EmployeeIdentifier: "E100",
		ChangeType:         extract.ChangeTypeDiscretionary,
	}}

	changes, err := newTestService(store, extractor).HandleMessage(context.Background(), "msg-1", "raise", 0.9, "")
	if !errors.Is(err, ErrMissingTargetSalary) {
		t.Fatalf("expected ErrMissingTargetSalary, got %v", err)
	}
	if changes != nil {
		t.Fatal("expected no change set on permanent error")
	}
}

func TestHandleMessageDiscretionaryEmptyPitchTable(t *testing.T) {
	store := defaultStore()
	store.master = Master{}
	extractor := &fakeExtractor{params: &extract.Params{
		EmployeeIdentifier: "E100",
		ChangeType:         extract.ChangeTypeDiscretionary,
		TargetSalary:       int64ptr(300000),
	}}

	_, err := newTestService(store, extractor).HandleMessage(context.Background(), "msg-1", "raise", 0.9, "")
	if !errors.Is(err, ErrNoProposals) {
		t.Fatalf("expected ErrNoProposals, got %v", err)
	}
}

func TestHandleMessageMechanicalTargetSalary(t *testing.T) {
	store := defaultStore()
	extractor := &fakeExtractor{params: &extract.Params{
		EmployeeIdentifier: "E100",
		ChangeType:         extract.ChangeTypeMechanical,
		TargetSalary:       int64ptr(260000),
	}}

	changes, err := newTestService(store, extractor).HandleMessage(context.Background(), "msg-2", "set base by table", 0.9, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes.Drafts) != 1 {
		t.Fatalf("expected exactly one mechanical draft, got %d", len(changes.Drafts))
	}
	// Nearest pitch to 260000 is grade 2 step 2 at 262000.
	if changes.Drafts[0].AfterTotal != 262000+20000 {
		t.Fatalf("expected after total 282000, got %d", changes.Drafts[0].AfterTotal)
	}
	if changes.Drafts[0].ChangeType != ChangeTypeMechanical {
		t.Fatalf("expected mechanical change type, got %s", changes.Drafts[0].ChangeType)
	}
}

func TestHandleMessageMechanicalAllowance(t *testing.T) {
	store := defaultStore()
	store.breakdown = &Breakdown{BaseSalary: 247000, Total: 247000}
	extractor := &fakeExtractor{params: &extract.Params{
		EmployeeIdentifier: "E100",
		ChangeType:         extract.ChangeTypeMechanical,
		AllowanceType:      ItemTypePositionAllowance,
	}}

	changes, err := newTestService(store, extractor).HandleMessage(context.Background(), "msg-3", "add position allowance", 0.9, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changes.Drafts[0].AfterTotal != 267000 {
		t.Fatalf("expected after total 267000, got %d", changes.Drafts[0].AfterTotal)
	}
}

func TestHandleMessageMechanicalMissingParams(t *testing.T) {
	extractor := &fakeExtractor{params: &extract.Params{
		EmployeeIdentifier: "E100",
		ChangeType:         extract.ChangeTypeMechanical,
	}}

	_, err := newTestService(defaultStore(), extractor).HandleMessage(context.Background(), "msg-4", "do something", 0.9, "")
	if !errors.Is(err, ErrMissingChangeParams) {
		t.Fatalf("expected ErrMissingChangeParams, got %v", err)
	}
}

func TestHandleMessageEmployeeNotFound(t *testing.T) {
	extractor := &fakeExtractor{params: &extract.Params{
		EmployeeIdentifier: "Nobody",
		ChangeType:         extract.ChangeTypeDiscretionary,
		TargetSalary:       int64ptr(300000),
	}}

	_, err := newTestService(defaultStore(), extractor).HandleMessage(context.Background(), "msg-5", "raise Nobody", 0.9, "")
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestHandleMessageMissingIdentifier(t *testing.T) {
	extractor := &fakeExtractor{params: &extract.Params{
		ChangeType:   extract.ChangeTypeDiscretionary,
		TargetSalary: int64ptr(300000),
	}}

	_, err := newTestService(defaultStore(), extractor).HandleMessage(context.Background(), "msg-6", "raise them", 0.9, "")
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestHandleMessageExtractorFailureIsTransient(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("model unavailable")}

	_, err := newTestService(defaultStore(), extractor).HandleMessage(context.Background(), "msg-7", "raise", 0.9, "")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, sentinel := range PermanentErrors {
		if errors.Is(err, sentinel) {
			t.Fatalf("extractor failure must not map to permanent error %v", sentinel)
		}
	}
}
