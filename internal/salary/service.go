package salary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"payflow/internal/extract"
)

// Service orchestrates extraction, resolution and the calculation engine for
// one salary-classified chat message. It computes the change set; the caller
// commits it together with the message record.
type Service struct {
	store     StoreAPI
	extractor extract.Extractor
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(store StoreAPI, extractor extract.Extractor, logger *zap.Logger) *Service {
	return &Service{store: store, extractor: extractor, logger: logger, now: time.Now}
}

// HandleMessage processes one salary instruction. Returned business errors
// wrap the sentinels in errors.go; anything else is an infrastructure failure
// the caller should retry.
func (s *Service) HandleMessage(ctx context.Context, chatMessageID, text string, aiConfidence float64, aiReasoning string) (*ChangeSet, error) {
	params, err := s.extractor.Extract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extract salary params: %w", err)
	}

	employee, err := s.resolveEmployee(ctx, params.EmployeeIdentifier)
	if err != nil {
		return nil, err
	}

	current, err := s.store.CurrentBreakdown(ctx, employee.ID)
	if err != nil {
		return nil, fmt.Errorf("load current salary: %w", err)
	}
	if current == nil {
		return nil, fmt.Errorf("employee %s: %w", employee.ID, ErrSalaryRecordNotFound)
	}

	master, err := s.loadMaster(ctx)
	if err != nil {
		return nil, err
	}

	var drafts []Draft
	var items [][]ChangeItem
	switch params.ChangeType {
	case extract.ChangeTypeDiscretionary:
		drafts, items, err = s.buildDiscretionaryDrafts(employee, chatMessageID, *current, params, master, aiConfidence)
	default:
		drafts, items, err = s.buildMechanicalDraft(employee, chatMessageID, *current, params, master, aiConfidence)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("salary drafts prepared",
		zap.String("employeeId", employee.ID),
		zap.String("chatMessageId", chatMessageID),
		zap.String("changeType", drafts[0].ChangeType),
		zap.Int("count", len(drafts)))
	return &ChangeSet{Drafts: drafts, Items: items}, nil
}

// resolveEmployee matches the identifier against active employees, employee
// number first, then exact name. First hit wins.
func (s *Service) resolveEmployee(ctx context.Context, identifier string) (*Employee, error) {
	if identifier == "" {
		return nil, fmt.Errorf("no employee identifier extracted: %w", ErrEmployeeNotFound)
	}

	employee, err := s.store.FindActiveEmployeeByNumber(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("find employee by number: %w", err)
	}
	if employee == nil {
		employee, err = s.store.FindActiveEmployeeByName(ctx, identifier)
		if err != nil {
			return nil, fmt.Errorf("find employee by name: %w", err)
		}
	}
	if employee == nil {
		return nil, fmt.Errorf("identifier %q: %w", identifier, ErrEmployeeNotFound)
	}
	return employee, nil
}

func (s *Service) loadMaster(ctx context.Context) (Master, error) {
	pitches, err := s.store.ActivePitches(ctx)
	if err != nil {
		return Master{}, fmt.Errorf("load pitch table: %w", err)
	}
	allowances, err := s.store.ActiveAllowances(ctx)
	if err != nil {
		return Master{}, fmt.Errorf("load allowance master: %w", err)
	}
	return Master{Pitches: pitches, Allowances: allowances}, nil
}

func (s *Service) buildDiscretionaryDrafts(employee *Employee, chatMessageID string, current Breakdown, params *extract.Params, master Master, aiConfidence float64) ([]Draft, [][]ChangeItem, error) {
	if params.TargetSalary == nil {
		return nil, nil, ErrMissingTargetSalary
	}

	proposals := GenerateDiscretionaryProposals(current, *params.TargetSalary, master)
	if len(proposals) == 0 {
		return nil, nil, fmt.Errorf("target %d: %w", *params.TargetSalary, ErrNoProposals)
	}

	effectiveDate := firstOfNextMonth(s.now())
	drafts := make([]Draft, 0, len(proposals))
	items := make([][]ChangeItem, 0, len(proposals))
	for _, proposal := range proposals {
		drafts = append(drafts, Draft{
			ID:            uuid.NewString(),
			EmployeeID:    employee.ID,
			ChatMessageID: chatMessageID,
			Status:        StatusDraft,
			ChangeType:    ChangeTypeDiscretionary,
			Description:   proposal.Description,
			BeforeTotal:   proposal.Before.Total,
			AfterTotal:    proposal.After.Total,
			EffectiveDate: effectiveDate,
			AIConfidence:  aiConfidence,
			AIReasoning:   params.Reasoning,
			CreatedAt:     s.now(),
		})
		items = append(items, proposal.Items)
	}
	return drafts, items, nil
}

func (s *Service) buildMechanicalDraft(employee *Employee, chatMessageID string, current Breakdown, params *extract.Params, master Master, aiConfidence float64) ([]Draft, [][]ChangeItem, error) {
	mech, description, err := s.resolveMechanicalParams(params, master)
	if err != nil {
		return nil, nil, err
	}

	after, err := ApplyMechanicalChange(current, mech, master)
	if err != nil {
		return nil, nil, err
	}

	draft := Draft{
		ID:            uuid.NewString(),
		EmployeeID:    employee.ID,
		ChatMessageID: chatMessageID,
		Status:        StatusDraft,
		ChangeType:    ChangeTypeMechanical,
		Description:   description,
		BeforeTotal:   current.Total,
		AfterTotal:    after.Total,
		EffectiveDate: firstOfNextMonth(s.now()),
		AIConfidence:  aiConfidence,
		AIReasoning:   params.Reasoning,
		CreatedAt:     s.now(),
	}
	return []Draft{draft}, [][]ChangeItem{ToChangeItems(current, after)}, nil
}

// resolveMechanicalParams maps extracted fields onto a mechanical change. An
// allowance type always routes to add_allowance; a target salary resolves to
// the nearest pitch entry. Removal is not reachable from chat input.
func (s *Service) resolveMechanicalParams(params *extract.Params, master Master) (MechanicalParams, string, error) {
	if params.AllowanceType != "" {
		code := ""
		for _, allowance := range master.Allowances {
			if allowance.AllowanceType == params.AllowanceType {
				code = allowance.Code
				break
			}
		}
		return MechanicalParams{
				Kind:          MechanicalAddAllowance,
				AllowanceType: params.AllowanceType,
				Code:          code,
			},
			fmt.Sprintf("Add %s allowance", params.AllowanceType),
			nil
	}

	if params.TargetSalary != nil {
		pitch, ok := NearestPitch(master.Pitches, *params.TargetSalary)
		if !ok {
			return MechanicalParams{}, "", fmt.Errorf("target %d: %w", *params.TargetSalary, ErrPitchNotFound)
		}
		s.logger.Debug("pitch resolved from target salary",
			zap.Int64("target", *params.TargetSalary),
			zap.Int64("distance", absDiff(pitch.Amount, *params.TargetSalary)),
			zap.Int("grade", pitch.Grade),
			zap.Int("step", pitch.Step))
		return MechanicalParams{
				Kind:  MechanicalPitchChange,
				Grade: pitch.Grade,
				Step:  pitch.Step,
			},
			fmt.Sprintf("Pitch change to grade %d step %d", pitch.Grade, pitch.Step),
			nil
	}

	return MechanicalParams{}, "", ErrMissingChangeParams
}

func firstOfNextMonth(now time.Time) time.Time {
	year, month, _ := now.Date()
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
}
