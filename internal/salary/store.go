package salary

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"payflow/internal/audit"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindActiveEmployeeByNumber(ctx context.Context, employeeNumber string) (*Employee, error) {
	return s.findEmployee(ctx, "employee_number", employeeNumber)
}

func (s *Store) FindActiveEmployeeByName(ctx context.Context, name string) (*Employee, error) {
	return s.findEmployee(ctx, "name", name)
}

func (s *Store) findEmployee(ctx context.Context, column, value string) (*Employee, error) {
	var emp Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_number, name, active
    FROM employees
    WHERE `+column+` = $1 AND active = TRUE
    ORDER BY created_at
    LIMIT 1
  `, value).Scan(&emp.ID, &emp.EmployeeNumber, &emp.Name, &emp.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// CurrentBreakdown loads the salary record with no end date.
func (s *Store) CurrentBreakdown(ctx context.Context, employeeID string) (*Breakdown, error) {
	var base, position, region, qualification, other int64
	err := s.DB.QueryRow(ctx, `
    SELECT base_salary, position_allowance, region_allowance, qualification_allowance, other_allowance
    FROM employee_salaries
    WHERE employee_id = $1 AND end_date IS NULL
  `, employeeID).Scan(&base, &position, &region, &qualification, &other)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	breakdown := BuildBreakdown(base, position, region, qualification, other)
	return &breakdown, nil
}

func (s *Store) ActivePitches(ctx context.Context) ([]PitchEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT grade, step, amount
    FROM salary_pitches
    WHERE active = TRUE
    ORDER BY grade, step
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pitches []PitchEntry
	for rows.Next() {
		var p PitchEntry
		if err := rows.Scan(&p.Grade, &p.Step, &p.Amount); err != nil {
			return nil, err
		}
		pitches = append(pitches, p)
	}
	return pitches, rows.Err()
}

func (s *Store) ActiveAllowances(ctx context.Context) ([]AllowanceEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT allowance_type, code, name, amount
    FROM allowance_master
    WHERE active = TRUE
    ORDER BY allowance_type, code
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allowances []AllowanceEntry
	for rows.Next() {
		var a AllowanceEntry
		if err := rows.Scan(&a.AllowanceType, &a.Code, &a.Name, &a.Amount); err != nil {
			return nil, err
		}
		allowances = append(allowances, a)
	}
	return allowances, rows.Err()
}

// InsertDraftBatch writes drafts, their item rows and one audit entry per
// draft through the caller's transaction. The caller owns atomicity: the
// batch commits together with the message record that produced it.
func InsertDraftBatch(ctx context.Context, q audit.Querier, drafts []Draft, items [][]ChangeItem) error {
	for i, draft := range drafts {
		if _, err := q.Exec(ctx, `
      INSERT INTO salary_drafts
        (id, employee_id, chat_message_id, status, change_type, description,
         before_total, after_total, effective_date, ai_confidence, ai_reasoning)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    `, draft.ID, draft.EmployeeID, nullable(draft.ChatMessageID), draft.Status, draft.ChangeType,
			draft.Description, draft.BeforeTotal, draft.AfterTotal, draft.EffectiveDate,
			draft.AIConfidence, draft.AIReasoning); err != nil {
			return err
		}

		for position, item := range items[i] {
			if _, err := q.Exec(ctx, `
        INSERT INTO salary_draft_items
          (draft_id, position, item_type, item_name, before_amount, after_amount, is_changed)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
      `, draft.ID, position, item.ItemType, item.ItemName, item.BeforeAmount, item.AfterAmount, item.IsChanged); err != nil {
				return err
			}
		}

		if err := audit.Insert(ctx, q, audit.ActorPipeline, audit.ActionDraftCreated,
			audit.EntitySalaryDraft, draft.ID, map[string]any{
				"employeeId":  draft.EmployeeID,
				"changeType":  draft.ChangeType,
				"beforeTotal": draft.BeforeTotal,
				"afterTotal":  draft.AfterTotal,
			}); err != nil {
			return err
		}
	}

	return nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
