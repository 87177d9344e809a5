package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"payflow/internal/audit"
	"payflow/internal/salary"
)

var ErrDraftNotFound = errors.New("draft not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const draftColumns = `
  id, employee_id, chat_message_id, status, change_type, description,
  before_total, after_total, effective_date, ai_confidence, ai_reasoning,
  notice_path, reviewed_by, reviewed_at, approved_by, approved_at, created_at`

func scanDraft(row pgx.Row) (*salary.Draft, error) {
	var d salary.Draft
	var chatMessageID, noticePath, reviewedBy, approvedBy *string
	err := row.Scan(&d.ID, &d.EmployeeID, &chatMessageID, &d.Status, &d.ChangeType, &d.Description,
		&d.BeforeTotal, &d.AfterTotal, &d.EffectiveDate, &d.AIConfidence, &d.AIReasoning,
		&noticePath, &reviewedBy, &d.ReviewedAt, &approvedBy, &d.ApprovedAt, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	if chatMessageID != nil {
		d.ChatMessageID = *chatMessageID
	}
	if noticePath != nil {
		d.NoticePath = *noticePath
	}
	if reviewedBy != nil {
		d.ReviewedBy = *reviewedBy
	}
	if approvedBy != nil {
		d.ApprovedBy = *approvedBy
	}
	return &d, nil
}

func (s *Store) GetDraft(ctx context.Context, draftID string) (*salary.Draft, error) {
	draft, err := scanDraft(s.DB.QueryRow(ctx, "SELECT"+draftColumns+" FROM salary_drafts WHERE id = $1", draftID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDraftNotFound
	}
	return draft, err
}

func (s *Store) ListDrafts(ctx context.Context, status string, limit, offset int) ([]salary.Draft, error) {
	query := "SELECT" + draftColumns + " FROM salary_drafts"
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, limit, offset)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []salary.Draft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, *draft)
	}
	return drafts, rows.Err()
}

func (s *Store) DraftItems(ctx context.Context, draftID string) ([]salary.ChangeItem, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT item_type, item_name, before_amount, after_amount, is_changed
    FROM salary_draft_items
    WHERE draft_id = $1
    ORDER BY position
  `, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []salary.ChangeItem
	for rows.Next() {
		var item salary.ChangeItem
		if err := rows.Scan(&item.ItemType, &item.ItemName, &item.BeforeAmount, &item.AfterAmount, &item.IsChanged); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) EmployeeName(ctx context.Context, employeeID string) (string, error) {
	var name string
	err := s.DB.QueryRow(ctx, "SELECT name FROM employees WHERE id = $1", employeeID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return name, err
}

// UpdateStatus applies the status change plus its audit entry atomically.
// There is deliberately no version check: last write wins.
func (s *Store) UpdateStatus(ctx context.Context, draft *salary.Draft, toStatus, actorID string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	switch toStatus {
	case salary.StatusReviewed:
		_, err = tx.Exec(ctx, `
      UPDATE salary_drafts SET status = $2, reviewed_by = $3, reviewed_at = $4 WHERE id = $1
    `, draft.ID, toStatus, actorID, now)
	case salary.StatusApproved:
		_, err = tx.Exec(ctx, `
      UPDATE salary_drafts SET status = $2, approved_by = $3, approved_at = $4 WHERE id = $1
    `, draft.ID, toStatus, actorID, now)
	default:
		_, err = tx.Exec(ctx, "UPDATE salary_drafts SET status = $2 WHERE id = $1", draft.ID, toStatus)
	}
	if err != nil {
		return err
	}

	if err := audit.Insert(ctx, tx, actorID, audit.ActionStatusChanged, audit.EntitySalaryDraft, draft.ID, map[string]any{
		"from": draft.Status,
		"to":   toStatus,
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ApplySalaryChange closes the employee's current salary record and opens a
// new one carrying the draft's after amounts, in one transaction.
func (s *Store) ApplySalaryChange(ctx context.Context, draft *salary.Draft, after salary.Breakdown) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
    UPDATE employee_salaries SET end_date = $2 WHERE employee_id = $1 AND end_date IS NULL
  `, draft.EmployeeID, draft.EffectiveDate.AddDate(0, 0, -1)); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO employee_salaries
      (employee_id, base_salary, position_allowance, region_allowance,
       qualification_allowance, other_allowance, start_date, source_draft_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, draft.EmployeeID, after.BaseSalary, after.PositionAllowance, after.RegionAllowance,
		after.QualificationAllowance, after.OtherAllowance, draft.EffectiveDate, draft.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) UpdateNoticePath(ctx context.Context, draftID, path string) error {
	_, err := s.DB.Exec(ctx, "UPDATE salary_drafts SET notice_path = $2 WHERE id = $1", draftID, path)
	return err
}
