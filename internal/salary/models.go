package salary

import "time"

// Breakdown is a salary split into its five components. Amounts are integers
// in the smallest currency unit. Total is always recomputed, never stored on
// its own.
type Breakdown struct {
	BaseSalary             int64 `json:"baseSalary"`
	PositionAllowance      int64 `json:"positionAllowance"`
	RegionAllowance        int64 `json:"regionAllowance"`
	QualificationAllowance int64 `json:"qualificationAllowance"`
	OtherAllowance         int64 `json:"otherAllowance"`
	Total                  int64 `json:"total"`
}

type ChangeItem struct {
	ItemType     string `json:"itemType"`
	ItemName     string `json:"itemName"`
	BeforeAmount int64  `json:"beforeAmount"`
	AfterAmount  int64  `json:"afterAmount"`
	IsChanged    bool   `json:"isChanged"`
}

// PitchEntry maps (grade, step) to a base salary amount.
type PitchEntry struct {
	Grade  int   `json:"grade"`
	Step   int   `json:"step"`
	Amount int64 `json:"amount"`
}

// AllowanceEntry maps (allowanceType, code) to a fixed allowance amount.
type AllowanceEntry struct {
	AllowanceType string `json:"allowanceType"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Amount        int64  `json:"amount"`
}

// Master bundles the reference tables a computation runs against.
type Master struct {
	Pitches    []PitchEntry
	Allowances []AllowanceEntry
}

type Proposal struct {
	Number      int          `json:"proposalNumber"`
	Description string       `json:"description"`
	ChangeType  string       `json:"changeType"`
	Before      Breakdown    `json:"before"`
	After       Breakdown    `json:"after"`
	Items       []ChangeItem `json:"items"`
}

type Employee struct {
	ID             string `json:"id"`
	EmployeeNumber string `json:"employeeNumber"`
	Name           string `json:"name"`
	Active         bool   `json:"active"`
}

type Draft struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employeeId"`
	ChatMessageID string     `json:"chatMessageId,omitempty"`
	Status        string     `json:"status"`
	ChangeType    string     `json:"changeType"`
	Description   string     `json:"description"`
	BeforeTotal   int64      `json:"beforeTotal"`
	AfterTotal    int64      `json:"afterTotal"`
	EffectiveDate time.Time  `json:"effectiveDate"`
	AIConfidence  float64    `json:"aiConfidence"`
	AIReasoning   string     `json:"aiReasoning"`
	NoticePath    string     `json:"noticePath,omitempty"`
	ReviewedBy    string     `json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`
	ApprovedBy    string     `json:"approvedBy,omitempty"`
	ApprovedAt    *time.Time `json:"approvedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// ChangeSet is the persistable outcome of one salary instruction: the drafts
// and their item rows, committed together with the message record that
// produced them.
type ChangeSet struct {
	Drafts []Draft
	Items  [][]ChangeItem
}

// MechanicalParams selects one of the three mechanical change kinds.
type MechanicalParams struct {
	Kind          string
	Grade         int
	Step          int
	AllowanceType string
	Code          string
}
