package extract

import "context"

const (
	ChangeTypeMechanical    = "mechanical"
	ChangeTypeDiscretionary = "discretionary"
)

// Params are the structured salary-change parameters pulled out of free text.
// Empty EmployeeIdentifier, nil TargetSalary and empty AllowanceType all mean
// "not stated"; whether that is sufficient is judged by the salary handler,
// not here.
type Params struct {
	EmployeeIdentifier string `json:"employeeIdentifier"`
	ChangeType         string `json:"changeType"`
	TargetSalary       *int64 `json:"targetSalary"`
	AllowanceType      string `json:"allowanceType"`
	Reasoning          string `json:"reasoning"`
}

type Extractor interface {
	Extract(ctx context.Context, text string) (*Params, error)
}
