package salary

import "errors"

// Business errors: a redelivery of the same message cannot fix any of these,
// so the pipeline acknowledges instead of retrying.
var (
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrSalaryRecordNotFound = errors.New("current salary record not found")
	ErrPitchNotFound        = errors.New("no matching pitch table entry")
	ErrAllowanceNotFound    = errors.New("no matching allowance master entry")
	ErrMissingTargetSalary  = errors.New("discretionary change requires a target salary")
	ErrMissingChangeParams  = errors.New("mechanical change requires an allowance type or target salary")
	ErrNoProposals          = errors.New("no viable proposals for target salary")
	ErrUnknownChangeKind    = errors.New("unknown mechanical change kind")
)

// PermanentErrors enumerates the business failures above for outcome mapping.
var PermanentErrors = []error{
	ErrEmployeeNotFound,
	ErrSalaryRecordNotFound,
	ErrPitchNotFound,
	ErrAllowanceNotFound,
	ErrMissingTargetSalary,
	ErrMissingChangeParams,
	ErrNoProposals,
	ErrUnknownChangeKind,
}
