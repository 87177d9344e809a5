package salary

import "context"

// StoreAPI is the lookup surface the handler needs. Methods return (nil, nil)
// when no row matches; errors are infrastructure failures. Draft persistence
// happens through InsertDraftBatch inside the pipeline's transaction.
type StoreAPI interface {
	FindActiveEmployeeByNumber(ctx context.Context, employeeNumber string) (*Employee, error)
	FindActiveEmployeeByName(ctx context.Context, name string) (*Employee, error)
	CurrentBreakdown(ctx context.Context, employeeID string) (*Breakdown, error)
	ActivePitches(ctx context.Context) ([]PitchEntry, error)
	ActiveAllowances(ctx context.Context) ([]AllowanceEntry, error)
}
