package approval

import (
	"errors"

	"payflow/internal/auth"
	"payflow/internal/salary"
)

var (
	ErrInvalidTransition  = errors.New("no such transition")
	ErrForbidden          = errors.New("role not permitted for transition")
	ErrChangeTypeMismatch = errors.New("transition requires a different change type")
)

type transitionKey struct {
	From string
	To   string
}

// rule gates one edge. ChangeType empty means the edge applies to both kinds.
type rule struct {
	Roles      []string
	ChangeType string
}

var transitionTable = map[transitionKey]rule{
	{salary.StatusDraft, salary.StatusReviewed}:                       {Roles: []string{auth.RoleStaff, auth.RoleManager}},
	{salary.StatusDraft, salary.StatusRejected}:                       {Roles: []string{auth.RoleStaff, auth.RoleManager}},
	{salary.StatusReviewed, salary.StatusApproved}:                    {Roles: []string{auth.RoleManager}, ChangeType: salary.ChangeTypeMechanical},
	{salary.StatusReviewed, salary.StatusPendingCEOApproval}:          {Roles: []string{auth.RoleManager}, ChangeType: salary.ChangeTypeDiscretionary},
	{salary.StatusReviewed, salary.StatusDraft}:                       {Roles: []string{auth.RoleStaff, auth.RoleManager}},
	{salary.StatusPendingCEOApproval, salary.StatusApproved}:          {Roles: []string{auth.RoleCEO}},
	{salary.StatusPendingCEOApproval, salary.StatusDraft}:             {Roles: []string{auth.RoleCEO}},
	{salary.StatusRejected, salary.StatusDraft}:                       {Roles: []string{auth.RoleStaff, auth.RoleManager}},
	{salary.StatusApproved, salary.StatusProcessing}:                  {Roles: []string{auth.RoleSystem}},
	{salary.StatusProcessing, salary.StatusCompleted}:                 {Roles: []string{auth.RoleSystem}},
	{salary.StatusProcessing, salary.StatusFailed}:                    {Roles: []string{auth.RoleSystem}},
	{salary.StatusFailed, salary.StatusProcessing}:                    {Roles: []string{auth.RoleStaff, auth.RoleManager}},
	{salary.StatusFailed, salary.StatusReviewed}:                      {Roles: []string{auth.RoleManager}},
}

// transitionOrder fixes enumeration order for NextActions.
var transitionOrder = []transitionKey{
	{salary.StatusDraft, salary.StatusReviewed},
	{salary.StatusDraft, salary.StatusRejected},
	{salary.StatusReviewed, salary.StatusApproved},
	{salary.StatusReviewed, salary.StatusPendingCEOApproval},
	{salary.StatusReviewed, salary.StatusDraft},
	{salary.StatusPendingCEOApproval, salary.StatusApproved},
	{salary.StatusPendingCEOApproval, salary.StatusDraft},
	{salary.StatusRejected, salary.StatusDraft},
	{salary.StatusApproved, salary.StatusProcessing},
	{salary.StatusProcessing, salary.StatusCompleted},
	{salary.StatusProcessing, salary.StatusFailed},
	{salary.StatusFailed, salary.StatusProcessing},
	{salary.StatusFailed, salary.StatusReviewed},
}

// ValidateTransition checks edge existence, then role, then change type.
func ValidateTransition(from, to, role, changeType string) error {
	r, ok := transitionTable[transitionKey{From: from, To: to}]
	if !ok {
		return ErrInvalidTransition
	}
	if !containsRole(r.Roles, role) {
		return ErrForbidden
	}
	if r.ChangeType != "" && r.ChangeType != changeType {
		return ErrChangeTypeMismatch
	}
	return nil
}

// NextActions lists the states reachable from current for the given role and
// change type. It never mutates anything.
func NextActions(current, role, changeType string) []string {
	actions := []string{}
	for _, key := range transitionOrder {
		if key.From != current {
			continue
		}
		if ValidateTransition(key.From, key.To, role, changeType) == nil {
			actions = append(actions, key.To)
		}
	}
	return actions
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
