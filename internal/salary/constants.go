package salary

const (
	ChangeTypeMechanical    = "mechanical"
	ChangeTypeDiscretionary = "discretionary"

	StatusDraft              = "draft"
	StatusReviewed           = "reviewed"
	StatusPendingCEOApproval = "pending_ceo_approval"
	StatusApproved           = "approved"
	StatusProcessing         = "processing"
	StatusCompleted          = "completed"
	StatusRejected           = "rejected"
	StatusFailed             = "failed"

	MechanicalPitchChange     = "pitch_change"
	MechanicalAddAllowance    = "add_allowance"
	MechanicalRemoveAllowance = "remove_allowance"

	ItemTypeBaseSalary             = "base_salary"
	ItemTypePositionAllowance      = "position"
	ItemTypeRegionAllowance        = "region"
	ItemTypeQualificationAllowance = "qualification"
	ItemTypeOtherAllowance         = "other"

	maxDiscretionaryProposals = 3
)

var itemNames = map[string]string{
	ItemTypeBaseSalary:             "Base salary",
	ItemTypePositionAllowance:      "Position allowance",
	ItemTypeRegionAllowance:        "Region allowance",
	ItemTypeQualificationAllowance: "Qualification allowance",
	ItemTypeOtherAllowance:         "Other allowance",
}

// itemOrder fixes the order of the five change items within a draft.
var itemOrder = []string{
	ItemTypeBaseSalary,
	ItemTypePositionAllowance,
	ItemTypeRegionAllowance,
	ItemTypeQualificationAllowance,
	ItemTypeOtherAllowance,
}
