package salary

import (
	"fmt"
	"sort"
)

// The calculation engine is pure and deterministic: it consumes structured
// values and reference tables only. No model call happens at or below this
// layer.

func BuildBreakdown(base, position, region, qualification, other int64) Breakdown {
	return Breakdown{
		BaseSalary:             base,
		PositionAllowance:      position,
		RegionAllowance:        region,
		QualificationAllowance: qualification,
		OtherAllowance:         other,
		Total:                  base + position + region + qualification + other,
	}
}

func (b Breakdown) component(itemType string) int64 {
	switch itemType {
	case ItemTypeBaseSalary:
		return b.BaseSalary
	case ItemTypePositionAllowance:
		return b.PositionAllowance
	case ItemTypeRegionAllowance:
		return b.RegionAllowance
	case ItemTypeQualificationAllowance:
		return b.QualificationAllowance
	case ItemTypeOtherAllowance:
		return b.OtherAllowance
	}
	return 0
}

func (b Breakdown) withComponent(itemType string, amount int64) Breakdown {
	switch itemType {
	case ItemTypeBaseSalary:
		b.BaseSalary = amount
	case ItemTypePositionAllowance:
		b.PositionAllowance = amount
	case ItemTypeRegionAllowance:
		b.RegionAllowance = amount
	case ItemTypeQualificationAllowance:
		b.QualificationAllowance = amount
	case ItemTypeOtherAllowance:
		b.OtherAllowance = amount
	}
	return BuildBreakdown(b.BaseSalary, b.PositionAllowance, b.RegionAllowance, b.QualificationAllowance, b.OtherAllowance)
}

// ToChangeItems returns exactly one item per component, changed or not.
func ToChangeItems(before, after Breakdown) []ChangeItem {
	items := make([]ChangeItem, 0, len(itemOrder))
	for _, itemType := range itemOrder {
		beforeAmount := before.component(itemType)
		afterAmount := after.component(itemType)
		items = append(items, ChangeItem{
			ItemType:     itemType,
			ItemName:     itemNames[itemType],
			BeforeAmount: beforeAmount,
			AfterAmount:  afterAmount,
			IsChanged:    beforeAmount != afterAmount,
		})
	}
	return items
}

// ApplyMechanicalChange computes the post-change breakdown for a reference
// table driven change. Lookup misses are hard errors with no partial result.
func ApplyMechanicalChange(current Breakdown, params MechanicalParams, master Master) (Breakdown, error) {
	switch params.Kind {
	case MechanicalPitchChange:
		for _, pitch := range master.Pitches {
			if pitch.Grade == params.Grade && pitch.Step == params.Step {
				return current.withComponent(ItemTypeBaseSalary, pitch.Amount), nil
			}
		}
		return Breakdown{}, fmt.Errorf("grade %d step %d: %w", params.Grade, params.Step, ErrPitchNotFound)

	case MechanicalAddAllowance:
		for _, allowance := range master.Allowances {
			if allowance.AllowanceType == params.AllowanceType && allowance.Code == params.Code {
				return current.withComponent(params.AllowanceType, allowance.Amount), nil
			}
		}
		return Breakdown{}, fmt.Errorf("allowance %s/%s: %w", params.AllowanceType, params.Code, ErrAllowanceNotFound)

	case MechanicalRemoveAllowance:
		return current.withComponent(params.AllowanceType, 0), nil
	}
	return Breakdown{}, fmt.Errorf("%q: %w", params.Kind, ErrUnknownChangeKind)
}

// GenerateDiscretionaryProposals resolves an arbitrary target total into up to
// three pitch-table candidates for the base component, holding every other
// component fixed. An empty pitch table yields zero proposals, which is a
// valid "cannot auto-propose" outcome.
func GenerateDiscretionaryProposals(current Breakdown, targetTotal int64, master Master) []Proposal {
	nonBase := current.Total - current.BaseSalary
	targetBase := targetTotal - nonBase

	// Stable sort keeps the original table order on equal distance.
	candidates := make([]PitchEntry, len(master.Pitches))
	copy(candidates, master.Pitches)
	sort.SliceStable(candidates, func(i, j int) bool {
		return absDiff(candidates[i].Amount, targetBase) < absDiff(candidates[j].Amount, targetBase)
	})

	proposals := []Proposal{}
	seen := map[int64]bool{}
	for _, pitch := range candidates {
		if seen[pitch.Amount] {
			continue
		}
		seen[pitch.Amount] = true

		after := current.withComponent(ItemTypeBaseSalary, pitch.Amount)
		number := len(proposals) + 1
		proposals = append(proposals, Proposal{
			Number:     number,
			ChangeType: ChangeTypeDiscretionary,
			Description: fmt.Sprintf("Proposal %d: grade %d step %d, base %d, total %d (%+d vs target %d)",
				number, pitch.Grade, pitch.Step, pitch.Amount, after.Total, after.Total-targetTotal, targetTotal),
			Before: current,
			After:  after,
			Items:  ToChangeItems(current, after),
		})
		if len(proposals) == maxDiscretionaryProposals {
			break
		}
	}
	return proposals
}

// NearestPitch returns the pitch entry whose amount is closest to target,
// first-in-table order breaking ties. ok is false only for an empty table.
func NearestPitch(pitches []PitchEntry, target int64) (PitchEntry, bool) {
	if len(pitches) == 0 {
		return PitchEntry{}, false
	}
	best := pitches[0]
	for _, pitch := range pitches[1:] {
		if absDiff(pitch.Amount, target) < absDiff(best.Amount, target) {
			best = pitch
		}
	}
	return best, true
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
