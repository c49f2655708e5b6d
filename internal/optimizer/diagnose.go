package optimizer

import (
	"fmt"
	"math"
	"sort"
)

// Cause severities.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
)

// Cause types.
const (
	CauseCapacityShortfall = "CAPACITY_SHORTFALL"
	CauseAverageQuotaLow   = "AVERAGE_QUOTA_LOW"
	CauseGradeDeficit      = "GRADE_DEFICIT"
	CauseEquityImpossible  = "EQUITY_IMPOSSIBLE"
	CauseWishOverload      = "WISH_OVERLOAD"
)

// Remediation types.
const (
	RemedySoftenEquity     = "SOFTEN_EQUITY"
	RemedyRaiseQuotas      = "RAISE_QUOTAS"
	RemedyRaiseDeficits    = "RAISE_DEFICIT_GRADES"
	RemedyReduceReserves   = "REDUCE_RESERVES"
	RemedyEnrollOptedOut   = "ENROLL_OPTED_OUT"
	reducedReservesPerSlot = 2
)

// Cause is one ranked reason the session cannot be solved.
type Cause struct {
	Type     string  `json:"type"`
	Message  string  `json:"message"`
	Grade    string  `json:"grade,omitempty"`
	Deficit  float64 `json:"deficit,omitempty"`
	Severity string  `json:"severity"`
}

// GradeRaise details a targeted quota raise for one grade.
type GradeRaise struct {
	Grade          string `json:"grade"`
	CurrentQuota   int    `json:"current_quota"`
	SuggestedQuota int    `json:"suggested_quota"`
	Gain           int    `json:"gain"`
}

// Remediation is a quantified fix proposal.
type Remediation struct {
	Type           string       `json:"type"`
	Description    string       `json:"description"`
	ProjectedDelta int          `json:"projected_delta"`
	FeasibleAfter  bool         `json:"feasible_after"`
	Priority       int          `json:"priority"`
	Details        []GradeRaise `json:"details,omitempty"`
}

// GradeAnalysis is the per-grade capacity breakdown.
type GradeAnalysis struct {
	Grade         string  `json:"grade"`
	Headcount     int     `json:"headcount"`
	Quota         int     `json:"quota"`
	Capacity      int     `json:"capacity"`
	ExpectedShare float64 `json:"expected_share"`
	Deficit       float64 `json:"deficit"`
	HasDeficit    bool    `json:"has_deficit"`
}

// Diagnosis explains an infeasible solve and ranks remediations.
type Diagnosis struct {
	Feasible      bool            `json:"feasible"`
	TotalRequired int             `json:"total_required"`
	TotalCapacity int             `json:"total_capacity"`
	Deficit       int             `json:"deficit"`
	Staff         int             `json:"staff"`
	SlotCount     int             `json:"slot_count"`
	AverageQuota  float64         `json:"average_quota"`
	WishRate      float64         `json:"wish_rate"`
	Causes        []Cause         `json:"causes"`
	Grades        []GradeAnalysis `json:"grades"`
	Remediations  []Remediation   `json:"remediations"`
}

// DiagnosisInput captures everything the diagnostician needs.
type DiagnosisInput struct {
	// Headcounts and Quotas describe participating staff per grade.
	Headcounts map[string]int
	Quotas     map[string]int
	// OptedOut counts non-participating staff per grade.
	OptedOut map[string]int
	// Slots are the calendar-mapped slots of the session.
	Slots []Slot
	// WishCount is the number of submitted avoidance wishes.
	WishCount int
}

// Diagnose explains why a solve is infeasible: capacity shortfall,
// per-grade deficits, equity indivisibility and wish overload, each with
// ranked, quantified remediation suggestions. Equity indivisibility is
// flagged even when raw capacity suffices, since absolute per-grade
// equality can be combinatorially impossible regardless of quota size.
func Diagnose(in DiagnosisInput) Diagnosis {
	d := Diagnosis{Feasible: true}

	grades := make([]string, 0, len(in.Headcounts))
	for grade, heads := range in.Headcounts {
		if heads > 0 {
			grades = append(grades, grade)
		}
	}
	sort.Strings(grades)

	for _, grade := range grades {
		d.Staff += in.Headcounts[grade]
		d.TotalCapacity += in.Headcounts[grade] * in.Quotas[grade]
	}
	for _, slot := range in.Slots {
		d.TotalRequired += slot.Required
	}
	d.SlotCount = len(in.Slots)

	if d.Staff > 0 {
		d.AverageQuota = float64(d.TotalRequired) / float64(d.Staff)
	}

	if d.TotalRequired > d.TotalCapacity {
		d.Feasible = false
		d.Deficit = d.TotalRequired - d.TotalCapacity

		d.Causes = append(d.Causes, Cause{
			Type: CauseCapacityShortfall,
			Message: fmt.Sprintf("capacity shortfall: %d supervisions required but only %d available",
				d.TotalRequired, d.TotalCapacity),
			Deficit:  float64(d.Deficit),
			Severity: SeverityCritical,
		})
		d.Causes = append(d.Causes, Cause{
			Type: CauseAverageQuotaLow,
			Message: fmt.Sprintf("average required quota is %.2f supervisions per staff member",
				d.AverageQuota),
			Severity: SeverityHigh,
		})
	}

	for _, grade := range grades {
		heads := in.Headcounts[grade]
		quota := in.Quotas[grade]
		capacity := heads * quota

		share := 0.0
		if d.TotalCapacity > 0 {
			share = float64(d.TotalRequired) * float64(capacity) / float64(d.TotalCapacity)
		}
		deficit := share - float64(capacity)

		analysis := GradeAnalysis{
			Grade:         grade,
			Headcount:     heads,
			Quota:         quota,
			Capacity:      capacity,
			ExpectedShare: share,
			Deficit:       deficit,
			HasDeficit:    deficit > 0,
		}
		d.Grades = append(d.Grades, analysis)

		if deficit > 0 {
			severity := SeverityMedium
			if deficit >= 20 {
				severity = SeverityHigh
			}
			d.Causes = append(d.Causes, Cause{
				Type:     CauseGradeDeficit,
				Message:  fmt.Sprintf("grade %s: deficit of %.1f supervisions", grade, deficit),
				Grade:    grade,
				Deficit:  deficit,
				Severity: severity,
			})
		}
	}

	// Absolute equity needs each grade's expected share to divide evenly
	// across its members.
	equityBroken := false
	for _, analysis := range d.Grades {
		if analysis.Headcount <= 1 {
			continue
		}
		remainder := math.Mod(analysis.ExpectedShare, float64(analysis.Headcount))
		if remainder > 1e-9 && remainder < float64(analysis.Headcount)-1e-9 {
			equityBroken = true
			d.Feasible = false
			d.Causes = append(d.Causes, Cause{
				Type: CauseEquityImpossible,
				Message: fmt.Sprintf("grade %s: %.1f supervisions cannot split evenly across %d staff (remainder %.1f)",
					analysis.Grade, analysis.ExpectedShare, analysis.Headcount, remainder),
				Grade:    analysis.Grade,
				Severity: SeverityCritical,
			})
		}
	}

	if equityBroken {
		d.Remediations = append(d.Remediations, Remediation{
			Type:          RemedySoftenEquity,
			Description:   "relax absolute grade equity to a soft penalty allowing minimal differences",
			FeasibleAfter: true,
			Priority:      0,
		})
	}

	if d.Deficit > 0 {
		d.Remediations = append(d.Remediations, d.raiseQuotasRemedy(in, grades))
		d.Remediations = append(d.Remediations, d.reduceReservesRemedy(in))

		if remedy, ok := d.enrollOptedOutRemedy(in); ok {
			d.Remediations = append(d.Remediations, remedy)
		}
		if remedy, ok := d.raiseDeficitGradesRemedy(in); ok {
			d.Remediations = append(d.Remediations, remedy)
		}
	}

	if d.Staff > 0 && d.SlotCount > 0 && in.WishCount > 0 {
		d.WishRate = float64(in.WishCount) / float64(d.Staff*d.SlotCount) * 100
		if d.WishRate > 30 {
			d.Causes = append(d.Causes, Cause{
				Type: CauseWishOverload,
				Message: fmt.Sprintf("high avoidance-wish load: %d wishes (%.1f%% of staff/slot pairs)",
					in.WishCount, d.WishRate),
				Severity: SeverityMedium,
			})
		}
	}

	severityRank := map[string]int{
		SeverityCritical: 0,
		SeverityHigh:     1,
		SeverityMedium:   2,
		SeverityLow:      3,
	}
	sort.SliceStable(d.Causes, func(a, b int) bool {
		return severityRank[d.Causes[a].Severity] < severityRank[d.Causes[b].Severity]
	})
	sort.SliceStable(d.Remediations, func(a, b int) bool {
		return d.Remediations[a].Priority < d.Remediations[b].Priority
	})

	return d
}

func (d *Diagnosis) raiseQuotasRemedy(in DiagnosisInput, grades []string) Remediation {
	target := int(d.AverageQuota) + 1
	gain := 0
	for _, grade := range grades {
		if raise := target - in.Quotas[grade]; raise > 0 {
			gain += raise * in.Headcounts[grade]
		}
	}
	return Remediation{
		Type:           RemedyRaiseQuotas,
		Description:    fmt.Sprintf("raise every grade quota to %d supervisions per staff member", target),
		ProjectedDelta: gain,
		FeasibleAfter:  d.TotalCapacity+gain >= d.TotalRequired,
		Priority:       1,
	}
}

func (d *Diagnosis) reduceReservesRemedy(in DiagnosisInput) Remediation {
	reduction := 0
	for _, slot := range in.Slots {
		if slot.Reserves > reducedReservesPerSlot {
			reduction += slot.Reserves - reducedReservesPerSlot
		}
	}
	return Remediation{
		Type:           RemedyReduceReserves,
		Description:    fmt.Sprintf("reduce reserves to %d per slot", reducedReservesPerSlot),
		ProjectedDelta: -reduction,
		FeasibleAfter:  d.TotalCapacity >= d.TotalRequired-reduction,
		Priority:       2,
	}
}

func (d *Diagnosis) enrollOptedOutRemedy(in DiagnosisInput) (Remediation, bool) {
	total, gain := 0, 0
	for grade, heads := range in.OptedOut {
		total += heads
		gain += heads * in.Quotas[grade]
	}
	if total == 0 {
		return Remediation{}, false
	}
	return Remediation{
		Type:           RemedyEnrollOptedOut,
		Description:    fmt.Sprintf("enroll the %d staff members currently opted out", total),
		ProjectedDelta: gain,
		FeasibleAfter:  d.TotalCapacity+gain >= d.TotalRequired,
		Priority:       3,
	}, true
}

func (d *Diagnosis) raiseDeficitGradesRemedy(in DiagnosisInput) (Remediation, bool) {
	var details []GradeRaise
	gain := 0
	for _, analysis := range d.Grades {
		if !analysis.HasDeficit {
			continue
		}
		target := int(analysis.ExpectedShare/float64(analysis.Headcount)) + 1
		raise := (target - analysis.Quota) * analysis.Headcount
		if raise <= 0 {
			continue
		}
		gain += raise
		details = append(details, GradeRaise{
			Grade:          analysis.Grade,
			CurrentQuota:   analysis.Quota,
			SuggestedQuota: target,
			Gain:           raise,
		})
	}
	if len(details) == 0 {
		return Remediation{}, false
	}
	return Remediation{
		Type:           RemedyRaiseDeficits,
		Description:    "raise quotas only for grades in deficit",
		ProjectedDelta: gain,
		FeasibleAfter:  d.TotalCapacity+gain >= d.TotalRequired,
		Priority:       2,
		Details:        details,
	}, true
}
