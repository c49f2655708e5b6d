package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnoseCapacityShortfall(t *testing.T) {
	d := Diagnose(DiagnosisInput{
		Headcounts: map[string]int{"MA": 3},
		Quotas:     map[string]int{"MA": 2},
		Slots:      []Slot{{ID: "s1", Required: 9, Reserves: 4}},
	})

	assert.False(t, d.Feasible)
	assert.Equal(t, 9, d.TotalRequired)
	assert.Equal(t, 6, d.TotalCapacity)
	assert.Equal(t, 3, d.Deficit)

	require.NotEmpty(t, d.Causes)
	assert.Equal(t, CauseCapacityShortfall, d.Causes[0].Type, "critical causes rank first")
	assert.Equal(t, SeverityCritical, d.Causes[0].Severity)

	require.NotEmpty(t, d.Remediations)
	types := map[string]Remediation{}
	for _, r := range d.Remediations {
		types[r.Type] = r
	}

	raise := types[RemedyRaiseQuotas]
	assert.Equal(t, 6, raise.ProjectedDelta, "raising to avg+1 = 4 gains 2 per head")
	assert.True(t, raise.FeasibleAfter)

	reduce := types[RemedyReduceReserves]
	assert.Equal(t, -2, reduce.ProjectedDelta)
	assert.False(t, reduce.FeasibleAfter, "7 required still exceeds capacity 6")
}

func TestDiagnoseEquityIndivisibilityDespiteCapacity(t *testing.T) {
	// 3 staff at ceiling 4 give capacity 12 for a demand of 10, yet absolute
	// equity needs 10 to split evenly across 3 heads.
	d := Diagnose(DiagnosisInput{
		Headcounts: map[string]int{"MA": 3},
		Quotas:     map[string]int{"MA": 4},
		Slots:      []Slot{{ID: "s1", Required: 10, Reserves: 4}},
	})

	assert.False(t, d.Feasible)
	assert.Zero(t, d.Deficit, "raw capacity is sufficient")

	require.NotEmpty(t, d.Causes)
	assert.Equal(t, CauseEquityImpossible, d.Causes[0].Type)
	assert.Equal(t, SeverityCritical, d.Causes[0].Severity)
	assert.Equal(t, "MA", d.Causes[0].Grade)

	require.NotEmpty(t, d.Remediations)
	assert.Equal(t, RemedySoftenEquity, d.Remediations[0].Type, "equity fix leads the ranking")
	assert.True(t, d.Remediations[0].FeasibleAfter)
}

func TestDiagnoseEnrollOptedOutStaff(t *testing.T) {
	d := Diagnose(DiagnosisInput{
		Headcounts: map[string]int{"MA": 2},
		Quotas:     map[string]int{"MA": 2},
		OptedOut:   map[string]int{"MA": 3},
		Slots:      []Slot{{ID: "s1", Required: 8, Reserves: 2}},
	})

	require.False(t, d.Feasible)
	var enroll *Remediation
	for i := range d.Remediations {
		if d.Remediations[i].Type == RemedyEnrollOptedOut {
			enroll = &d.Remediations[i]
		}
	}
	require.NotNil(t, enroll)
	assert.Equal(t, 6, enroll.ProjectedDelta, "3 extra heads at quota 2")
	assert.True(t, enroll.FeasibleAfter)
}

func TestDiagnoseWishOverload(t *testing.T) {
	d := Diagnose(DiagnosisInput{
		Headcounts: map[string]int{"MA": 2},
		Quotas:     map[string]int{"MA": 4},
		Slots:      []Slot{{ID: "s1", Required: 4}, {ID: "s2", Required: 4}},
		WishCount:  2, // 50% of the 4 staff/slot pairs
	})

	assert.InDelta(t, 50.0, d.WishRate, 0.01)
	found := false
	for _, cause := range d.Causes {
		if cause.Type == CauseWishOverload {
			found = true
			assert.Equal(t, SeverityMedium, cause.Severity)
		}
	}
	assert.True(t, found)
}

func TestDiagnoseFeasibleSession(t *testing.T) {
	d := Diagnose(DiagnosisInput{
		Headcounts: map[string]int{"MA": 4},
		Quotas:     map[string]int{"MA": 2},
		Slots:      []Slot{{ID: "s1", Required: 8}},
	})

	assert.True(t, d.Feasible)
	assert.Empty(t, d.Causes)
	assert.Empty(t, d.Remediations)
}
