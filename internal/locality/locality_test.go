package locality

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecalab/internal/automaton"
	"ecalab/internal/infer"
)

func TestPatternWrapsAround(t *testing.T) {
	s := automaton.FromBits("10001")
	assert.Equal(t, "110", Pattern(s, 0, 1))
	assert.Equal(t, "01100", Pattern(s, 0, 2))
	assert.Equal(t, "0", Pattern(s, 2, 0))
	assert.Equal(t, "011", Pattern(s, 4, 1))
}

func TestRule110MinimalRadiusIsOne(t *testing.T) {
	rep := Run(Config{Rule: 110, Width: 50, Generations: 20, MaxRadius: DefaultMaxRadius, Trials: infer.DefaultTrials})
	require.True(t, rep.Found)
	assert.Equal(t, 1, rep.Radius)
	assert.Equal(t, DiagnosisSuccess, rep.Diagnosis)
	require.Len(t, rep.Results, 2, "search stops at the first consistent radius")

	zero := rep.Results[0]
	assert.False(t, zero.Consistent)
	assert.Equal(t, 2, zero.Possible)
	assert.NotEmpty(t, zero.Inconsistent)
	assert.LessOrEqual(t, len(zero.Inconsistent), SampleLimit)

	one := rep.Results[1]
	assert.True(t, one.Consistent)
	assert.Equal(t, 3, one.WindowSize)
	assert.Equal(t, 8, one.Possible)
	assert.Equal(t, 8, one.Observed)
	assert.Equal(t, 1.0, one.ConsistencyRate)
}

func TestConsistencyIsMonotone(t *testing.T) {
	transitions := infer.Flatten(infer.Sample(30, 50, 10, 5))
	for r := 1; r <= 3; r++ {
		res := CheckRadius(transitions, r)
		assert.Truef(t, res.Consistent, "radius %d", r)
	}
}

func TestIdentityRuleHasRadiusZero(t *testing.T) {
	rep := Run(Config{Rule: 204, Width: 30, Generations: 5, MaxRadius: 2, Trials: 3})
	require.True(t, rep.Found)
	assert.Equal(t, 0, rep.Radius)
	assert.Equal(t, DiagnosisBelowTrue, rep.Diagnosis)
}

func TestInconsistentWindowsSortedAndCapped(t *testing.T) {
	var transitions []infer.Transition
	for _, bits := range []string{"0000", "1111", "0101", "0011"} {
		before := automaton.FromBits(bits)
		after := automaton.Step(30, before)
		transitions = append(transitions, infer.Transition{Before: before, After: after}, infer.Transition{Before: before, After: automaton.Step(225, before)})
	}
	res := CheckRadius(transitions, 1)
	require.False(t, res.Consistent)
	require.NotEmpty(t, res.Inconsistent)
	assert.LessOrEqual(t, len(res.Inconsistent), SampleLimit)
	for i := 1; i < len(res.Inconsistent); i++ {
		assert.Less(t, res.Inconsistent[i-1].Pattern, res.Inconsistent[i].Pattern)
	}
	for _, w := range res.Inconsistent {
		assert.Positive(t, w.Zeros)
		assert.Positive(t, w.Ones)
	}
}

func TestMinimalRadiusUnresolved(t *testing.T) {
	before := automaton.FromBits("0110")
	transitions := []infer.Transition{
		{Before: before, After: automaton.FromBits("0000")},
		{Before: before, After: automaton.FromBits("1111")},
	}
	results, radius, found := MinimalRadius(transitions, 2)
	assert.False(t, found)
	assert.Equal(t, -1, radius)
	assert.Len(t, results, 3)
	assert.Equal(t, DiagnosisUnresolved, Diagnose(radius, found))
	assert.Equal(t, DiagnosisAboveTrue, Diagnose(2, true))
}

func TestCenterOnly(t *testing.T) {
	cases := map[automaton.Rule]CenterFunction{
		0:   CenterConstantZero,
		255: CenterConstantOne,
		204: CenterIdentity,
		51:  CenterNot,
	}
	for rule, want := range cases {
		got, ok := CenterOnly(rule)
		require.Truef(t, ok, "rule %d", rule)
		assert.Equal(t, want, got)
	}
	_, ok := CenterOnly(110)
	assert.False(t, ok)
}

func TestSurveyBuckets(t *testing.T) {
	rep, err := Survey(context.Background(), 4, 30, 10)
	require.NoError(t, err)
	require.Len(t, rep.Entries, 256)
	total := 0
	for _, n := range rep.Counts {
		total += n
	}
	assert.Equal(t, 256, total)

	assert.Equal(t, BucketOne, rep.Entries[110].Bucket)
	assert.Equal(t, BucketZero, rep.Entries[204].Bucket)

	var identity *CenterEntry
	for i := range rep.RadiusZero {
		if rep.RadiusZero[i].Rule == 204 {
			identity = &rep.RadiusZero[i]
		}
	}
	require.NotNil(t, identity)
	assert.True(t, identity.CenterOnly)
	assert.Equal(t, "identity", identity.Function)
}
