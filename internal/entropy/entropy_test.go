package entropy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecalab/internal/automaton"
)

func TestBlockOutOfRangeIsZero(t *testing.T) {
	s := automaton.FromBits("10110")
	assert.Equal(t, 0.0, Block(s, 0))
	assert.Equal(t, 0.0, Block(s, 6))
	assert.Equal(t, 0.0, Block(automaton.NewState(0), 1))
}

func TestBlockUniformStateIsZero(t *testing.T) {
	for k := 1; k <= 8; k++ {
		assert.Equal(t, 0.0, Block(automaton.NewState(8), k))
		assert.Equal(t, 0.0, Block(automaton.FromBits("11111111"), k))
	}
	// alternating cells: half the 2-windows read 10, the other half 01.
	assert.InDelta(t, 1.0, Block(automaton.FromBits("10101010"), 2), 1e-12)
}

func TestBlockMaximalForDeBruijnSequence(t *testing.T) {
	// cyclic de Bruijn sequence B(2,3): every 3-window occurs exactly once.
	s := automaton.FromBits("00010111")
	assert.InDelta(t, 3.0, Block(s, 3), 1e-12)
	assert.InDelta(t, 2.0, Block(s, 2), 1e-12)
	assert.InDelta(t, 1.0, Block(s, 1), 1e-12)
}

func TestBlockSingleSeed(t *testing.T) {
	// one live cell in 4: p(1)=1/4.
	want := -(0.25*math.Log2(0.25) + 0.75*math.Log2(0.75))
	assert.InDelta(t, want, Block(automaton.SingleSeed(4), 1), 1e-12)
}

func TestBlockBounds(t *testing.T) {
	for trial := 0; trial < 4; trial++ {
		s := automaton.Seeded(37, automaton.TrainingSeed(trial), automaton.TrainingDensity)
		for k := 1; k <= 24; k++ {
			h := Block(s, k)
			if h < 0 || h > float64(k)+1e-9 {
				t.Fatalf("entropy %f out of [0,%d] for trial %d", h, k, trial)
			}
			// there are only 37 samples, so H <= log2(37) as well.
			if h > math.Log2(37)+1e-9 {
				t.Fatalf("entropy %f exceeds sample bound for k=%d", h, k)
			}
		}
	}
}

func TestBlockWideWindowsMatchDenseCounting(t *testing.T) {
	s := automaton.Seeded(30, automaton.DenseSeed(2), automaton.TrainingDensity)
	// with k=21..30 every window is distinct unless the row is periodic.
	for k := 21; k <= 30; k++ {
		h := Block(s, k)
		assert.GreaterOrEqual(t, h, 0.0)
		assert.LessOrEqual(t, h, math.Log2(30)+1e-9)
	}
}

func TestTrackAndTrace(t *testing.T) {
	series := Track(110, automaton.SingleSeed(79), 100, 3)
	require.Len(t, series, 101)

	tr := NewTrace(110, 79, 100, 3)
	require.Len(t, tr.Points, 101)
	assert.Equal(t, series, tr.Series())
	assert.Equal(t, 101, tr.Summary.Count)
	assert.InDelta(t, tr.Summary.Mean/3, tr.Normalized, 1e-12)
	assert.LessOrEqual(t, tr.Summary.Max, 3.0)
	assert.InDelta(t, 1.0/79.0, tr.Points[0].Density, 1e-12)
}

func TestPrinted(t *testing.T) {
	var printed []int
	for g := 0; g <= 23; g++ {
		if Printed(g, 23) {
			printed = append(printed, g)
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 10, 20, 23}, printed)
}

func TestClassifyThresholds(t *testing.T) {
	assert.Equal(t, ClassDead, Classify(0.01, 0.5))
	assert.Equal(t, ClassPeriodic, Classify(0.2, 0.01))
	assert.Equal(t, ClassFractal, Classify(0.5, 0.2))
	assert.Equal(t, ClassChaotic, Classify(0.9, 0.05))
	assert.Equal(t, ClassComplex, Classify(0.5, 0.05))
	assert.Equal(t, "chaotic", ClassChaotic.String())
}

func TestMeasureRuleZeroIsDead(t *testing.T) {
	sig := Measure(0, 79, 100, 3)
	assert.Equal(t, ClassDead, sig.Class)
	assert.False(t, sig.Notable())
	assert.Equal(t, 0.0, sig.Mean)
}

func TestMeasureRule30IsNotable(t *testing.T) {
	sig := Measure(30, 79, 100, 3)
	assert.True(t, sig.Notable(), "rule 30 signature: %+v", sig)
	assert.Greater(t, sig.NormMean, 0.5)
}
