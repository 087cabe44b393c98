package compress

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecalab/internal/automaton"
)

func TestPackMostSignificantBitFirst(t *testing.T) {
	diagram := []automaton.State{
		automaton.FromBits("10000"),
		automaton.FromBits("00011"),
	}
	// 10000 00011 -> 1000 0000 | 11 (padded) -> 0x80 0xC0
	assert.Equal(t, []byte{0x80, 0xC0}, Pack(diagram))
	assert.Empty(t, Pack(nil))
	assert.Equal(t, []byte{0xFF}, Pack([]automaton.State{automaton.FromBits("11111111")}))
}

func TestCodecsRoundTrip(t *testing.T) {
	payload := Pack(automaton.Run(30, automaton.SingleSeed(79), 200))
	for _, name := range CodecNames() {
		codec, err := CodecByName(name)
		require.NoError(t, err)
		require.Equal(t, name, codec.Name())

		compressed, err := codec.Compress(payload)
		require.NoErrorf(t, err, "codec %s", name)
		again, err := codec.Compress(payload)
		require.NoError(t, err)
		assert.Equalf(t, compressed, again, "codec %s must be deterministic", name)

		dec, ok := codec.(Decompressor)
		require.Truef(t, ok, "codec %s should decompress", name)
		restored, err := dec.Decompress(compressed)
		require.NoError(t, err)
		assert.Equal(t, payload, restored)
	}
}

func TestCodecByNameUnknown(t *testing.T) {
	_, err := CodecByName("lzma")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCodec))

	codec, err := CodecByName("")
	require.NoError(t, err)
	assert.Equal(t, DeflateName, codec.Name())
}

func TestMeasureBits(t *testing.T) {
	est, err := Measure(Deflate{}, 110, 79, 200)
	require.NoError(t, err)
	assert.Equal(t, 79*201, est.RawBits)
	assert.Equal(t, (79*201+7)/8, est.RawBytes)
	assert.Equal(t, 8*est.CompressedBytes, est.CompressedBits)
	assert.InDelta(t, float64(est.CompressedBits)/float64(est.RawBits), est.Ratio, 1e-12)
	assert.Equal(t, DeflateName, est.Codec)
	assert.Equal(t, 200, est.Generations)
}

func TestMeasureOrdersDeadBelowChaotic(t *testing.T) {
	dead, err := Measure(nil, 0, 79, 200)
	require.NoError(t, err)
	chaotic, err := Measure(nil, 30, 79, 200)
	require.NoError(t, err)

	assert.Equal(t, ClassTrivial, dead.Class)
	assert.Less(t, dead.Ratio, chaotic.Ratio)
	assert.Greater(t, chaotic.Ratio, 0.5)
}

type failingCodec struct{}

func (failingCodec) Name() string { return "failing" }

func (failingCodec) Compress([]byte) ([]byte, error) { return nil, errors.New("boom") }

func TestMeasurePropagatesCodecError(t *testing.T) {
	_, err := Measure(failingCodec{}, 110, 10, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compress rule 110")
}

func TestClassifyBands(t *testing.T) {
	cases := map[float64]Class{
		0.0:  ClassTrivial,
		0.05: ClassPeriodic,
		0.19: ClassPeriodic,
		0.2:  ClassStructured,
		0.5:  ClassComplex,
		0.79: ClassComplex,
		0.8:  ClassChaotic,
		1.3:  ClassChaotic,
	}
	for ratio, want := range cases {
		assert.Equalf(t, want, Classify(ratio), "ratio %f", ratio)
	}
}

func TestRankSortsStably(t *testing.T) {
	in := []Estimate{
		{Rule: 3, Ratio: 0.5, Class: ClassComplex},
		{Rule: 1, Ratio: 0.01, Class: ClassTrivial},
		{Rule: 2, Ratio: 0.5, Class: ClassComplex},
		{Rule: 4, Ratio: 0.9, Class: ClassChaotic},
	}
	r := Rank(in)
	var order []automaton.Rule
	for _, e := range r.Estimates {
		order = append(order, e.Rule)
	}
	assert.Equal(t, []automaton.Rule{1, 3, 2, 4}, order)
	assert.Equal(t, 2, r.Counts[ClassComplex])

	most, ok := r.MostCompressible()
	require.True(t, ok)
	assert.Equal(t, automaton.Rule(3), most.Rule)
	least, ok := r.LeastCompressible()
	require.True(t, ok)
	assert.Equal(t, automaton.Rule(4), least.Rule)

	_, ok = Rank([]Estimate{{Ratio: 0}}).MostCompressible()
	assert.False(t, ok)
}
