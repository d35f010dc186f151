package memlayout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		Magic: Magic, Version: Version,
		PolicyCount: 100, ScenarioCount: 1000, WorkerCount: 4,
		MaxScenariosPerWorker: 250, PoliciesOffset: 32, ResultsOffset: 4096,
	}
	buf, err := h.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, buf, HeaderSize)

	got, err := UnmarshalHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestUnmarshalHeader_RejectsMagicMismatch(t *testing.T) {
	h := Header{Magic: 0xDEADBEEF, Version: Version}
	buf, err := h.MarshalBinary()
	require.NoError(t, err)
	_, err = UnmarshalHeader(buf)
	require.Error(t, err)
}

func TestUnmarshalHeader_RejectsVersionMismatch(t *testing.T) {
	h := Header{Magic: Magic, Version: 99}
	buf, err := h.MarshalBinary()
	require.NoError(t, err)
	_, err = UnmarshalHeader(buf)
	require.Error(t, err)
}

func TestUnmarshalHeader_RejectsShortBuffer(t *testing.T) {
	_, err := UnmarshalHeader(make([]byte, HeaderSize-1))
	require.Error(t, err)
}

func TestPlan_SectionsAreSixteenByteAligned(t *testing.T) {
	l := Plan(37, 3, 123)
	for _, off := range []int{l.PoliciesOffset, l.MortalityOffset, l.LapseOffset, l.ExpensesOffset, l.ResultsOffset, l.TotalSize} {
		require.Equal(t, 0, off%16, "offset %d not 16-byte aligned", off)
	}
}

func TestPlan_SectionsAreOrderedAndNonOverlapping(t *testing.T) {
	l := Plan(10, 2, 50)
	require.Less(t, l.PoliciesOffset, l.MortalityOffset)
	require.Less(t, l.MortalityOffset, l.LapseOffset)
	require.Less(t, l.LapseOffset, l.ExpensesOffset)
	require.Less(t, l.ExpensesOffset, l.ResultsOffset)
	require.Less(t, l.ResultsOffset, l.TotalSize)
}

func TestLayout_ValidateRejectsOversizedRegion(t *testing.T) {
	l := Plan(1, 1, 1)
	l.TotalSize = MaxRegionBytes + 1
	require.Error(t, l.Validate())
}

func TestLayout_ValidateAcceptsRegionAtLimit(t *testing.T) {
	l := Plan(1, 1, 1)
	l.TotalSize = MaxRegionBytes
	require.NoError(t, l.Validate())
}

func TestWriteReadSlab_RoundTrip(t *testing.T) {
	l := Plan(5, 2, 10)
	region := make([]byte, l.TotalSize)

	npvs := []float64{1.5, -2.25, 3.125, 0}
	require.NoError(t, WriteSlab(region, l, 1, npvs))

	got, err := ReadSlab(region, l, 1, len(npvs))
	require.NoError(t, err)
	require.Equal(t, npvs, got)
}

func TestWriteSlab_RejectsOverrun(t *testing.T) {
	l := Plan(1, 1, 1)
	region := make([]byte, l.TotalSize)
	err := WriteSlab(region, l, 0, make([]float64, 1000))
	require.Error(t, err)
}

func TestReadSlab_RejectsOverrun(t *testing.T) {
	l := Plan(1, 1, 1)
	region := make([]byte, l.TotalSize)
	_, err := ReadSlab(region, l, 0, 1000)
	require.Error(t, err)
}

func TestNewRegion_SharedModeRoundTrip(t *testing.T) {
	r, err := NewRegion(10, 2, 50, SharedMode)
	require.NoError(t, err)
	require.Equal(t, SharedMode, r.Mode())
	require.False(t, r.Ready())
	r.MarkReady()
	require.True(t, r.Ready())

	npvs := []float64{1, 2, 3}
	require.NoError(t, WriteSlab(r.Bytes(), r.Layout(), 0, npvs))
	got, err := ReadSlab(r.Bytes(), r.Layout(), 0, len(npvs))
	require.NoError(t, err)
	require.Equal(t, npvs, got)
}

func TestRegion_CopyIsIndependent(t *testing.T) {
	r, err := NewRegion(5, 1, 10, FallbackMode)
	require.NoError(t, err)
	require.Equal(t, FallbackMode, r.Mode())

	cp := r.Copy()
	cp[0] = 0xFF
	require.NotEqual(t, r.Bytes()[0], cp[0])
}

func TestNewRegion_RejectsOversizedPlan(t *testing.T) {
	_, err := NewRegion(1<<28, 1<<10, 1<<20, SharedMode)
	require.Error(t, err)
}
