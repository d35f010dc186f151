// Package memlayout defines the single contiguous shared-memory region
// a host harness and its workers agree on: a 32-byte header followed
// by policy, mortality, lapse, expense, and per-worker result slab
// sections, all 16-byte aligned, per spec.md §3/§6.
package memlayout

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/rgehrsitz/nslv/internal/domain"
)

// Magic identifies a valid shared region; chosen and documented here
// per spec.md §6 ("magic u32 = 0x4C43... implementation-chosen constant").
const Magic uint32 = 0x4C435631 // "LCV1"

// Version is the layout version this package reads and writes.
const Version uint32 = 1

// HeaderSize is the fixed size of the header section.
const HeaderSize = 32

func align16(n int) int {
	return (n + 15) &^ 15
}

// Header is the 32-byte section at the start of the shared region.
type Header struct {
	Magic                 uint32
	Version               uint32
	PolicyCount           uint32
	ScenarioCount         uint32
	WorkerCount           uint32
	MaxScenariosPerWorker uint32
	PoliciesOffset        uint32
	ResultsOffset         uint32
}

// MarshalBinary writes the 32-byte header.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.PolicyCount)
	binary.LittleEndian.PutUint32(buf[12:16], h.ScenarioCount)
	binary.LittleEndian.PutUint32(buf[16:20], h.WorkerCount)
	binary.LittleEndian.PutUint32(buf[20:24], h.MaxScenariosPerWorker)
	binary.LittleEndian.PutUint32(buf[24:28], h.PoliciesOffset)
	binary.LittleEndian.PutUint32(buf[28:32], h.ResultsOffset)
	return buf, nil
}

// UnmarshalHeader parses and validates the 32-byte header. Magic and
// version mismatches fail fast, per spec.md §4.5.
func UnmarshalHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("shared region header too short: got %d bytes, want %d", len(buf), HeaderSize)
	}
	h := Header{
		Magic:                 binary.LittleEndian.Uint32(buf[0:4]),
		Version:               binary.LittleEndian.Uint32(buf[4:8]),
		PolicyCount:           binary.LittleEndian.Uint32(buf[8:12]),
		ScenarioCount:         binary.LittleEndian.Uint32(buf[12:16]),
		WorkerCount:           binary.LittleEndian.Uint32(buf[16:20]),
		MaxScenariosPerWorker: binary.LittleEndian.Uint32(buf[20:24]),
		PoliciesOffset:        binary.LittleEndian.Uint32(buf[24:28]),
		ResultsOffset:         binary.LittleEndian.Uint32(buf[28:32]),
	}
	if h.Magic != Magic {
		return Header{}, fmt.Errorf("shared region magic mismatch: got 0x%08X, want 0x%08X", h.Magic, Magic)
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("shared region version mismatch: got %d, want %d", h.Version, Version)
	}
	return h, nil
}

// Layout describes the byte offsets and sizes of every section in a
// region sized for policyCount policies, workerCount workers, and
// maxScenariosPerWorker scenarios in the largest chunk.
type Layout struct {
	PoliciesOffset  int
	MortalityOffset int
	LapseOffset     int
	ExpensesOffset  int
	ResultsOffset   int
	SlabSize        int
	TotalSize       int
}

// Plan computes section offsets for the given counts. All offsets are
// 16-byte aligned, per spec.md §4.5's alignment invariant.
func Plan(policyCount, workerCount, maxScenariosPerWorker int) Layout {
	var l Layout
	offset := align16(HeaderSize)
	l.PoliciesOffset = offset
	offset = align16(offset + policyCount*domain.PolicyRecordSize)
	l.MortalityOffset = offset
	offset = align16(offset + domain.MortalityTableSize)
	l.LapseOffset = offset
	offset = align16(offset + domain.LapseTableSize)
	l.ExpensesOffset = offset
	offset = align16(offset + domain.ExpenseTableSize)
	l.ResultsOffset = offset
	l.SlabSize = align16(maxScenariosPerWorker * 8)
	offset += l.SlabSize * workerCount
	l.TotalSize = offset
	return l
}

// MaxRegionBytes bounds the size of a region the driver will accept,
// per spec.md §5's "rejects configurations that would exceed a
// configurable maximum shared-region size".
const MaxRegionBytes = 1 << 30 // 1 GiB

// Validate rejects a layout whose total size exceeds MaxRegionBytes.
func (l Layout) Validate() error {
	if l.TotalSize > MaxRegionBytes {
		return fmt.Errorf("shared region of %d bytes exceeds the %d byte maximum", l.TotalSize, MaxRegionBytes)
	}
	return nil
}

// WriteSlab writes one worker's per-scenario NPVs into its slab in the
// backing region at the layout's computed offset. Exactly one worker
// writes each slab, so no synchronization is required (spec.md §4.5).
func WriteSlab(region []byte, l Layout, workerIndex int, npvs []float64) error {
	off := l.ResultsOffset + workerIndex*l.SlabSize
	need := off + len(npvs)*8
	if need > len(region) {
		return fmt.Errorf("result slab for worker %d overruns region: need %d bytes, have %d", workerIndex, need, len(region))
	}
	for i, v := range npvs {
		binary.LittleEndian.PutUint64(region[off+i*8:off+i*8+8], math.Float64bits(v))
	}
	return nil
}

// ReadSlab reads n scenario NPVs back out of a worker's slab.
func ReadSlab(region []byte, l Layout, workerIndex int, n int) ([]float64, error) {
	off := l.ResultsOffset + workerIndex*l.SlabSize
	need := off + n*8
	if need > len(region) {
		return nil, fmt.Errorf("result slab for worker %d overruns region: need %d bytes, have %d", workerIndex, need, len(region))
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(region[off+i*8 : off+i*8+8]))
	}
	return out, nil
}

// Region owns a backing byte buffer and the layout describing its
// sections. It is valid in two modes: SharedMode, where the buffer is
// true shared memory visible to sibling workers without copying, and
// FallbackMode, where the host environment cannot provide that (e.g.
// no cross-origin isolation in a browser harness) and each worker
// instead receives its own copy of the read-only sections. Both modes
// honor the same single-writer-slab, read-only-after-init contract
// (spec.md §4.5).
type Region struct {
	buf    []byte
	layout Layout
	mode   Mode
	ready  atomic.Bool
}

// Mode distinguishes true shared memory from the copy-per-worker fallback.
type Mode int

const (
	SharedMode Mode = iota
	FallbackMode
)

// NewRegion allocates a region sized per Plan(policyCount, workerCount,
// maxScenariosPerWorker) in the requested mode.
func NewRegion(policyCount, workerCount, maxScenariosPerWorker int, mode Mode) (*Region, error) {
	l := Plan(policyCount, workerCount, maxScenariosPerWorker)
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &Region{buf: make([]byte, l.TotalSize), layout: l, mode: mode}, nil
}

// Layout returns the region's section layout.
func (r *Region) Layout() Layout {
	return r.layout
}

// Mode returns whether this region is true shared memory or a fallback copy.
func (r *Region) Mode() Mode {
	return r.mode
}

// Bytes returns the backing buffer. In FallbackMode, callers that hand
// per-worker copies to sibling execution contexts should call Copy
// instead, so each worker gets its own backing array.
func (r *Region) Bytes() []byte {
	return r.buf
}

// Copy returns an independent copy of the backing buffer, for
// FallbackMode workers that cannot see the original's memory.
func (r *Region) Copy() []byte {
	out := make([]byte, len(r.buf))
	copy(out, r.buf)
	return out
}

// MarkReady publishes the region's initialization to attaching workers
// using a release store; workers must Ready() (an acquire load) before
// reading header, policy, or assumption sections (spec.md §5).
func (r *Region) MarkReady() {
	r.ready.Store(true)
}

// Ready reports whether the region has been published by MarkReady.
func (r *Region) Ready() bool {
	return r.ready.Load()
}
