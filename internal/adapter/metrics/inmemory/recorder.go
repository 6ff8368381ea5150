package inmemory

import (
	"sync"
)

type Snapshot struct {
	ReplayTicks      uint64            `json:"replay_ticks"`
	PlaybacksEnded   uint64            `json:"playbacks_ended"`
	MalformedEvents  uint64            `json:"malformed_events"`
	MalformedByType  map[string]uint64 `json:"malformed_by_type"`
	PagesFetched     uint64            `json:"pages_fetched"`
	RecordsFetched   uint64            `json:"records_fetched"`
	DrainsCompleted  uint64            `json:"drains_completed"`
	DrainsAbsent     uint64            `json:"drains_absent"`
	DrainFailures    uint64            `json:"drain_failures"`
	FailuresByReason map[string]uint64 `json:"failures_by_reason"`
	TicksByRoom      map[string]uint64 `json:"ticks_by_room"`
}

// Recorder counts replay and pagination activity for the KPI endpoint.
type Recorder struct {
	mu sync.Mutex

	ticks     uint64
	ended     uint64
	malformed uint64
	byType    map[string]uint64
	byRoom    map[string]uint64
	pages     uint64
	records   uint64
	drains    uint64
	absent    uint64
	failures  uint64
	byReason  map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byType:   map[string]uint64{},
		byRoom:   map[string]uint64{},
		byReason: map[string]uint64{},
	}
}

func (r *Recorder) RecordTick(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks++
	r.byRoom[roomID]++
}

func (r *Recorder) RecordMalformedEvent(_ string, eventType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.malformed++
	r.byType[eventType]++
}

func (r *Recorder) RecordPlaybackEnded(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended++
}

func (r *Recorder) RecordPage(_ string, records int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages++
	r.records += uint64(max(records, 0))
}

func (r *Recorder) RecordDrain(_ string, _ int, found bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if found {
		r.drains++
		return
	}
	r.absent++
}

func (r *Recorder) RecordDrainFailure(_ string, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
	r.byReason[reason]++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Snapshot{
		ReplayTicks:      r.ticks,
		PlaybacksEnded:   r.ended,
		MalformedEvents:  r.malformed,
		MalformedByType:  copyCounts(r.byType),
		PagesFetched:     r.pages,
		RecordsFetched:   r.records,
		DrainsCompleted:  r.drains,
		DrainsAbsent:     r.absent,
		DrainFailures:    r.failures,
		FailuresByReason: copyCounts(r.byReason),
		TicksByRoom:      copyCounts(r.byRoom),
	}
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}

func copyCounts(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
