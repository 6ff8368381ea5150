// Package fanout forwards metric events to several recorders.
package fanout

import "deceit/internal/app/ports"

type Replay []ports.ReplayMetrics

func (f Replay) RecordTick(roomID string) {
	for _, m := range f {
		m.RecordTick(roomID)
	}
}

func (f Replay) RecordMalformedEvent(roomID, eventType string) {
	for _, m := range f {
		m.RecordMalformedEvent(roomID, eventType)
	}
}

func (f Replay) RecordPlaybackEnded(roomID string) {
	for _, m := range f {
		m.RecordPlaybackEnded(roomID)
	}
}

type Pagination []ports.PaginationMetrics

func (f Pagination) RecordPage(objectID string, records int) {
	for _, m := range f {
		m.RecordPage(objectID, records)
	}
}

func (f Pagination) RecordDrain(objectID string, records int, found bool) {
	for _, m := range f {
		m.RecordDrain(objectID, records, found)
	}
}

func (f Pagination) RecordDrainFailure(objectID, reason string) {
	for _, m := range f {
		m.RecordDrainFailure(objectID, reason)
	}
}
