package ports

type ReplayMetrics interface {
	RecordTick(roomID string)
	RecordMalformedEvent(roomID, eventType string)
	RecordPlaybackEnded(roomID string)
}

type PaginationMetrics interface {
	RecordPage(objectID string, records int)
	RecordDrain(objectID string, records int, found bool)
	RecordDrainFailure(objectID, reason string)
}
