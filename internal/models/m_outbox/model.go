package m_outbox

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Model builds mutations for outbox_events. Events are append-only apart from
// the relay bookkeeping columns.
type Model struct{}

func NewModel() *Model {
	return &Model{}
}

// InsertMut appends an event. created_at is stamped with the commit timestamp,
// so relay order follows commit order across writers.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.InsertMap(TableName, map[string]interface{}{
		EventID:      data.EventID,
		EventType:    data.EventType,
		AggregateID:  data.AggregateID,
		Payload:      data.Payload,
		Status:       data.Status,
		CreatedAt:    spanner.CommitTimestamp,
		ProcessedAt:  data.ProcessedAt,
		RetryCount:   data.RetryCount,
		ErrorMessage: data.ErrorMessage,
	})
}

// CompletedMut records a successful publish and clears the last error.
func (m *Model) CompletedMut(eventID, status string, at time.Time) *spanner.Mutation {
	return spanner.UpdateMap(TableName, map[string]interface{}{
		EventID:      eventID,
		Status:       status,
		ProcessedAt:  at,
		ErrorMessage: spanner.NullString{},
	})
}

// AttemptMut records a failed publish attempt.
func (m *Model) AttemptMut(eventID, status string, retries int64, errMsg string) *spanner.Mutation {
	return spanner.UpdateMap(TableName, map[string]interface{}{
		EventID:      eventID,
		Status:       status,
		RetryCount:   retries,
		ErrorMessage: spanner.NullString{StringVal: errMsg, Valid: errMsg != ""},
	})
}
