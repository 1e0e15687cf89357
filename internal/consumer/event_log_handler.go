package consumer

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ execer = (*pgxpool.Pool)(nil)

// EventLogHandler appends consumed events to the event_log audit table.
// Redelivered records are ignored by their (topic, partition, offset) key.
type EventLogHandler struct {
	db execer
}

// NewEventLogHandler constructs a handler backed by the provided pool.
func NewEventLogHandler(pool *pgxpool.Pool) *EventLogHandler {
	return &EventLogHandler{db: pool}
}

// Handle stores the event payload.
func (h *EventLogHandler) Handle(ctx context.Context, msg Message) error {
	received := msg.Timestamp
	if received.IsZero() {
		received = time.Now().UTC()
	}
	_, err := h.db.Exec(ctx,
		`INSERT INTO event_log (topic, partition, "offset", event_type, user_id, schema_id, payload, received_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
         ON CONFLICT (topic, partition, "offset") DO NOTHING`,
		msg.Topic,
		msg.Partition,
		msg.Offset,
		msg.EventType,
		msg.UserID,
		msg.SchemaID,
		[]byte(msg.Payload),
		received,
	)
	return err
}
