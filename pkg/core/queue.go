package core

// OpKind is the kind of a pending remote operation.
type OpKind string

const (
	OpUpsert OpKind = "upsert"
	OpDelete OpKind = "delete"
)

// QueueEntry is a remote operation that could not be completed and is
// waiting to be replayed. Payload carries the full note for upserts and
// is nil for deletes. At most one live entry exists per (NoteID, Kind)
// pair; a newer entry for the same pair supersedes the old one.
type QueueEntry struct {
	Kind      OpKind `json:"kind"`
	NoteID    string `json:"noteId"`
	Payload   *Note  `json:"payload,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
