package core

import (
	"encoding/json"
	"fmt"
)

// ParseNotes decodes a serialized note collection, backfilling defaults
// for fields missing from older shapes via MigrateNote. Both the
// persisted state file and user-supplied import snapshots go through
// this path.
func ParseNotes(data []byte, nowMillis int64) ([]Note, error) {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSnapshot, err)
	}
	notes := make([]Note, 0, len(raw))
	for _, r := range raw {
		notes = append(notes, MigrateNote(r, nowMillis))
	}
	return notes, nil
}
