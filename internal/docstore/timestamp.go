package docstore

import (
	"encoding/json"
	"fmt"
	"time"
)

// Millis is a timestamp stored as integer Unix milliseconds. Documents use it
// for createdAt/updatedAt/joinedAt so every implementation orders timestamps
// numerically instead of relying on string formats.
type Millis struct {
	time.Time
}

// At wraps a time as a document timestamp, truncated to millisecond
// precision so a round-trip through the store compares equal.
func At(t time.Time) Millis {
	return Millis{t.Truncate(time.Millisecond).UTC()}
}

func (m Millis) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.UnixMilli())
}

func (m *Millis) UnmarshalJSON(b []byte) error {
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("timestamp must be unix milliseconds: %w", err)
	}
	m.Time = time.UnixMilli(n).UTC()
	return nil
}
