// Package events implements insert-only persistence for AI inference
// output (the AIEvent type named in the spec but left unimplemented by the
// distillation).
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AIEvent is a best-effort, insert-only record of one inference output.
// No update or delete method exists on this type anywhere in the package:
// insert-only is enforced at the API surface, not by a database trigger.
type AIEvent struct {
	ID         uuid.UUID
	CameraID   string
	ModelID    string
	Timestamp  time.Time
	FrameID    *int64
	Detections json.RawMessage
	Confidence *float64
	Metadata   json.RawMessage
	CreatedAt  time.Time
}
