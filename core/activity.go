package core

import (
	"context"
	"time"
)

// Activity event kinds.
const (
	ActivityStudentRegistered = "student.registered"
	ActivityStudentJoined     = "student.joined"
	ActivityStudentLoggedIn   = "student.login"
	ActivityPhotoUploaded     = "photo.uploaded"
)

// ActivityEvent is one human-readable entry of the recent-activity feed.
type ActivityEvent struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	ActorID     string    `json:"actor_id"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"` // UTC
}

// ActivityLog records domain events. Append is fire-and-forget: failures are
// logged by the implementation and never surface to the calling operation.
type ActivityLog interface {
	Append(ctx context.Context, kind, actorID, description string)
}
