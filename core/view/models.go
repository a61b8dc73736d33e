package view

import (
	"time"

	"github.com/longlg88/wallyhub/core"
)

// ViewRecord is one immutable fact: teacher X viewed photo Y at time T.
// Records are append-only; seen/unseen state and all statistics are folded
// from them on read, never stored as ground truth.
type ViewRecord struct {
	ID              string    `json:"id"`
	PhotoID         string    `json:"photo_id"`
	TeacherID       string    `json:"teacher_id"`
	BoardID         string    `json:"board_id"`
	ViewedAt        time.Time `json:"viewed_at"`        // UTC
	SessionDuration float64   `json:"session_duration"` // seconds; 0 = unknown/not tracked
}

// PhotoViewStatus is the per-photo read model derived from the record log.
type PhotoViewStatus struct {
	PhotoID       string    `json:"photo_id"`
	TotalViews    int       `json:"total_views"`
	UniqueViewers int       `json:"unique_viewers"`
	LastViewedAt  time.Time `json:"last_viewed_at"`
	LastViewedBy  string    `json:"last_viewed_by"`
	IsViewed      bool      `json:"is_viewed"`
}

// TeacherViewStats aggregates a teacher's reviewing activity. The photo
// counts are distinct-photo cardinalities while BoardsActivity tallies raw
// view events per board; the dashboard heat display depends on the raw
// counts, so the two cardinalities stay distinct.
type TeacherViewStats struct {
	TeacherID         string         `json:"teacher_id"`
	TotalPhotosViewed int            `json:"total_photos_viewed"`
	TodayPhotosViewed int            `json:"today_photos_viewed"`
	AverageViewTime   float64        `json:"average_view_time"` // seconds
	BoardsActivity    map[string]int `json:"boards_activity"`
}

// TrackView contains information needed to append one view record.
type TrackView struct {
	PhotoID   string `json:"photo_id" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
	BoardID   string `json:"board_id" validate:"required"`
	// SessionDuration is optional; when present it must be within
	// [0, MaxSessionDuration] seconds.
	SessionDuration *float64 `json:"session_duration"`
}

func (tv *TrackView) Validate() error {
	tv.PhotoID = core.CleanString(tv.PhotoID)
	tv.TeacherID = core.CleanString(tv.TeacherID)
	tv.BoardID = core.CleanString(tv.BoardID)
	if err := core.Validate.Struct(tv); err != nil {
		return err
	}
	if tv.SessionDuration != nil {
		if d := *tv.SessionDuration; d < 0 || d > MaxSessionDuration.Seconds() {
			return core.NewValidationError(nil, core.FieldError{
				Field: "session_duration",
				Error: "session duration must be between 0 and 3600 seconds",
			})
		}
	}
	return nil
}

func recordToDoc(r ViewRecord) core.Document {
	return core.Document{
		"photoId":         r.PhotoID,
		"teacherId":       r.TeacherID,
		"boardId":         r.BoardID,
		"viewedAt":        r.ViewedAt,
		"sessionDuration": r.SessionDuration,
	}
}

func docToRecord(doc core.Document) (ViewRecord, error) {
	var r ViewRecord
	var err error
	if r.ID, err = doc.String(core.DocID); err != nil {
		return ViewRecord{}, err
	}
	if r.PhotoID, err = doc.String("photoId"); err != nil {
		return ViewRecord{}, err
	}
	if r.TeacherID, err = doc.String("teacherId"); err != nil {
		return ViewRecord{}, err
	}
	if r.BoardID, err = doc.String("boardId"); err != nil {
		return ViewRecord{}, err
	}
	if r.ViewedAt, err = doc.Time("viewedAt"); err != nil {
		return ViewRecord{}, err
	}
	if r.SessionDuration, err = doc.Float("sessionDuration"); err != nil {
		return ViewRecord{}, err
	}
	return r, nil
}
