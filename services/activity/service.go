// Package activitysvc records domain events for the recent-activity feed.
// Writes are fire-and-forget; dashboards only ever read.
package activitysvc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/longlg88/wallyhub/core"
)

type Service struct {
	db  core.DocumentStore
	log core.Logger
}

var _ core.ActivityLog = (*Service)(nil) // interface compliance check

func NewService(db core.DocumentStore, log core.Logger) *Service {
	return &Service{db: db, log: log}
}

// Append records one event. Failures are logged and swallowed: an activity
// write must never fail the operation that produced the event.
func (svc *Service) Append(ctx context.Context, kind, actorID, description string) {
	ev := core.ActivityEvent{
		ID:          uuid.NewString(),
		Kind:        kind,
		ActorID:     actorID,
		Description: description,
		Timestamp:   time.Now().UTC(),
	}
	doc := core.Document{
		"kind":        ev.Kind,
		"actorId":     ev.ActorID,
		"description": ev.Description,
		"timestamp":   ev.Timestamp,
	}
	if err := svc.db.Set(ctx, core.ActivityCollection, ev.ID, doc); err != nil {
		svc.log.Warn("appending activity event", ev.Kind, err)
	}
}

// Recent returns the latest n events, newest first.
func (svc *Service) Recent(ctx context.Context, n int) ([]core.ActivityEvent, error) {
	if n <= 0 {
		n = 20
	}
	docs, err := svc.db.Query(ctx, core.ActivityCollection, core.Query{
		OrderBy: []core.Order{{Field: "timestamp", Desc: true}},
		Limit:   n,
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying activity")
	}
	events := make([]core.ActivityEvent, 0, len(docs))
	for _, doc := range docs {
		ev := core.ActivityEvent{}
		if ev.ID, err = doc.String(core.DocID); err != nil {
			return nil, err
		}
		if ev.Kind, err = doc.String("kind"); err != nil {
			return nil, err
		}
		if ev.ActorID, err = doc.String("actorId"); err != nil {
			return nil, err
		}
		if ev.Description, err = doc.String("description"); err != nil {
			return nil, err
		}
		if ev.Timestamp, err = doc.Time("timestamp"); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
