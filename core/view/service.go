package view

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/longlg88/wallyhub/core"
)

// MaxSessionDuration is the write-time sanity cap on tracked view sessions.
const MaxSessionDuration = time.Hour

var nowFunc = time.Now // mockable

// Service is the view-tracking aggregator. It appends to the view-record
// log and derives per-photo and per-teacher read models on demand.
type Service struct {
	db  core.DocumentStore
	log core.Logger
}

func NewService(db core.DocumentStore, log core.Logger) *Service {
	return &Service{db: db, log: log}
}

// Track appends one view record. Repeat views by the same teacher on the
// same photo each add a record; that is what keeps TotalViews distinct from
// UniqueViewers.
func (svc *Service) Track(ctx context.Context, tv TrackView) error {
	if err := tv.Validate(); err != nil {
		return err
	}
	r := ViewRecord{
		ID:        uuid.NewString(),
		PhotoID:   tv.PhotoID,
		TeacherID: tv.TeacherID,
		BoardID:   tv.BoardID,
		ViewedAt:  nowFunc().UTC(),
	}
	if tv.SessionDuration != nil {
		r.SessionDuration = *tv.SessionDuration
	}
	err := svc.db.Set(ctx, core.ViewRecordCollection, r.ID, recordToDoc(r))
	return errors.Wrap(err, "appending view record")
}

// Status folds the record log for one photo. A photo with no records yields
// the zero-value (unviewed) status, not an error.
func (svc *Service) Status(ctx context.Context, photoID string) (PhotoViewStatus, error) {
	docs, err := svc.db.Query(ctx, core.ViewRecordCollection, core.Query{
		Filters: []core.Filter{core.Eq("photoId", photoID)},
		OrderBy: []core.Order{{Field: "viewedAt", Desc: true}},
	})
	if err != nil {
		return PhotoViewStatus{}, errors.Wrap(err, "querying view records")
	}
	records, err := decodeRecords(docs)
	if err != nil {
		return PhotoViewStatus{}, err
	}
	return foldStatus(photoID, records), nil
}

// Statuses resolves many photos at once. Ids are grouped into IN-query
// batches, the batches run concurrently, and results are merged by photo id;
// ids with no records come back as zero-value statuses.
func (svc *Service) Statuses(ctx context.Context, photoIDs []string) (map[string]PhotoViewStatus, error) {
	byPhoto := make(map[string][]ViewRecord, len(photoIDs))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, batch := range batchIDs(photoIDs, core.InOpLimit) {
		wg.Add(1)
		go func(ids []string) {
			defer wg.Done()
			docs, err := svc.db.Query(ctx, core.ViewRecordCollection, core.Query{
				Filters: []core.Filter{core.In("photoId", ids)},
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = errors.Wrap(err, "querying view records")
				}
				return
			}
			for _, doc := range docs {
				r, err := docToRecord(doc)
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					return
				}
				byPhoto[r.PhotoID] = append(byPhoto[r.PhotoID], r)
			}
		}(batch)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	statuses := make(map[string]PhotoViewStatus, len(photoIDs))
	for _, id := range photoIDs {
		statuses[id] = foldStatus(id, byPhoto[id])
	}
	return statuses, nil
}

// BoardStatuses derives statuses for every photo viewed on a board from a
// single board-scoped query, avoiding the per-batch fan-out of Statuses.
func (svc *Service) BoardStatuses(ctx context.Context, boardID string) (map[string]PhotoViewStatus, error) {
	docs, err := svc.db.Query(ctx, core.ViewRecordCollection, core.Query{
		Filters: []core.Filter{core.Eq("boardId", boardID)},
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying view records")
	}
	records, err := decodeRecords(docs)
	if err != nil {
		return nil, err
	}

	byPhoto := make(map[string][]ViewRecord)
	for _, r := range records {
		byPhoto[r.PhotoID] = append(byPhoto[r.PhotoID], r)
	}
	statuses := make(map[string]PhotoViewStatus, len(byPhoto))
	for id, recs := range byPhoto {
		statuses[id] = foldStatus(id, recs)
	}
	return statuses, nil
}

// TeacherStats folds a teacher's all-time and current-local-day records.
func (svc *Service) TeacherStats(ctx context.Context, teacherID string) (TeacherViewStats, error) {
	allTime, err := svc.teacherRecords(ctx, teacherID, nil)
	if err != nil {
		return TeacherViewStats{}, err
	}

	dayStart := startOfDay(nowFunc())
	today, err := svc.teacherRecords(ctx, teacherID, []core.Filter{
		core.Gte("viewedAt", dayStart),
		core.Lt("viewedAt", dayStart.Add(24*time.Hour)),
	})
	if err != nil {
		return TeacherViewStats{}, err
	}

	stats := TeacherViewStats{
		TeacherID:         teacherID,
		TotalPhotosViewed: distinctPhotos(allTime),
		TodayPhotosViewed: distinctPhotos(today),
		BoardsActivity:    make(map[string]int),
	}

	var durSum float64
	var durCount int
	for _, r := range allTime {
		stats.BoardsActivity[r.BoardID]++ // raw event count, not distinct photos
		if r.SessionDuration > 0 {
			durSum += r.SessionDuration
			durCount++
		}
	}
	if durCount > 0 {
		stats.AverageViewTime = durSum / float64(durCount)
	}
	return stats, nil
}

// MarkViewed appends one record per photo (duration 0 = not tracked) in a
// single atomic batch: either every record is written or none are.
func (svc *Service) MarkViewed(ctx context.Context, photoIDs []string, teacherID, boardID string) error {
	if teacherID == "" || boardID == "" {
		return core.NewValidationError(nil, core.FieldError{
			Field: "teacher_id",
			Error: "teacher and board are required",
		})
	}
	now := nowFunc().UTC()
	writes := make([]core.Write, 0, len(photoIDs))
	for _, id := range photoIDs {
		if core.CleanString(id) == "" {
			return core.NewValidationError(nil, core.FieldError{
				Field: "photo_ids",
				Error: "photo ids must be non-empty",
			})
		}
		r := ViewRecord{
			ID:        uuid.NewString(),
			PhotoID:   id,
			TeacherID: teacherID,
			BoardID:   boardID,
			ViewedAt:  now,
		}
		writes = append(writes, core.Write{
			Collection: core.ViewRecordCollection,
			ID:         r.ID,
			Fields:     recordToDoc(r),
		})
	}
	if len(writes) == 0 {
		return nil
	}
	err := svc.db.BatchWrite(ctx, writes)
	return errors.Wrap(err, "batch-writing view records")
}

func (svc *Service) teacherRecords(ctx context.Context, teacherID string, extra []core.Filter) ([]ViewRecord, error) {
	filters := append([]core.Filter{core.Eq("teacherId", teacherID)}, extra...)
	docs, err := svc.db.Query(ctx, core.ViewRecordCollection, core.Query{Filters: filters})
	if err != nil {
		return nil, errors.Wrap(err, "querying view records")
	}
	return decodeRecords(docs)
}

// foldStatus computes the read model from one photo's records. Records may
// arrive in any order; the fold tracks the latest timestamp itself.
func foldStatus(photoID string, records []ViewRecord) PhotoViewStatus {
	status := PhotoViewStatus{PhotoID: photoID}
	viewers := make(map[string]struct{})
	for _, r := range records {
		status.TotalViews++
		viewers[r.TeacherID] = struct{}{}
		if r.ViewedAt.After(status.LastViewedAt) {
			status.LastViewedAt = r.ViewedAt
			status.LastViewedBy = r.TeacherID
		}
	}
	status.UniqueViewers = len(viewers)
	status.IsViewed = status.TotalViews > 0
	return status
}

func distinctPhotos(records []ViewRecord) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.PhotoID] = struct{}{}
	}
	return len(seen)
}

func decodeRecords(docs []core.Document) ([]ViewRecord, error) {
	records := make([]ViewRecord, 0, len(docs))
	for _, doc := range docs {
		r, err := docToRecord(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func batchIDs(ids []string, size int) [][]string {
	var batches [][]string
	for len(ids) > size {
		batches = append(batches, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		batches = append(batches, ids)
	}
	return batches
}

// startOfDay truncates t to midnight in its own location (local calendar day).
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
