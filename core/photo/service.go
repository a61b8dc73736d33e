package photo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/longlg88/wallyhub/core"
	"github.com/longlg88/wallyhub/core/student"
)

var (
	// errors
	ErrNotFound     = core.NewError(core.KindPhotoNotFound, "photo not found")
	ErrNotOwner     = core.NewError(core.KindInsufficientPermissions, "photo belongs to another student")
	ErrUploadFailed = core.NewError(core.KindPhotoUploadFailed, "photo upload failed")

	// an empty boardId is the "unassigned" sentinel, never a board reference
	errNoBoardID = core.NewError(core.KindInvalidInput, "a board id is required")
)

type (
	// StudentDirectory resolves board membership for uploads and listings.
	// *student.Service satisfies it.
	StudentDirectory interface {
		GetByExternalID(ctx context.Context, externalID, boardID string) (student.Student, error)
		ByBoard(ctx context.Context, boardID string) ([]student.Student, error)
	}

	// Service is the photo provenance store: it binds uploaded photographs
	// to the student and board that produced them and owns their lifecycle.
	Service struct {
		db       core.DocumentStore
		blobs    core.BlobStore
		students StudentDirectory
		activity core.ActivityLog
		log      core.Logger
		maxBytes int64
	}

	// BulkResult reports partial-failure bulk deletions.
	BulkResult struct {
		Deleted int `json:"deleted"`
		Failed  int `json:"failed"`
	}
)

func NewService(db core.DocumentStore, blobs core.BlobStore, students StudentDirectory, activity core.ActivityLog, log core.Logger, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &Service{db: db, blobs: blobs, students: students, activity: activity, log: log, maxBytes: maxBytes}
}

// Upload stores the photo bytes in the blob store, then the metadata as a
// child record of the owning student. There is no cross-store transaction:
// if the metadata write fails after a successful blob write, the blob is
// deleted best-effort and the caller sees an upload failure.
func (svc *Service) Upload(ctx context.Context, np NewPhoto) (Photo, error) {
	if err := np.Validate(); err != nil {
		return Photo{}, err
	}
	if int64(len(np.Data)) > svc.maxBytes {
		return Photo{}, core.NewValidationError(nil, core.FieldError{
			Field: "data",
			Error: fmt.Sprintf("photo exceeds the %d byte limit", svc.maxBytes),
		})
	}

	owner, err := svc.students.GetByExternalID(ctx, np.StudentExternalID, np.BoardID)
	if err != nil {
		return Photo{}, err
	}

	p := Photo{
		ID:              uuid.NewString(),
		Title:           np.Title,
		OwnerExternalID: owner.ExternalID,
		BoardID:         np.BoardID,
		UploadedAt:      time.Now().UTC(),
		IsVisible:       true,
	}
	p.blobPath = fmt.Sprintf("boards/%s/%s", p.BoardID, p.ID)
	p.collection = core.PhotoCollection(owner.ID)

	url, err := svc.blobs.Put(ctx, p.blobPath, np.Data, np.ContentType)
	if err != nil {
		return Photo{}, core.WrapError(core.KindPhotoUploadFailed, err, "writing photo blob")
	}
	p.BlobURL = url

	if err := svc.db.Set(ctx, p.collection, p.ID, photoToDoc(p)); err != nil {
		// compensating action; its own failure is logged, not surfaced
		if derr := svc.blobs.Delete(ctx, p.blobPath); derr != nil {
			svc.log.Error("orphaned blob left behind", p.blobPath, derr)
		}
		return Photo{}, core.WrapError(core.KindPhotoUploadFailed, err, "writing photo metadata")
	}

	svc.activity.Append(ctx, core.ActivityPhotoUploaded, owner.ID,
		fmt.Sprintf("%s uploaded %q to board %s", owner.ExternalID, p.Title, p.BoardID))
	return p, nil
}

// ForBoard lists a board's visible photos, newest first. The read fans out:
// one query for the roster, one per student for their photo children.
func (svc *Service) ForBoard(ctx context.Context, boardID string) ([]Photo, error) {
	if boardID == "" {
		return nil, errNoBoardID
	}
	roster, err := svc.students.ByBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	var photos []Photo
	for _, s := range roster {
		children, err := svc.listChildren(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range children {
			if p.IsVisible {
				photos = append(photos, p)
			}
		}
	}
	sort.SliceStable(photos, func(i, j int) bool {
		return photos[i].UploadedAt.After(photos[j].UploadedAt)
	})
	return photos, nil
}

// ForStudent lists a student's own photos, hidden ones included.
func (svc *Service) ForStudent(ctx context.Context, externalID, boardID string) ([]Photo, error) {
	s, err := svc.students.GetByExternalID(ctx, externalID, boardID)
	if err != nil {
		return nil, err
	}
	return svc.listChildren(ctx, s.ID)
}

// Get finds a photo by id regardless of which student's subcollection it
// lives in.
func (svc *Service) Get(ctx context.Context, photoID string) (Photo, error) {
	docs, err := svc.db.QueryGroup(ctx, core.PhotoCollectionLeaf, core.Query{
		Filters: []core.Filter{core.Eq(core.DocID, photoID)},
		Limit:   1,
	})
	if err != nil {
		return Photo{}, errors.Wrap(err, "querying photos")
	}
	if len(docs) == 0 {
		return Photo{}, ErrNotFound
	}
	return docToPhoto(photoID, docs[0])
}

// Delete removes a photo on behalf of its owning student.
func (svc *Service) Delete(ctx context.Context, photoID, requesterExternalID string) error {
	p, err := svc.Get(ctx, photoID)
	if err != nil {
		return err
	}
	if p.OwnerExternalID != core.CleanString(requesterExternalID, true /* lower */) {
		return ErrNotOwner
	}
	return svc.remove(ctx, p)
}

// DeleteByModerator removes a photo without the ownership check, for
// teacher/moderator initiated deletions.
func (svc *Service) DeleteByModerator(ctx context.Context, photoID string) error {
	p, err := svc.Get(ctx, photoID)
	if err != nil {
		return err
	}
	return svc.remove(ctx, p)
}

// DeleteSelected attempts each photo independently and reports both counts.
func (svc *Service) DeleteSelected(ctx context.Context, photoIDs []string, requesterExternalID string) BulkResult {
	var res BulkResult
	for _, id := range photoIDs {
		if err := svc.Delete(ctx, id, requesterExternalID); err != nil {
			svc.log.Warn("bulk delete item failed", id, err)
			res.Failed++
			continue
		}
		res.Deleted++
	}
	return res
}

// UpdateVisibility toggles the only mutable photo field.
func (svc *Service) UpdateVisibility(ctx context.Context, photoID string, visible bool, requesterExternalID string) error {
	p, err := svc.Get(ctx, photoID)
	if err != nil {
		return err
	}
	if p.OwnerExternalID != core.CleanString(requesterExternalID, true /* lower */) {
		return ErrNotOwner
	}
	err = svc.db.Update(ctx, p.collection, p.ID, core.Document{"isVisible": visible})
	return errors.Wrap(err, "updating photo")
}

// remove deletes blob then metadata, tolerating an already-gone blob.
func (svc *Service) remove(ctx context.Context, p Photo) error {
	if p.blobPath != "" {
		if err := svc.blobs.Delete(ctx, p.blobPath); err != nil {
			svc.log.Warn("deleting photo blob", p.blobPath, err)
		}
	}
	err := svc.db.Delete(ctx, p.collection, p.ID)
	return errors.Wrap(err, "deleting photo")
}

func (svc *Service) listChildren(ctx context.Context, studentID string) ([]Photo, error) {
	docs, err := svc.db.Query(ctx, core.PhotoCollection(studentID), core.Query{
		OrderBy: []core.Order{{Field: "uploadedAt", Desc: true}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying photos")
	}
	photos := make([]Photo, 0, len(docs))
	for _, doc := range docs {
		id, err := doc.String(core.DocID)
		if err != nil {
			return nil, err
		}
		p, err := docToPhoto(id, doc)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, nil
}
