package photo

import (
	"time"

	"github.com/longlg88/wallyhub/core"
)

// Photo is an immutable upload fact. It is stored as a child record of the
// owning student, scoped by board; only IsVisible ever changes after upload.
// OwnerExternalID is the student's human identifier within the board, not
// the system id.
type Photo struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	OwnerExternalID string    `json:"owner_external_id"`
	BoardID         string    `json:"board_id"`
	BlobURL         string    `json:"blob_url"`
	UploadedAt      time.Time `json:"uploaded_at"` // UTC
	IsVisible       bool      `json:"is_visible"`

	blobPath   string // retained for deletion; not exposed
	collection string // subcollection path the record lives in
}

// NewPhoto contains information needed to upload a photo.
type NewPhoto struct {
	Title             string `json:"title"`
	StudentExternalID string `json:"student_external_id" validate:"required"`
	BoardID           string `json:"board_id" validate:"required"`
	ContentType       string `json:"content_type"`
	Data              []byte `json:"-" validate:"required"`
}

func (np *NewPhoto) Validate() error {
	np.Title = core.CleanString(np.Title)
	np.StudentExternalID = core.CleanString(np.StudentExternalID, true /* lower */)
	np.BoardID = core.CleanString(np.BoardID)
	if np.ContentType == "" {
		np.ContentType = "image/jpeg"
	}
	return core.Validate.Struct(np)
}

func photoToDoc(p Photo) core.Document {
	return core.Document{
		"title":           p.Title,
		"ownerExternalId": p.OwnerExternalID,
		"boardId":         p.BoardID,
		"blobUrl":         p.BlobURL,
		"blobPath":        p.blobPath,
		"uploadedAt":      p.UploadedAt,
		"isVisible":       p.IsVisible,
	}
}

func docToPhoto(id string, doc core.Document) (Photo, error) {
	p := Photo{ID: id}
	var err error
	if p.Title, err = doc.String("title"); err != nil {
		return Photo{}, err
	}
	if p.OwnerExternalID, err = doc.String("ownerExternalId"); err != nil {
		return Photo{}, err
	}
	if p.BoardID, err = doc.String("boardId"); err != nil {
		return Photo{}, err
	}
	if p.BlobURL, err = doc.String("blobUrl"); err != nil {
		return Photo{}, err
	}
	if p.blobPath, err = doc.String("blobPath"); err != nil {
		return Photo{}, err
	}
	if p.UploadedAt, err = doc.Time("uploadedAt"); err != nil {
		return Photo{}, err
	}
	if p.IsVisible, err = doc.Bool("isVisible"); err != nil {
		return Photo{}, err
	}
	if p.collection, err = doc.String(core.DocCollection); err != nil {
		return Photo{}, err
	}
	return p, nil
}
