package board

import (
	"time"

	"github.com/longlg88/wallyhub/core"
)

// Board is the membership/ownership scope a teacher opens for a class.
// Students join exactly one board at a time; photos and view records are
// scoped to it.
type Board struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"owner_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewBoard contains information needed to create a new Board.
type NewBoard struct {
	Title   string `json:"title" validate:"required"`
	OwnerID string `json:"owner_id" validate:"required"`
}

func (nb *NewBoard) Validate() error {
	nb.Title = core.CleanString(nb.Title)
	nb.OwnerID = core.CleanString(nb.OwnerID)
	return core.Validate.Struct(nb)
}

func boardToDoc(b Board) core.Document {
	return core.Document{
		"title":     b.Title,
		"ownerId":   b.OwnerID,
		"isActive":  b.IsActive,
		"createdAt": b.CreatedAt,
	}
}

func docToBoard(id string, doc core.Document) (Board, error) {
	b := Board{ID: id}
	var err error
	if b.Title, err = doc.String("title"); err != nil {
		return Board{}, err
	}
	if b.OwnerID, err = doc.String("ownerId"); err != nil {
		return Board{}, err
	}
	if b.IsActive, err = doc.Bool("isActive"); err != nil {
		return Board{}, err
	}
	if b.CreatedAt, err = doc.Time("createdAt"); err != nil {
		return Board{}, err
	}
	return b, nil
}
