package board

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/longlg88/wallyhub/core"
)

var ErrNotFound = core.NewError(core.KindBoardNotFound, "board not found")

type Service struct {
	db  core.DocumentStore
	log core.Logger
}

func NewService(db core.DocumentStore, log core.Logger) *Service {
	return &Service{db: db, log: log}
}

func (svc *Service) Create(ctx context.Context, nb NewBoard) (Board, error) {
	if err := nb.Validate(); err != nil {
		return Board{}, err
	}
	b := Board{
		ID:        uuid.NewString(),
		Title:     nb.Title,
		OwnerID:   nb.OwnerID,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := svc.db.Set(ctx, core.BoardCollection, b.ID, boardToDoc(b)); err != nil {
		return Board{}, errors.Wrap(err, "creating board")
	}
	return b, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Board, error) {
	doc, err := svc.db.Get(ctx, core.BoardCollection, id)
	if err != nil {
		if errors.Is(err, core.ErrDocNotFound) {
			return Board{}, ErrNotFound
		}
		return Board{}, errors.Wrap(err, "getting board")
	}
	return docToBoard(id, doc)
}

func (svc *Service) SetActive(ctx context.Context, id string, active bool) error {
	if _, err := svc.Get(ctx, id); err != nil {
		return err
	}
	err := svc.db.Update(ctx, core.BoardCollection, id, core.Document{"isActive": active})
	return errors.Wrap(err, "updating board")
}

func (svc *Service) ByOwner(ctx context.Context, ownerID string) ([]Board, error) {
	docs, err := svc.db.Query(ctx, core.BoardCollection, core.Query{
		Filters: []core.Filter{core.Eq("ownerId", ownerID)},
		OrderBy: []core.Order{{Field: "createdAt", Desc: true}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying boards")
	}
	boards := make([]Board, 0, len(docs))
	for _, doc := range docs {
		id, err := doc.String(core.DocID)
		if err != nil {
			return nil, err
		}
		b, err := docToBoard(id, doc)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, nil
}
