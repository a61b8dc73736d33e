package student

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/longlg88/wallyhub/core"
	"github.com/longlg88/wallyhub/core/board"
)

var (
	// errors
	ErrNotFound    = core.NewError(core.KindStudentNotFound, "student not found")
	ErrIDExists    = core.NewError(core.KindDuplicateIdentifier, "a student with this id already exists")
	ErrNotInBoard  = core.NewError(core.KindStudentNotInBoard, "student is not a member of this board")
	ErrLoginFailed = core.NewError(core.KindAuthenticationFailed, "authentication failed")
	errBoardClosed = core.NewError(core.KindBoardNotActive, "board is not active")

	// an empty boardId is the "unassigned" sentinel, never a board reference
	errNoBoardID = core.NewError(core.KindInvalidInput, "a board id is required")
)

type (
	// BoardDirectory resolves boards for join-time validation.
	// *board.Service satisfies it.
	BoardDirectory interface {
		Get(ctx context.Context, id string) (board.Board, error)
	}

	// Service is the membership manager: it owns student registration,
	// board joins with per-board id uniqueness, credential verification and
	// board moves.
	Service struct {
		db       core.DocumentStore
		boards   BoardDirectory
		activity core.ActivityLog
		log      core.Logger
	}
)

func NewService(db core.DocumentStore, boards BoardDirectory, activity core.ActivityLog, log core.Logger) *Service {
	return &Service{db: db, boards: boards, activity: activity, log: log}
}

// Register creates a self-service account not yet assigned to any board.
// The external id must be globally unused at registration time; this is a
// stricter check than the per-board uniqueness applied on joins.
func (svc *Service) Register(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}
	taken, err := svc.externalIDTaken(ctx, ns.ExternalID, "")
	if err != nil {
		return Student{}, err
	}
	if taken {
		return Student{}, ErrIDExists
	}

	now := time.Now().UTC()
	s := Student{
		ID:          uuid.NewString(),
		DisplayName: ns.Name,
		ExternalID:  ns.ExternalID,
		BoardID:     "",
		CreatedAt:   now,
	}
	if err := s.SetPassword(ns.Password); err != nil {
		return Student{}, errors.Wrap(err, "hashing password")
	}
	if err := svc.db.Set(ctx, core.StudentCollection, s.ID, studentToDoc(s)); err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}
	svc.activity.Append(ctx, core.ActivityStudentRegistered, s.ID,
		fmt.Sprintf("%s registered as %s", s.DisplayName, s.ExternalID))
	return s, nil
}

// Join enrolls a student into a board, creating the student row with the
// target board set in one step. The uniqueness check and the write are not
// atomic against the underlying store; two concurrent joins with the same
// (board, externalId) can both pass the check. This race is a documented
// limitation of the store contract, not hidden behind false atomicity.
func (svc *Service) Join(ctx context.Context, jb JoinBoard) (Student, error) {
	if err := jb.Validate(); err != nil {
		return Student{}, err
	}

	b, err := svc.boards.Get(ctx, jb.BoardID)
	if err != nil {
		return Student{}, err
	}
	if !b.IsActive {
		return Student{}, errBoardClosed
	}

	taken, err := svc.externalIDTaken(ctx, jb.ExternalID, jb.BoardID)
	if err != nil {
		return Student{}, err
	}
	if taken {
		return Student{}, ErrIDExists
	}

	now := time.Now().UTC()
	s := Student{
		ID:          uuid.NewString(),
		DisplayName: jb.Name,
		ExternalID:  jb.ExternalID,
		BoardID:     jb.BoardID,
		JoinedAt:    now,
		CreatedAt:   now,
	}
	if jb.Password != "" {
		if err := s.SetPassword(jb.Password); err != nil {
			return Student{}, errors.Wrap(err, "hashing password")
		}
	}
	if err := svc.db.Set(ctx, core.StudentCollection, s.ID, studentToDoc(s)); err != nil {
		return Student{}, errors.Wrap(err, "creating student")
	}
	svc.activity.Append(ctx, core.ActivityStudentJoined, s.ID,
		fmt.Sprintf("%s joined board %s as %s", s.DisplayName, b.Title, s.ExternalID))
	return s, nil
}

// AddToBoard moves an existing student onto a board. Re-adding a student to
// the board they are already on is refused, not treated as a no-op.
func (svc *Service) AddToBoard(ctx context.Context, studentID, boardID string) error {
	s, err := svc.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	if s.BoardID == boardID {
		return ErrIDExists
	}

	b, err := svc.boards.Get(ctx, boardID)
	if err != nil {
		return err
	}
	if !b.IsActive {
		return errBoardClosed
	}

	taken, err := svc.externalIDTaken(ctx, s.ExternalID, boardID)
	if err != nil {
		return err
	}
	if taken {
		return ErrIDExists
	}

	err = svc.db.Update(ctx, core.StudentCollection, studentID, core.Document{
		"boardId":  boardID,
		"joinedAt": time.Now().UTC(),
	})
	return errors.Wrap(err, "updating student")
}

// RemoveFromBoard clears the student's board membership. The board being
// removed from must match the student's current board.
func (svc *Service) RemoveFromBoard(ctx context.Context, studentID, boardID string) error {
	s, err := svc.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	if s.BoardID != boardID {
		return ErrNotInBoard
	}
	err = svc.db.Update(ctx, core.StudentCollection, studentID, core.Document{
		"boardId":  "",
		"joinedAt": time.Time{},
	})
	return errors.Wrap(err, "updating student")
}

// Login verifies the (name, externalId) pair and the password. Any mismatch
// reports the same error so callers cannot tell which field was wrong.
func (svc *Service) Login(ctx context.Context, creds Credentials) (Student, error) {
	if err := creds.Validate(); err != nil {
		return Student{}, err
	}
	docs, err := svc.db.Query(ctx, core.StudentCollection, core.Query{
		Filters: []core.Filter{
			core.Eq("displayName", creds.Name),
			core.Eq("externalId", creds.ExternalID),
		},
		Limit: 1,
	})
	if err != nil {
		return Student{}, errors.Wrap(err, "querying students")
	}
	if len(docs) == 0 {
		return Student{}, ErrLoginFailed
	}
	s, err := svc.fromQueryDoc(docs[0])
	if err != nil {
		return Student{}, err
	}
	if len(s.PasswordHash) == 0 || s.CheckPassword(creds.Password) != nil {
		return Student{}, ErrLoginFailed
	}
	svc.activity.Append(ctx, core.ActivityStudentLoggedIn, s.ID,
		fmt.Sprintf("%s logged in", s.DisplayName))
	return s, nil
}

// ResetPassword overwrites the student's credential with a fresh hash.
func (svc *Service) ResetPassword(ctx context.Context, studentID, pwd string) error {
	s, err := svc.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	if err := s.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	err = svc.db.Update(ctx, core.StudentCollection, s.ID, core.Document{
		"passwordHash": string(s.PasswordHash),
	})
	return errors.Wrap(err, "updating student")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	doc, err := svc.db.Get(ctx, core.StudentCollection, id)
	if err != nil {
		if errors.Is(err, core.ErrDocNotFound) {
			return Student{}, ErrNotFound
		}
		return Student{}, errors.Wrap(err, "getting student")
	}
	return docToStudent(id, doc)
}

// GetByExternalID resolves a student by the (externalId, boardId) pair.
func (svc *Service) GetByExternalID(ctx context.Context, externalID, boardID string) (Student, error) {
	if boardID == "" {
		return Student{}, errNoBoardID
	}
	docs, err := svc.db.Query(ctx, core.StudentCollection, core.Query{
		Filters: []core.Filter{
			core.Eq("externalId", core.CleanString(externalID, true /* lower */)),
			core.Eq("boardId", boardID),
		},
		Limit: 1,
	})
	if err != nil {
		return Student{}, errors.Wrap(err, "querying students")
	}
	if len(docs) == 0 {
		return Student{}, ErrNotFound
	}
	return svc.fromQueryDoc(docs[0])
}

// ByBoard lists a board's roster, most recent joiner first. The empty
// sentinel is refused: unassigned students are not a roster.
func (svc *Service) ByBoard(ctx context.Context, boardID string) ([]Student, error) {
	if boardID == "" {
		return nil, errNoBoardID
	}
	docs, err := svc.db.Query(ctx, core.StudentCollection, core.Query{
		Filters: []core.Filter{core.Eq("boardId", boardID)},
		OrderBy: []core.Order{{Field: "joinedAt", Desc: true}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]Student, 0, len(docs))
	for _, doc := range docs {
		s, err := svc.fromQueryDoc(doc)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, nil
}

// externalIDTaken reports whether externalID is already in use; boardID == ""
// checks across all students (registration-time global uniqueness), otherwise
// only within the given board.
func (svc *Service) externalIDTaken(ctx context.Context, externalID, boardID string) (bool, error) {
	filters := []core.Filter{core.Eq("externalId", externalID)}
	if boardID != "" {
		filters = append(filters, core.Eq("boardId", boardID))
	}
	docs, err := svc.db.Query(ctx, core.StudentCollection, core.Query{Filters: filters, Limit: 1})
	if err != nil {
		return false, errors.Wrap(err, "checking id uniqueness")
	}
	return len(docs) > 0, nil
}

func (svc *Service) fromQueryDoc(doc core.Document) (Student, error) {
	id, err := doc.String(core.DocID)
	if err != nil {
		return Student{}, err
	}
	return docToStudent(id, doc)
}
