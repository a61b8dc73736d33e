package student

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/longlg88/wallyhub/core"
)

// Student is a board participant. ID is the system identity; ExternalID is
// the human-chosen identifier (e.g. a roll number), unique only within a
// board. BoardID == "" means the student is not currently a member of any
// board - it is a sentinel, not a board reference.
type Student struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	ExternalID   string    `json:"external_id"`
	BoardID      string    `json:"board_id"`
	PasswordHash []byte    `json:"-"`          // empty for anonymous joins
	JoinedAt     time.Time `json:"joined_at"`  // UTC; zero when unassigned
	CreatedAt    time.Time `json:"created_at"` // UTC
}

func (s *Student) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

// NewStudent contains information needed to register a self-service account.
type NewStudent struct {
	Name       string `json:"name" validate:"required"`
	ExternalID string `json:"external_id" validate:"required,alphanum_"`
	Password   string `json:"password" validate:"required"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.ExternalID = core.CleanString(ns.ExternalID, true /* lower */)
	return core.Validate.Struct(ns)
}

// JoinBoard contains information needed to join a board. Password is empty
// for anonymous one-off participation; when present the join also creates a
// durable login.
type JoinBoard struct {
	Name       string `json:"name" validate:"required"`
	ExternalID string `json:"external_id" validate:"required,alphanum_"`
	BoardID    string `json:"board_id" validate:"required"`
	Password   string `json:"password"`
}

func (jb *JoinBoard) Validate() error {
	jb.Name = core.CleanString(jb.Name)
	jb.ExternalID = core.CleanString(jb.ExternalID, true /* lower */)
	jb.BoardID = core.CleanString(jb.BoardID)
	return core.Validate.Struct(jb)
}

// Credentials identifies a returning student by the (name, externalId) pair.
type Credentials struct {
	Name       string `json:"name" validate:"required"`
	ExternalID string `json:"external_id" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

func (c *Credentials) Validate() error {
	c.Name = core.CleanString(c.Name)
	c.ExternalID = core.CleanString(c.ExternalID, true /* lower */)
	return core.Validate.Struct(c)
}

func studentToDoc(s Student) core.Document {
	return core.Document{
		"displayName":  s.DisplayName,
		"externalId":   s.ExternalID,
		"boardId":      s.BoardID,
		"passwordHash": string(s.PasswordHash),
		"joinedAt":     s.JoinedAt,
		"createdAt":    s.CreatedAt,
	}
}

func docToStudent(id string, doc core.Document) (Student, error) {
	s := Student{ID: id}
	var err error
	if s.DisplayName, err = doc.String("displayName"); err != nil {
		return Student{}, err
	}
	if s.ExternalID, err = doc.String("externalId"); err != nil {
		return Student{}, err
	}
	if s.BoardID, err = doc.String("boardId"); err != nil {
		return Student{}, err
	}
	hash, err := doc.String("passwordHash")
	if err != nil {
		return Student{}, err
	}
	if hash != "" {
		s.PasswordHash = []byte(hash)
	}
	if s.JoinedAt, err = doc.Time("joinedAt"); err != nil {
		return Student{}, err
	}
	if s.CreatedAt, err = doc.Time("createdAt"); err != nil {
		return Student{}, err
	}
	return s, nil
}
