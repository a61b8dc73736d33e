package testutil

import (
	"context"
	"testing"

	"github.com/longlg88/wallyhub/core"
	"github.com/longlg88/wallyhub/core/board"
	"github.com/longlg88/wallyhub/core/photo"
	"github.com/longlg88/wallyhub/core/student"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// NewLogger returns a silent logger for tests.
func NewLogger() core.Logger { return nopLogger{} }

func CreateBoard(t *testing.T, svc *board.Service, title, ownerID string, active bool) board.Board {
	t.Helper()
	b, err := svc.Create(context.Background(), board.NewBoard{Title: title, OwnerID: ownerID})
	if err != nil {
		t.Fatalf("createBoard() failed: %v", err)
	}
	if !active {
		if err := svc.SetActive(context.Background(), b.ID, false); err != nil {
			t.Fatalf("createBoard() failed: %v", err)
		}
		b.IsActive = false
	}
	return b
}

func JoinStudent(t *testing.T, svc *student.Service, name, externalID, boardID, pwd string) student.Student {
	t.Helper()
	s, err := svc.Join(context.Background(), student.JoinBoard{
		Name:       name,
		ExternalID: externalID,
		BoardID:    boardID,
		Password:   pwd,
	})
	if err != nil {
		t.Fatalf("joinStudent() failed: %v", err)
	}
	return s
}

func UploadPhoto(t *testing.T, svc *photo.Service, title, externalID, boardID string) photo.Photo {
	t.Helper()
	p, err := svc.Upload(context.Background(), photo.NewPhoto{
		Title:             title,
		StudentExternalID: externalID,
		BoardID:           boardID,
		Data:              []byte("not-really-a-jpeg"),
	})
	if err != nil {
		t.Fatalf("uploadPhoto() failed: %v", err)
	}
	return p
}
