// Package dummyactivity is a no-op ActivityLog for tests.
package dummyactivity

import (
	"context"

	"github.com/longlg88/wallyhub/core"
)

type Service struct{}

var _ core.ActivityLog = (*Service)(nil)

func NewService() *Service { return &Service{} }

func (Service) Append(context.Context, string, string, string) {}
