// Package store defines the chat session repository. The reconciler and
// orchestrator depend only on this interface, never on a concrete storage
// mechanism.
package store

import (
	"context"
	"errors"

	"github.com/Sri-Charan-3-1-6/CivicEase/pkg/core/types"
)

// ErrNotFound is returned when no session exists for the given id.
var ErrNotFound = errors.New("session not found")

// Repository persists chat sessions keyed by session id.
type Repository interface {
	Get(ctx context.Context, id string) (*types.ChatSession, error)
	List(ctx context.Context) ([]types.ChatSession, error)
	Put(ctx context.Context, session *types.ChatSession) error
	Delete(ctx context.Context, id string) error
}
