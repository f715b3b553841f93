// Package lockfile persists resolved dependency trees.
//
// A [Lock] pairs a tree with the manifest identity it was built for and a
// random ID. [FileStore] writes locks next to a project as ziplock.json;
// [MongoStore] keeps them in a MongoDB collection for the HTTP service.
package lockfile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/ziplock/pkg/errors"
	"github.com/matzehuels/ziplock/pkg/manifest"
	"github.com/matzehuels/ziplock/pkg/tree"
)

// FormatVersion is bumped when the on-disk lock layout changes.
const FormatVersion = 1

// Lock is a resolved tree with its provenance.
type Lock struct {
	ID            string    `json:"id"`
	FormatVersion int       `json:"lockfileVersion"`
	Name          string    `json:"name,omitempty"`
	Version       string    `json:"version,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	Nodes         int       `json:"nodes"`
	Tree          tree.Tree `json:"tree"`
}

// New creates a lock for the tree built from m.
func New(m *manifest.Manifest, t tree.Tree) *Lock {
	l := &Lock{
		ID:            uuid.NewString(),
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
		Nodes:         t.Count(),
		Tree:          t,
	}
	if m != nil {
		l.Name, l.Version = m.Name, m.Version
	}
	if l.Tree == nil {
		l.Tree = tree.Tree{}
	}
	return l
}

// Store saves and loads locks.
type Store interface {
	Save(ctx context.Context, l *Lock) error
	// Load returns the lock with id, or a NOT_FOUND error.
	Load(ctx context.Context, id string) (*Lock, error)
	Close(ctx context.Context) error
}

// ValidateID rejects anything that is not a UUID, so IDs are safe to use
// as file names and query keys.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "lock id %q", id)
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "lock %s not found", id)
}
