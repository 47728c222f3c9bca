// Package registry talks to the catalog that persisted records live in.
package registry

import (
	"context"
	"errors"

	"github.com/openstudydata/ddiwalk/record"
)

// ErrNotFound indicates the catalog holds no record under the identifier.
var ErrNotFound = errors.New("record not found")

// Registry is the minimal catalog contract the importer depends on.
// Records are keyed by their slug identifier.
type Registry interface {
	Show(ctx context.Context, id string) (*record.Record, error)
	Create(ctx context.Context, rec *record.Record) (string, error)
	Update(ctx context.Context, rec *record.Record) (string, error)
}
