// Package store keeps uploaded lead files so a run can refer to them by id.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outbound-dialer/internal/model"
)

// ErrNotFound is returned when no upload matches the request.
var ErrNotFound = eris.New("store: upload not found")

// Store defines the persistence interface for lead uploads.
type Store interface {
	SaveUpload(ctx context.Context, filename string, content []byte) (*model.Upload, error)
	GetUpload(ctx context.Context, id string) (*model.Upload, error)
	// LatestUpload returns the most recently saved upload.
	LatestUpload(ctx context.Context) (*model.Upload, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
