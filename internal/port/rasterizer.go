package port

import (
	"context"

	"billscan/internal/domain"
)

// Rasterizer converts a document into an ordered sequence of per-page image
// files. An image input yields itself as the single page. Page images are
// request-scoped temporary files; the caller removes them after assembly.
type Rasterizer interface {
	Split(ctx context.Context, doc *domain.LocalDocument) ([]string, error)
}
