package content

import (
	"context"
	"fmt"

	"github.com/bryanwahyu/callprep/internal/domain/apperr"
	"github.com/bryanwahyu/callprep/internal/domain/files"
)

// Assembler fetches a customer's files and bundles them.
type Assembler struct {
	Files files.Repository
}

// Assemble bundles the requested files of customerID. Ids that belong to another
// customer are silently dropped by the scoped fetch.
func (a *Assembler) Assemble(ctx context.Context, customerID string, ids []string) (Bundle, error) {
	if len(ids) == 0 {
		return Bundle{}, fmt.Errorf("%w: no files selected", apperr.ErrNoContent)
	}
	fetched, err := a.Files.GetMany(ctx, customerID, ids)
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: loading files: %v", apperr.ErrPersistence, err)
	}
	return Assemble(ids, fetched)
}
