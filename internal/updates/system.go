package updates

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/rively/pkg/pagination"
)

// System defines the public contract for company update domain operations.
type System interface {
	Handler(maxBodySize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[CompanyUpdate], error)

	Find(ctx context.Context, id uuid.UUID) (*CompanyUpdate, error)
	Ingest(ctx context.Context, cmd IngestCommand) (*CompanyUpdate, error)
	IngestBatch(ctx context.Context, cmds []IngestCommand) ([]BatchResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
