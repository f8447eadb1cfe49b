package ports

import (
	"context"

	"github.com/moshez/ward/domain/entities"
)

// Policy decides whether a guest request is within its grants.
type Policy interface {
	CheckNetwork(ctx context.Context, req entities.NetworkRequest) bool
	CheckFile(ctx context.Context, req entities.FileRequest) bool
	CheckStorage(ctx context.Context, req entities.StorageRequest) bool
}

// DenialHandler observes requests a Policy refused.
type DenialHandler interface {
	OnDenial(ctx context.Context, kind string, request any, reason string)
}
