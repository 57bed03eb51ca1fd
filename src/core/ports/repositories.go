// Package ports defines interfaces (ports) that connect core domain to infrastructure.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern.
//
// Ports are defined here in the core layer, while implementations (adapters)
// live in src/infra. This ensures the core has no dependency on infrastructure.
package ports

import (
	"context"

	"workshop/src/core/domain"
)

// Repository is the base interface for all repositories.
type Repository interface {
	// Health checks if the underlying storage is reachable.
	Health(ctx context.Context) error
}

// WorkshopRepository reads workshop records. Every record it returns has its
// relations populated: a ServiceRequest carries its Mechanic and its Vehicle,
// and the Vehicle carries its Owner.
type WorkshopRepository interface {
	Repository

	GetMechanicByCode(ctx context.Context, code string) (*domain.Mechanic, error)
	ListServiceRequestsByVIN(ctx context.Context, vin string) ([]domain.ServiceRequest, error)
}
