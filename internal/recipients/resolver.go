package recipients

import (
	"context"

	"github.com/facet-erp/facet-erp/internal/document"
)

// Resolver adapts the profile store to the document module's resolver port.
type Resolver struct {
	service *Service
}

// NewResolver builds a Resolver instance.
func NewResolver(service *Service) *Resolver {
	return &Resolver{service: service}
}

// Resolve loads a profile and maps it to the document recipient shape.
func (r *Resolver) Resolve(ctx context.Context, id int64) (*document.Recipient, error) {
	profile, err := r.service.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &document.Recipient{
		ID:           profile.ID,
		CompanyName:  profile.CompanyName,
		AddressLine1: profile.AddressLine1,
		AddressLine2: profile.AddressLine2,
		City:         profile.City,
		State:        profile.State,
		Country:      profile.Country,
		PostalCode:   profile.PostalCode,
	}, nil
}
