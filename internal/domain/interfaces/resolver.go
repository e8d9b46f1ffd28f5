package interfaces

import (
	"context"

	"crypto-valuation-service/internal/domain/entities"
)

// PriceResolver resolves the price of one currency expressed in another
type PriceResolver interface {
	Resolve(ctx context.Context, numerator, denominator string) (*entities.Quote, error)
}
