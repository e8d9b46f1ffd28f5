package interfaces

//go:generate mockgen -destination=mocks/rate_source_mock.go -package=mocks crypto-valuation-service/internal/domain/interfaces RateSource,Invalidator

import (
	"context"

	"crypto-valuation-service/internal/domain/entities"
)

// RateSource es la capacidad comun de todos los proveedores de cotizaciones.
// arg es el identificador que entiende el proveedor (par, id de moneda, etc).
type RateSource interface {
	Name() string
	FetchRate(ctx context.Context, arg string) (*entities.Rate, error)
}

// Invalidator lo implementan las fuentes cuya llamada cruda esta memoizada.
// Invalidate descarta el resultado guardado para arg sin importar su valor;
// InvalidateFailed solo lo descarta si fue un error o un precio inutilizable.
type Invalidator interface {
	Invalidate(arg string)
	InvalidateFailed(arg string)
}
