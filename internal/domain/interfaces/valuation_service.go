package interfaces

import (
	"context"

	"crypto-valuation-service/internal/domain/entities"
)

// ValuationService define los casos de uso de valoracion del portafolio
type ValuationService interface {
	// Valuate ejecuta una pasada completa de resolucion y guarda el reporte como ultimo snapshot
	Valuate(ctx context.Context) (*entities.Report, error)

	// LatestReport retorna el ultimo reporte calculado (CACHE-ONLY)
	LatestReport(ctx context.Context) (*entities.Report, error)

	// ResolveAsset resuelve bajo demanda la cotizacion de un solo activo
	ResolveAsset(ctx context.Context, symbol string) (*entities.Quote, error)

	// Subscribe entrega cada reporte nuevo hasta que se llame a la funcion de cancelacion
	Subscribe() (<-chan *entities.Report, func())
}
