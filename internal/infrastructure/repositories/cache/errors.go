package cache

import "errors"

var (
	// ErrKeyNotFound se retorna cuando la clave no existe en el backend
	ErrKeyNotFound = errors.New("cache: key not found")
	// ErrKeyExpired se retorna cuando la clave existe pero su TTL venció
	ErrKeyExpired = errors.New("cache: key expired")
	// ErrReportNotFound se retorna cuando todavía no hay un reporte almacenado
	ErrReportNotFound = errors.New("cache: no valuation report available")
)
