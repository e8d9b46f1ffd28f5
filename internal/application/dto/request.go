package dto

import (
	"errors"
	"regexp"
	"strings"
)

var symbolPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,31}$`)

// GetValuationRequest represents the request for the latest valuation report
type GetValuationRequest struct {
	// Assets filtra las filas del reporte (ej: "bitcoin,ethereum"); vacío = todas
	Assets []string `json:"assets"`
}

// NewGetValuationRequest crea la request desde el query parameter assets.
// Solo acepta activos del portafolio configurado.
func NewGetValuationRequest(assetsParam string, portfolio []string) (*GetValuationRequest, error) {
	if strings.TrimSpace(assetsParam) == "" {
		return &GetValuationRequest{}, nil
	}

	known := make(map[string]bool, len(portfolio))
	for _, symbol := range portfolio {
		known[strings.ToLower(symbol)] = true
	}

	var assets []string
	for _, raw := range strings.Split(assetsParam, ",") {
		symbol, err := ParseSymbol(raw)
		if err != nil {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			return nil, err
		}
		if !known[symbol] {
			return nil, errors.New("asset not in portfolio: " + symbol + " (portfolio: " + strings.Join(portfolio, ",") + ")")
		}
		assets = append(assets, symbol)
	}

	if len(assets) == 0 {
		return nil, errors.New("no valid assets provided")
	}
	return &GetValuationRequest{Assets: assets}, nil
}

// ParseSymbol normaliza y valida el símbolo de un activo
func ParseSymbol(raw string) (string, error) {
	symbol := strings.ToLower(strings.TrimSpace(raw))
	if symbol == "" {
		return "", errors.New("asset symbol is required")
	}
	if !symbolPattern.MatchString(symbol) {
		return "", errors.New("invalid asset symbol: " + symbol)
	}
	return symbol, nil
}
