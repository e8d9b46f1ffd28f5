package providers

import (
	"bytes"
	"strconv"
)

// flexFloat acepta un número JSON o un string numérico ("0.0123").
// Un campo ausente o null deja Set en false.
type flexFloat struct {
	Value float64
	Set   bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	b = bytes.Trim(b, `"`)
	if len(b) == 0 {
		return nil
	}

	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	f.Value, f.Set = v, true
	return nil
}

// bitpayResponse soporta la forma plana y la envuelta en "data"
type bitpayResponse struct {
	Code string    `json:"code"`
	Rate flexFloat `json:"rate"`
	Data *struct {
		Code string    `json:"code"`
		Rate flexFloat `json:"rate"`
	} `json:"data"`
}

type shapeshiftResponse struct {
	Pair  string    `json:"pair"`
	Rate  flexFloat `json:"rate"`
	Error string    `json:"error"`
}

type coinMarketCapTicker struct {
	ID       string    `json:"id"`
	Symbol   string    `json:"symbol"`
	PriceUSD flexFloat `json:"price_usd"`
}

type liquiTicker struct {
	Buy  flexFloat `json:"buy"`
	Sell flexFloat `json:"sell"`
	Last flexFloat `json:"last"`
}

type poloniexTicker struct {
	Last       flexFloat `json:"last"`
	LowestAsk  flexFloat `json:"lowestAsk"`
	HighestBid flexFloat `json:"highestBid"`
}

type bittrexSummaries struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Result  []bittrexSummary `json:"result"`
}

type bittrexSummary struct {
	MarketName string    `json:"MarketName"`
	Bid        flexFloat `json:"Bid"`
	Ask        flexFloat `json:"Ask"`
	Last       flexFloat `json:"Last"`
}

type aexTicker struct {
	Ticker struct {
		Buy  flexFloat `json:"buy"`
		Sell flexFloat `json:"sell"`
		Last flexFloat `json:"last"`
	} `json:"ticker"`
}
