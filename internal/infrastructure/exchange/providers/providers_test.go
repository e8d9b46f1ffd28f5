package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"crypto-valuation-service/internal/domain/entities"
	"crypto-valuation-service/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider sirve un cuerpo fijo y cuenta los requests
type fakeProvider struct {
	server   *httptest.Server
	requests int32
	lastPath atomic.Value
}

func newFakeProvider(t *testing.T, status int, body string) *fakeProvider {
	t.Helper()
	fp := &fakeProvider{}
	fp.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fp.requests, 1)
		fp.lastPath.Store(r.URL.RequestURI())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(fp.server.Close)
	return fp
}

func (fp *fakeProvider) Requests() int {
	return int(atomic.LoadInt32(&fp.requests))
}

func (fp *fakeProvider) LastPath() string {
	v, _ := fp.lastPath.Load().(string)
	return v
}

type rateFetcher interface {
	FetchRate(ctx context.Context, arg string) (*entities.Rate, error)
}

func testGetter() *JSONGetter {
	return NewJSONGetter(config.ProvidersConfig{RequestTimeout: 2 * time.Second})
}

// ===== CASOS DE ÉXITO =====

func TestBitpaySource_FetchRate(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "respuesta plana", body: `{"code":"USD","name":"US Dollar","rate":10000.5}`},
		{name: "respuesta envuelta en data", body: `{"data":{"code":"USD","rate":10000.5}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := newFakeProvider(t, http.StatusOK, tt.body)
			source := NewBitpaySource(fp.server.URL, testGetter())

			rate, err := source.FetchRate(context.Background(), "")

			require.NoError(t, err)
			assert.Equal(t, 10000.5, rate.Value)
			assert.Equal(t, entities.DenominationUSD, rate.Denomination)
			assert.Equal(t, "/rates/usd", fp.LastPath())
			assert.Equal(t, fp.server.URL+"/rates/usd", rate.Source)
			assert.Equal(t, config.ProviderBitpay, source.Name())
		})
	}
}

func TestShapeshiftSource_StringRate(t *testing.T) {
	fp := newFakeProvider(t, http.StatusOK, `{"pair":"bch_btc","rate":"0.0751"}`)

	rate, err := NewShapeshiftSource(fp.server.URL, testGetter()).FetchRate(context.Background(), "bch_btc")

	require.NoError(t, err)
	assert.Equal(t, 0.0751, rate.Value)
	assert.Equal(t, entities.DenominationBTC, rate.Denomination)
	assert.Equal(t, "/rate/bch_btc", fp.LastPath())
}

func TestCoinMarketCapSource_FirstTicker(t *testing.T) {
	fp := newFakeProvider(t, http.StatusOK, `[{"id":"zcash","symbol":"ZEC","price_usd":"35.12"}]`)

	rate, err := NewCoinMarketCapSource(fp.server.URL, testGetter()).FetchRate(context.Background(), "zcash")

	require.NoError(t, err)
	assert.Equal(t, 35.12, rate.Value)
	assert.Equal(t, entities.DenominationUSD, rate.Denomination)
	assert.Equal(t, "/ticker/zcash/", fp.LastPath())
}

func TestLiquiSource_BuyPrice(t *testing.T) {
	fp := newFakeProvider(t, http.StatusOK, `{"qrl_btc":{"buy":0.0000081,"sell":0.0000085}}`)

	rate, err := NewLiquiSource(fp.server.URL, testGetter()).FetchRate(context.Background(), "qrl_btc")

	require.NoError(t, err)
	assert.Equal(t, 0.0000081, rate.Value)
	assert.Equal(t, entities.DenominationBTC, rate.Denomination)
}

func TestPoloniexSource_OneSnapshotServesEveryPair(t *testing.T) {
	fp := newFakeProvider(t, http.StatusOK, `{
		"BTC_ETH":{"last":"0.05","highestBid":"0.0499"},
		"BTC_ARDR":{"last":"0.0000012","highestBid":"0.0000011"}
	}`)
	source := NewPoloniexSource(fp.server.URL, testGetter())
	ctx := context.Background()

	eth, err := source.FetchRate(ctx, "BTC_ETH")
	require.NoError(t, err)
	ardr, err := source.FetchRate(ctx, "BTC_ARDR")
	require.NoError(t, err)

	assert.Equal(t, 0.0499, eth.Value)
	assert.Equal(t, 0.0000011, ardr.Value)
	assert.Equal(t, 1, fp.Requests())
	assert.Equal(t, "/public?command=returnTicker", fp.LastPath())
}

func TestBittrexSource_FiltersMarket(t *testing.T) {
	fp := newFakeProvider(t, http.StatusOK, `{"success":true,"message":"","result":[
		{"MarketName":"BTC-ARDR","Bid":0.0000012},
		{"MarketName":"BTC-ADA","Bid":0.0000072}
	]}`)
	source := NewBittrexSource(fp.server.URL, testGetter())

	rate, err := source.FetchRate(context.Background(), "BTC-ADA")

	require.NoError(t, err)
	assert.Equal(t, 0.0000072, rate.Value)
	assert.Equal(t, "/public/getmarketsummaries", fp.LastPath())
}

func TestAEXSource_TickerBuy(t *testing.T) {
	fp := newFakeProvider(t, http.StatusOK, `{"ardr":{"ticker":{"buy":0.0000013,"sell":0.0000014}}}`)

	rate, err := NewAEXSource(fp.server.URL, testGetter()).FetchRate(context.Background(), "ardr")

	require.NoError(t, err)
	assert.Equal(t, 0.0000013, rate.Value)
	assert.Equal(t, "/ticker.php?c=all&mk_type=btc", fp.LastPath())
}

// ===== DEDUPLICACIÓN E INVALIDACIÓN =====

func TestBitpaySource_ConcurrentCallsShareOneRequest(t *testing.T) {
	fp := newFakeProvider(t, http.StatusOK, `{"rate":10000}`)
	source := NewBitpaySource(fp.server.URL, testGetter())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rate, err := source.FetchRate(context.Background(), "usd")
			assert.NoError(t, err)
			assert.Equal(t, 10000.0, rate.Value)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fp.Requests())
}

func TestPairSource_FailureIsCachedUntilInvalidated(t *testing.T) {
	fp := newFakeProvider(t, http.StatusServiceUnavailable, `{}`)
	source := NewLiquiSource(fp.server.URL, testGetter())
	ctx := context.Background()

	_, err := source.FetchRate(ctx, "eth_btc")
	require.Error(t, err)
	_, err = source.FetchRate(ctx, "eth_btc")
	require.Error(t, err)
	assert.Equal(t, 1, fp.Requests())

	source.Invalidate("eth_btc")
	_, err = source.FetchRate(ctx, "eth_btc")
	require.Error(t, err)
	assert.Equal(t, 2, fp.Requests())
}

func TestPairSource_InvalidateFailedKeepsGoodRates(t *testing.T) {
	fp := newFakeProvider(t, http.StatusOK, `{"rate":10000}`)
	source := NewBitpaySource(fp.server.URL, testGetter())
	ctx := context.Background()

	_, err := source.FetchRate(ctx, "usd")
	require.NoError(t, err)

	source.InvalidateFailed("usd")
	_, err = source.FetchRate(ctx, "usd")
	require.NoError(t, err)
	assert.Equal(t, 1, fp.Requests())

	source.Invalidate("usd")
	_, err = source.FetchRate(ctx, "usd")
	require.NoError(t, err)
	assert.Equal(t, 2, fp.Requests())
}

func TestPairSource_InvalidateFailedDropsUnusableRates(t *testing.T) {
	fp := newFakeProvider(t, http.StatusOK, `{"eth_btc":{"buy":0}}`)
	source := NewLiquiSource(fp.server.URL, testGetter())
	ctx := context.Background()

	rate, err := source.FetchRate(ctx, "eth_btc")
	require.NoError(t, err)
	assert.Equal(t, 0.0, rate.Value)

	source.InvalidateFailed("eth_btc")
	_, _ = source.FetchRate(ctx, "eth_btc")
	assert.Equal(t, 2, fp.Requests())
}

func TestSnapshotSource_InvalidateDropsWholeSnapshot(t *testing.T) {
	fp := newFakeProvider(t, http.StatusOK, `{"ardr":{"ticker":{"buy":0.0000013}}}`)
	source := NewAEXSource(fp.server.URL, testGetter())
	ctx := context.Background()

	_, _ = source.FetchRate(ctx, "ardr")
	source.InvalidateFailed("ardr")
	_, _ = source.FetchRate(ctx, "ardr")
	assert.Equal(t, 1, fp.Requests())

	// un par ausente invalida el snapshot completo
	_, err := source.FetchRate(ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrParse)
	source.InvalidateFailed("missing")
	assert.Equal(t, 0, source.Len())

	source.Invalidate("ardr")
	_, _ = source.FetchRate(ctx, "ardr")
	assert.Equal(t, 2, fp.Requests())
}

// ===== CASOS DE ERROR =====

func TestSources_MissingFieldsAreParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		source func(url string) rateFetcher
		arg   string
		field string
	}{
		{
			name:   "bitpay sin rate",
			body:   `{"code":"USD"}`,
			source: func(u string) rateFetcher { return NewBitpaySource(u, testGetter()) },
			arg:    "usd",
			field:  "rate",
		},
		{
			name:   "shapeshift con error",
			body:   `{"error":"Unknown pair"}`,
			source: func(u string) rateFetcher { return NewShapeshiftSource(u, testGetter()) },
			arg:    "xxx_btc",
			field:  "rate",
		},
		{
			name:   "coinmarketcap vacío",
			body:   `[]`,
			source: func(u string) rateFetcher { return NewCoinMarketCapSource(u, testGetter()) },
			arg:    "ardor",
			field:  "[0]",
		},
		{
			name:   "liqui sin par",
			body:   `{"eth_btc":{"buy":0.05}}`,
			source: func(u string) rateFetcher { return NewLiquiSource(u, testGetter()) },
			arg:    "qrl_btc",
			field:  "qrl_btc",
		},
		{
			name:   "poloniex sin highestBid",
			body:   `{"BTC_ETH":{"last":"0.05"}}`,
			source: func(u string) rateFetcher { return NewPoloniexSource(u, testGetter()) },
			arg:    "BTC_ETH",
			field:  "BTC_ETH.highestBid",
		},
		{
			name:   "bittrex sin mercado",
			body:   `{"success":true,"result":[]}`,
			source: func(u string) rateFetcher { return NewBittrexSource(u, testGetter()) },
			arg:    "BTC-ADA",
			field:  "BTC-ADA",
		},
		{
			name:   "bittrex success false",
			body:   `{"success":false,"message":"INVALID_MARKET"}`,
			source: func(u string) rateFetcher { return NewBittrexSource(u, testGetter()) },
			arg:    "BTC-ADA",
			field:  "success",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := newFakeProvider(t, http.StatusOK, tt.body)

			_, err := tt.source(fp.server.URL).FetchRate(context.Background(), tt.arg)

			require.Error(t, err)
			assert.ErrorIs(t, err, entities.ErrParse)
			var parseErr *entities.ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tt.field, parseErr.Field)
		})
	}
}

func TestJSONGetter_HTTPStatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		temporary bool
	}{
		{name: "5xx es temporal", status: http.StatusBadGateway, temporary: true},
		{name: "429 es temporal", status: http.StatusTooManyRequests, temporary: true},
		{name: "404 no es temporal", status: http.StatusNotFound, temporary: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := newFakeProvider(t, tt.status, `{"error":"nope"}`)

			var out map[string]interface{}
			err := testGetter().Get(context.Background(), "bitpay", fp.server.URL, &out)

			require.Error(t, err)
			assert.ErrorIs(t, err, entities.ErrTransport)
			var transportErr *entities.TransportError
			require.True(t, errors.As(err, &transportErr))
			assert.Equal(t, tt.status, transportErr.StatusCode)
			assert.Equal(t, tt.temporary, transportErr.Temporary())
		})
	}
}

func TestJSONGetter_MalformedBody(t *testing.T) {
	fp := newFakeProvider(t, http.StatusOK, `{"rate":`)

	var out bitpayResponse
	err := testGetter().Get(context.Background(), "bitpay", fp.server.URL, &out)

	assert.ErrorIs(t, err, entities.ErrParse)
}

func TestJSONGetter_NonNumericRate(t *testing.T) {
	fp := newFakeProvider(t, http.StatusOK, `{"rate":"abc"}`)

	var out bitpayResponse
	err := testGetter().Get(context.Background(), "bitpay", fp.server.URL, &out)

	assert.ErrorIs(t, err, entities.ErrParse)
}

func TestJSONGetter_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	getter := NewJSONGetter(config.ProvidersConfig{RequestTimeout: 50 * time.Millisecond})
	var out map[string]interface{}
	err := getter.Get(context.Background(), "liqui", server.URL, &out)

	require.Error(t, err)
	var transportErr *entities.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, 0, transportErr.StatusCode)
	assert.True(t, transportErr.Temporary())
}

func TestJSONGetter_NetworkError(t *testing.T) {
	var out map[string]interface{}
	err := testGetter().Get(context.Background(), "aex", "http://127.0.0.1:1/ticker.php", &out)

	assert.ErrorIs(t, err, entities.ErrTransport)
}

func TestJSONGetter_SendsHeaders(t *testing.T) {
	var userAgent, accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		accept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	getter := NewJSONGetter(config.ProvidersConfig{RequestTimeout: time.Second, UserAgent: "valuation-test/2"})
	var out map[string]interface{}
	require.NoError(t, getter.Get(context.Background(), "bitpay", server.URL, &out))

	assert.Equal(t, "valuation-test/2", userAgent)
	assert.Equal(t, "application/json", accept)
}

func TestJSONGetter_OutboundRateLimit(t *testing.T) {
	fp := newFakeProvider(t, http.StatusOK, `{}`)
	getter := NewJSONGetter(config.ProvidersConfig{
		RequestTimeout: time.Second,
		RateLimit:      config.OutboundLimitConfig{Enabled: true, Capacity: 1, RefillRate: 0.01},
	})

	var out map[string]interface{}
	require.NoError(t, getter.Get(context.Background(), "poloniex", fp.server.URL, &out))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := getter.Get(ctx, "poloniex", fp.server.URL, &out)

	assert.ErrorIs(t, err, entities.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, fp.Requests())

	// otro proveedor tiene su propio bucket
	require.NoError(t, getter.Get(context.Background(), "aex", fp.server.URL, &out))
}
