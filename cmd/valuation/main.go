package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"crypto-valuation-service/internal/application/dto"
	"crypto-valuation-service/internal/application/resolver"
	"crypto-valuation-service/internal/application/services"
	"crypto-valuation-service/internal/infrastructure/config"
	"crypto-valuation-service/internal/infrastructure/exchange/providers"
	"crypto-valuation-service/internal/infrastructure/logging"
	"crypto-valuation-service/internal/infrastructure/repositories/cache"

	"github.com/joho/godotenv"
	"github.com/urfave/cli"
)

var appVersion = "1.0.0"

var (
	configFlag = cli.StringFlag{
		Name:  "config, c",
		Usage: "path to the YAML configuration file (default: ./configs/config.yaml)",
	}
	mockFlag = cli.BoolFlag{
		Name:  "mock",
		Usage: "use the in-process mock providers instead of the real APIs",
	}
	assetsFlag = cli.StringFlag{
		Name:  "assets",
		Usage: "comma separated asset symbols to print (default: every asset)",
	}
	logLevelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "debug, info, warn or error",
		Value: "warn",
	}
)

func main() {
	_ = godotenv.Load()

	app := cli.NewApp()
	app.Name = "valuation"
	app.Usage = "Resolves the portfolio prices once and prints the valuation report as JSON"
	app.Version = fmt.Sprintf("%s/%s/%s-%s", appVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	app.Flags = []cli.Flag{configFlag, mockFlag, assetsFlag, logLevelFlag}
	app.Action = valuate
	app.Commands = []cli.Command{
		{
			Name:      "quote",
			Usage:     "resolves the price of one asset through its fallback chain",
			ArgsUsage: "<symbol>",
			Flags:     []cli.Flag{configFlag, mockFlag, logLevelFlag},
			Action:    quote,
		},
		{
			Name:   "chains",
			Usage:  "prints the configured fallback chains",
			Flags:  []cli.Flag{configFlag, mockFlag, logLevelFlag},
			Action: chains,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

type engine struct {
	cfg       *config.Config
	resolver  *resolver.Resolver
	valuation *services.ValuationService
	reports   *cache.ReportCacheAdapter
}

func newEngine(c *cli.Context) (*engine, error) {
	loader := config.NewLoader()
	if path := c.String("config"); path != "" {
		loader = loader.WithConfigFile(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if c.Bool("mock") {
		cfg.Development.MockMode = true
	}
	// Un solo pase: el reporte vive en memoria
	cfg.Cache.Backend = "memory"

	loggerConfig := logging.NewConfig("valuation-cli", appVersion, config.GetEnvironment()).
		WithLevel(logging.LogLevelFromString(c.String("log-level"))).
		WithFormat(logging.FormatText).
		WithOutput(os.Stderr)
	if err := logging.InitializeGlobalLoggers(loggerConfig); err != nil {
		return nil, err
	}

	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, err
	}

	registry, err := providers.NewRegistry(cfg)
	if err != nil {
		return nil, err
	}
	res, err := resolver.NewFromConfig(cfg, registry)
	if err != nil {
		return nil, err
	}

	reports := cache.NewReportCacheAdapter(cache.NewMemoryCache(), cfg.Cache.Prefix, cfg.Cache.TTL)
	return &engine{
		cfg:       cfg,
		resolver:  res,
		valuation: services.NewValuationServiceFromConfig(cfg, res, reports),
		reports:   reports,
	}, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func valuate(c *cli.Context) error {
	e, err := newEngine(c)
	if err != nil {
		return err
	}
	defer e.reports.Close()

	var symbols []string
	for _, a := range services.AssetsFromConfig(e.cfg.Portfolio) {
		symbols = append(symbols, a.Symbol)
	}
	request, err := dto.NewGetValuationRequest(c.String("assets"), symbols)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	report, err := e.valuation.Valuate(ctx)
	if report == nil {
		return err
	}

	return printJSON(dto.NewValuationMapper().ToValuationResponse(report, request.Assets))
}

func quote(c *cli.Context) error {
	symbol, err := dto.ParseSymbol(c.Args().First())
	if err != nil {
		return err
	}

	e, err := newEngine(c)
	if err != nil {
		return err
	}
	defer e.reports.Close()

	ctx, cancel := signalContext()
	defer cancel()

	q, resolveErr := e.valuation.ResolveAsset(ctx, symbol)
	if err := printJSON(dto.NewValuationMapper().ToQuoteResponse(symbol, e.resolver.Numerator(), q, resolveErr)); err != nil {
		return err
	}
	return resolveErr
}

func chains(c *cli.Context) error {
	e, err := newEngine(c)
	if err != nil {
		return err
	}
	defer e.reports.Close()

	return printJSON(dto.NewValuationMapper().ToChainsResponse(e.resolver.Numerator(), e.resolver.BaseAsset(), e.resolver.Chains()))
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
