package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/quantgate/quantgate/internal/cli"
	"github.com/quantgate/quantgate/internal/configs"
	"github.com/quantgate/quantgate/internal/credentials"
	"github.com/quantgate/quantgate/internal/diagnose"
	"github.com/quantgate/quantgate/internal/journal"
	"github.com/quantgate/quantgate/internal/trade"
	"github.com/quantgate/quantgate/internal/trade/binance"
)

var (
	flagConf       = flag.String("conf", "", "config path, eg: -conf config.json")
	flagType       = flag.String("type", "market", "order type: market or limit")
	flagTIF        = flag.String("tif", "GTC", "time in force for limit orders: GTC, IOC or FOK")
	flagLive       = flag.Bool("live", false, "place a REAL order instead of a test validation")
	flagMainnet    = flag.Bool("mainnet", false, "use mainnet instead of testnet")
	flagReduceOnly = flag.Bool("reduce-only", false, "mark the order reduce-only (position closing)")
	flagExplain    = flag.Bool("explain", false, "ask the configured AI model to explain a venue rejection")
	flagVerbose    = flag.Bool("verbose", false, "enable verbose logging")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: quantgate [flags] SYMBOL SIDE QUANTITY [PRICE]\n\n")
	fmt.Fprintf(flag.CommandLine.Output(), "Submits one futures order per run. Default mode validates the order\nagainst the testnet without executing; -live and -mainnet each require\nconfirmation.\n\nExample: quantgate -type limit BTCUSDT BUY 0.001 60000\n\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	os.Exit(run())
}

func run() int {
	// Load .env if present; system environment still wins for set variables.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if *flagVerbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	config := configs.Default()
	if *flagConf != "" {
		var err error
		config, err = configs.Load(*flagConf)
		if err != nil {
			log.Error("Error reading config file", "err", err)
			return 1
		}
	}

	if config.Proxy != "" {
		_ = os.Setenv("HTTP_PROXY", config.Proxy)
		_ = os.Setenv("HTTPS_PROXY", config.Proxy)
		log.Debug("set proxy ok", "proxy", config.Proxy)
	}

	params, err := parseArgs(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n", err)
		flag.Usage()
		return 2
	}

	mode := trade.Mode{Venue: trade.VenueTestnet, DryRun: true}
	confirmer := &cli.StdioConfirmer{In: os.Stdin, Out: os.Stderr}

	if *flagMainnet {
		ok, err := confirmer.Confirm("WARNING: mainnet selected - this venue trades real money. Continue?")
		if err != nil {
			log.Error("confirmation failed", "err", err)
			return 1
		}
		if !ok {
			fmt.Println("Cancelled.")
			return 0
		}
		mode.Venue = trade.VenueLive
	}

	if *flagLive {
		ok, err := confirmer.Confirm("WARNING: this will place a REAL order. Continue?")
		if err != nil {
			log.Error("confirmation failed", "err", err)
			return 1
		}
		if !ok {
			fmt.Println("Cancelled.")
			return 0
		}
		mode.DryRun = false
	}

	factory := func(creds *credentials.Credentials, venue trade.Venue) (trade.VenueClient, error) {
		return binance.NewClient(creds, venue,
			binance.WithRecvWindow(config.RecvWindow),
			binance.WithLogger(log))
	}

	executor := trade.NewExecutor(factory, log, trade.WithQuoteSuffix(config.QuoteSuffix))

	ctx := context.Background()
	result, execErr := executor.Execute(ctx, *params, mode, nil)

	recordOutcome(ctx, log, config, params, mode, result, execErr)

	if execErr != nil {
		reportError(ctx, log, config, params, execErr)
		return 1
	}

	if result.Validation != nil {
		fmt.Printf("Test order validated: %s %s %v\n",
			result.Validation.Request.Symbol,
			result.Validation.Request.Side,
			result.Validation.Request.Quantity)
	} else {
		fmt.Printf("Order placed: id=%s\n", result.Placed.OrderID)
	}
	return 0
}

// parseArgs turns positional arguments into raw order parameters.
// Full validation happens in the executor; this only parses numbers
// and flag enums.
func parseArgs(args []string) (*trade.Params, error) {
	if len(args) < 3 || len(args) > 4 {
		return nil, errors.New("expected SYMBOL SIDE QUANTITY [PRICE]")
	}

	orderType, err := trade.ParseOrderType(*flagType)
	if err != nil {
		return nil, err
	}

	tif, err := trade.ParseTimeInForce(*flagTIF)
	if err != nil {
		return nil, err
	}

	quantity, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return nil, fmt.Errorf("quantity must be a number, got: %s", args[2])
	}

	var price float64
	if len(args) == 4 {
		price, err = strconv.ParseFloat(args[3], 64)
		if err != nil {
			return nil, fmt.Errorf("price must be a number, got: %s", args[3])
		}
	} else if orderType == trade.OrderTypeLimit {
		return nil, errors.New("limit orders require a PRICE argument")
	}

	return &trade.Params{
		Symbol:      args[0],
		Side:        args[1],
		Type:        orderType,
		Quantity:    quantity,
		Price:       price,
		ReduceOnly:  *flagReduceOnly,
		TimeInForce: tif,
	}, nil
}

// recordOutcome appends the execution result to the Postgres journal when
// one is configured. Journal failures never change the exit code.
func recordOutcome(ctx context.Context, log *slog.Logger, config *configs.Config, params *trade.Params, mode trade.Mode, result *trade.Result, execErr error) {
	if config.Journal.ConnStr == "" {
		return
	}

	entry := &journal.Entry{
		Symbol:    trade.NormalizeSymbol(params.Symbol),
		Side:      params.Side,
		OrderType: string(params.Type),
		Quantity:  params.Quantity,
		Price:     params.Price,
		Venue:     string(mode.Venue),
		DryRun:    mode.DryRun,
	}

	switch {
	case result != nil && result.Placed != nil:
		entry.Status = journal.StatusPlaced
		entry.OrderID = result.Placed.OrderID
	case result != nil && result.Validation != nil:
		entry.Status = journal.StatusValidated
	default:
		var rejected *trade.RejectedError
		if !errors.As(execErr, &rejected) {
			return
		}
		entry.Status = journal.StatusRejected
		entry.Detail = rejected.Message
	}

	j, err := journal.NewPostgresJournal(config.Journal.ConnStr)
	if err != nil {
		log.Error("journal unavailable", "err", err)
		return
	}
	defer j.Close()

	if err := j.Record(ctx, entry); err != nil {
		log.Error("failed to journal outcome", "err", err)
	}
}

// reportError prints one message per error category. Configuration errors
// include remediation guidance; unexpected errors show full detail only in
// verbose mode.
func reportError(ctx context.Context, log *slog.Logger, config *configs.Config, params *trade.Params, execErr error) {
	var (
		validation *trade.ValidationError
		configErr  *trade.ConfigurationError
		rejected   *trade.RejectedError
		venueErr   *trade.VenueError
		unexpected *trade.UnexpectedError
	)

	switch {
	case errors.As(execErr, &validation):
		fmt.Fprintf(os.Stderr, "error: %v\n", validation)

	case errors.As(execErr, &configErr):
		fmt.Fprintf(os.Stderr, "error: %v\n", configErr)
		fmt.Fprintln(os.Stderr, "Set BINANCE_API_KEY and BINANCE_API_SECRET in .env or the environment.")
		fmt.Fprintln(os.Stderr, "Testnet keys: https://testnet.binancefuture.com/")

	case errors.As(execErr, &rejected):
		fmt.Fprintf(os.Stderr, "error: %v\n", rejected)
		explainRejection(ctx, log, config, params, rejected)

	case errors.As(execErr, &venueErr):
		fmt.Fprintf(os.Stderr, "error: %v\n", venueErr)

	case errors.As(execErr, &unexpected):
		if *flagVerbose {
			log.Error("unexpected failure", "err", unexpected.Err)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", unexpected)

	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", execErr)
	}
}

func explainRejection(ctx context.Context, log *slog.Logger, config *configs.Config, params *trade.Params, rejected *trade.RejectedError) {
	if !*flagExplain || config.Diagnose.APIKey == "" {
		return
	}

	req, _, err := trade.Validate(*params, config.QuoteSuffix)
	if err != nil {
		return
	}

	explainer := diagnose.NewExplainer(config.Diagnose.APIKey, config.Diagnose.ModelType)
	hint, err := explainer.ExplainRejection(ctx, req, rejected.Message)
	if err != nil {
		log.Debug("rejection explanation unavailable", "err", err)
		return
	}
	fmt.Fprintf(os.Stderr, "\nHint: %s\n", hint)
}
