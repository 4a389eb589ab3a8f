package trade

import (
	"context"
	"errors"
	"log/slog"

	"github.com/quantgate/quantgate/internal/credentials"
)

// Executor orchestrates the order pipeline: validation, credential
// resolution, client construction and dispatch to the venue. A single
// executor serves both market and limit orders. It performs exactly one
// request attempt per call; retrying order placement blindly risks
// duplicate fills, so retry policy stays with the caller.
type Executor struct {
	factory     ClientFactory
	resolve     CredentialResolver
	log         *slog.Logger
	quoteSuffix string
}

type Option func(*Executor)

// WithQuoteSuffix overrides the quote asset used by the soft symbol check.
func WithQuoteSuffix(suffix string) Option {
	return func(e *Executor) {
		e.quoteSuffix = suffix
	}
}

// WithResolver overrides the credential resolver.
func WithResolver(resolve CredentialResolver) Option {
	return func(e *Executor) {
		e.resolve = resolve
	}
}

func NewExecutor(factory ClientFactory, log *slog.Logger, opts ...Option) *Executor {
	e := &Executor{
		factory:     factory,
		resolve:     credentials.Resolve,
		log:         log,
		quoteSuffix: DefaultQuoteSuffix,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs one order through the pipeline. Explicit credentials, when
// non-nil, take precedence over the environment. The error is always one of
// ValidationError, ConfigurationError, RejectedError, VenueError or
// UnexpectedError.
func (e *Executor) Execute(ctx context.Context, p Params, mode Mode, explicit *credentials.Credentials) (*Result, error) {
	req, warnings, err := Validate(p, e.quoteSuffix)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		e.log.Warn(w, "symbol", req.Symbol)
	}

	var key, secret string
	if explicit != nil {
		key = explicit.APIKey
		secret = string(explicit.APISecret)
	}
	creds, err := e.resolve(key, secret)
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}

	client, err := e.factory(creds, mode.Venue)
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}

	if mode.DryRun {
		e.log.Info("testing order against venue rules",
			"symbol", req.Symbol, "side", req.Side, "type", req.Type,
			"quantity", req.Quantity, "venue", mode.Venue)

		raw, err := client.ValidateOrder(ctx, req)
		if err != nil {
			return nil, e.classify(err)
		}

		e.log.Info("order validation successful", "symbol", req.Symbol)
		return &Result{Validation: &ValidationOutcome{
			Accepted:      true,
			Request:       *req,
			VenueResponse: raw,
		}}, nil
	}

	e.log.Info("placing real order",
		"symbol", req.Symbol, "side", req.Side, "type", req.Type,
		"quantity", req.Quantity, "venue", mode.Venue)

	placed, err := client.SubmitOrder(ctx, req)
	if err != nil {
		return nil, e.classify(err)
	}

	e.log.Info("order placed", "symbol", req.Symbol, "order_id", placed.OrderID)
	return &Result{Placed: placed}, nil
}

// classify passes recognized venue errors upward unchanged and wraps
// anything else, preserving the original message. Nothing is swallowed.
func (e *Executor) classify(err error) error {
	var (
		rejected *RejectedError
		venue    *VenueError
	)
	if errors.As(err, &rejected) || errors.As(err, &venue) {
		return err
	}
	return &UnexpectedError{Err: err}
}
