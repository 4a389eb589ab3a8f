package trade

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantgate/quantgate/internal/credentials"
)

type mockVenueClient struct {
	validateCalls int
	submitCalls   int
	lastRequest   *Request

	validateRaw json.RawMessage
	validateErr error
	placed      *PlacedOrder
	submitErr   error
}

func (m *mockVenueClient) ValidateOrder(ctx context.Context, req *Request) (json.RawMessage, error) {
	m.validateCalls++
	m.lastRequest = req
	return m.validateRaw, m.validateErr
}

func (m *mockVenueClient) SubmitOrder(ctx context.Context, req *Request) (*PlacedOrder, error) {
	m.submitCalls++
	m.lastRequest = req
	return m.placed, m.submitErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testResolver(key, secret string) (*credentials.Credentials, error) {
	return &credentials.Credentials{APIKey: "k", APISecret: "s"}, nil
}

func newTestExecutor(client *mockVenueClient, factoryCalls *int) *Executor {
	factory := func(creds *credentials.Credentials, venue Venue) (VenueClient, error) {
		if factoryCalls != nil {
			*factoryCalls++
		}
		return client, nil
	}
	return NewExecutor(factory, testLogger(), WithResolver(testResolver))
}

func TestExecutor_DryRunEchoesNormalizedRequest(t *testing.T) {
	client := &mockVenueClient{validateRaw: json.RawMessage("{}")}
	executor := newTestExecutor(client, nil)

	result, err := executor.Execute(context.Background(), Params{
		Symbol: "btcusdt", Side: "buy", Type: OrderTypeMarket, Quantity: 0.001,
	}, Mode{Venue: VenueTestnet, DryRun: true}, nil)

	require.NoError(t, err)
	require.NotNil(t, result.Validation)
	assert.True(t, result.Validation.Accepted)
	assert.Equal(t, "BTCUSDT", result.Validation.Request.Symbol)
	assert.Equal(t, SideBuy, result.Validation.Request.Side)
	assert.Nil(t, result.Placed)

	// Dry runs must never touch the live submission operation.
	assert.Equal(t, 1, client.validateCalls)
	assert.Zero(t, client.submitCalls)
}

func TestExecutor_ValidationFailureSkipsClient(t *testing.T) {
	client := &mockVenueClient{}
	factoryCalls := 0
	executor := newTestExecutor(client, &factoryCalls)

	_, err := executor.Execute(context.Background(), Params{
		Symbol: "BTCUSDT", Side: "BUY", Type: OrderTypeLimit, Quantity: 0.001, Price: -5,
	}, Mode{Venue: VenueTestnet, DryRun: true}, nil)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, ReasonMissingOrInvalidPrice, vErr.Reason)

	assert.Zero(t, factoryCalls)
	assert.Zero(t, client.validateCalls)
	assert.Zero(t, client.submitCalls)
}

func TestExecutor_LiveSubmitReturnsPlacedOrder(t *testing.T) {
	client := &mockVenueClient{placed: &PlacedOrder{OrderID: "12345", Raw: json.RawMessage(`{"orderId":12345}`)}}
	executor := newTestExecutor(client, nil)

	result, err := executor.Execute(context.Background(), Params{
		Symbol: "BTCUSDT", Side: "BUY", Type: OrderTypeMarket, Quantity: 0.001,
	}, Mode{Venue: VenueLive, DryRun: false}, nil)

	require.NoError(t, err)
	require.NotNil(t, result.Placed)
	assert.Equal(t, "12345", result.Placed.OrderID)
	assert.Equal(t, 1, client.submitCalls)
	assert.Zero(t, client.validateCalls)
}

func TestExecutor_VenueRejectionPassedThroughVerbatim(t *testing.T) {
	client := &mockVenueClient{validateErr: &RejectedError{Code: -2019, Message: "margin insufficient"}}
	executor := newTestExecutor(client, nil)

	_, err := executor.Execute(context.Background(), Params{
		Symbol: "BTCUSDT", Side: "BUY", Type: OrderTypeMarket, Quantity: 0.001,
	}, Mode{Venue: VenueTestnet, DryRun: true}, nil)

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "margin insufficient", rejected.Message)
}

func TestExecutor_MissingCredentialsBeforeAnyClient(t *testing.T) {
	t.Setenv(credentials.EnvAPIKey, "")
	t.Setenv(credentials.EnvAPISecret, "")

	client := &mockVenueClient{}
	factoryCalls := 0
	factory := func(creds *credentials.Credentials, venue Venue) (VenueClient, error) {
		factoryCalls++
		return client, nil
	}
	executor := NewExecutor(factory, testLogger())

	_, err := executor.Execute(context.Background(), Params{
		Symbol: "BTCUSDT", Side: "BUY", Type: OrderTypeMarket, Quantity: 0.001,
	}, Mode{Venue: VenueTestnet, DryRun: true}, nil)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, credentials.ErrMissingCredential)

	assert.Zero(t, factoryCalls)
	assert.Zero(t, client.validateCalls)
	assert.Zero(t, client.submitCalls)
}

func TestExecutor_FactoryFailureIsConfigurationError(t *testing.T) {
	factory := func(creds *credentials.Credentials, venue Venue) (VenueClient, error) {
		return nil, errors.New("bad transport")
	}
	executor := NewExecutor(factory, testLogger(), WithResolver(testResolver))

	_, err := executor.Execute(context.Background(), Params{
		Symbol: "BTCUSDT", Side: "BUY", Type: OrderTypeMarket, Quantity: 0.001,
	}, Mode{Venue: VenueTestnet, DryRun: true}, nil)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "bad transport")
}

func TestExecutor_VenueErrorPassedThrough(t *testing.T) {
	client := &mockVenueClient{submitErr: &VenueError{StatusCode: 429, Message: "Too many requests"}}
	executor := newTestExecutor(client, nil)

	_, err := executor.Execute(context.Background(), Params{
		Symbol: "BTCUSDT", Side: "SELL", Type: OrderTypeMarket, Quantity: 0.001,
	}, Mode{Venue: VenueLive, DryRun: false}, nil)

	var venueErr *VenueError
	require.ErrorAs(t, err, &venueErr)
	assert.Equal(t, 429, venueErr.StatusCode)
}

func TestExecutor_UnrecognizedFailureWrappedNotSwallowed(t *testing.T) {
	client := &mockVenueClient{submitErr: errors.New("connection reset by peer")}
	executor := newTestExecutor(client, nil)

	_, err := executor.Execute(context.Background(), Params{
		Symbol: "BTCUSDT", Side: "BUY", Type: OrderTypeMarket, Quantity: 0.001,
	}, Mode{Venue: VenueLive, DryRun: false}, nil)

	var unexpected *UnexpectedError
	require.ErrorAs(t, err, &unexpected)
	assert.Contains(t, err.Error(), "connection reset by peer")
}

func TestExecutor_ExplicitCredentialsOverrideEnvironment(t *testing.T) {
	t.Setenv(credentials.EnvAPIKey, "env-key")
	t.Setenv(credentials.EnvAPISecret, "env-secret")

	var seen *credentials.Credentials
	factory := func(creds *credentials.Credentials, venue Venue) (VenueClient, error) {
		seen = creds
		return &mockVenueClient{validateRaw: json.RawMessage("{}")}, nil
	}
	executor := NewExecutor(factory, testLogger())

	_, err := executor.Execute(context.Background(), Params{
		Symbol: "BTCUSDT", Side: "BUY", Type: OrderTypeMarket, Quantity: 0.001,
	}, Mode{Venue: VenueTestnet, DryRun: true}, &credentials.Credentials{
		APIKey: "explicit-key", APISecret: "explicit-secret",
	})

	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "explicit-key", seen.APIKey)
	assert.Equal(t, "explicit-secret", string(seen.APISecret))
}

func TestExecutor_LimitRequestShape(t *testing.T) {
	client := &mockVenueClient{validateRaw: json.RawMessage("{}")}
	executor := newTestExecutor(client, nil)

	_, err := executor.Execute(context.Background(), Params{
		Symbol: "ethusdt", Side: "sell", Type: OrderTypeLimit,
		Quantity: 0.5, Price: 2000, ReduceOnly: true, TimeInForce: TimeInForceIOC,
	}, Mode{Venue: VenueTestnet, DryRun: true}, nil)

	require.NoError(t, err)
	require.NotNil(t, client.lastRequest)
	assert.Equal(t, "ETHUSDT", client.lastRequest.Symbol)
	assert.Equal(t, OrderTypeLimit, client.lastRequest.Type)
	assert.Equal(t, 2000.0, client.lastRequest.Price)
	assert.Equal(t, TimeInForceIOC, client.lastRequest.TimeInForce)
	assert.True(t, client.lastRequest.ReduceOnly)
}
