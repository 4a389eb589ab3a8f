package trade

import (
	"context"
	"encoding/json"

	"github.com/quantgate/quantgate/internal/credentials"
)

type Venue string

const (
	VenueTestnet Venue = "TESTNET"
	VenueLive    Venue = "LIVE"
)

// Mode selects the venue and whether the call risks capital.
// DryRun=false on VenueLive is the only combination that places real
// mainnet orders; the surrounding CLI gates both behind confirmations.
type Mode struct {
	Venue  Venue
	DryRun bool
}

// ValidationOutcome is the result of a dry-run execution: the venue accepted
// the order parameters without creating a position.
type ValidationOutcome struct {
	Accepted      bool
	Request       Request
	VenueResponse json.RawMessage
}

// PlacedOrder is the result of a live submission.
type PlacedOrder struct {
	OrderID string
	Raw     json.RawMessage
}

// Result holds exactly one of the two execution outcomes.
type Result struct {
	Validation *ValidationOutcome
	Placed     *PlacedOrder
}

// VenueClient is the capability surface the executor needs from an exchange:
// a validate-only operation and a real submission operation.
type VenueClient interface {
	// ValidateOrder checks the order against exchange rules without
	// executing it, returning the venue's raw acknowledgment.
	ValidateOrder(ctx context.Context, req *Request) (json.RawMessage, error)

	// SubmitOrder places a real order and returns the venue-assigned ID.
	SubmitOrder(ctx context.Context, req *Request) (*PlacedOrder, error)
}

// ClientFactory builds a venue client bound to one venue and one credential
// set. Venue selection happens here and only here.
type ClientFactory func(creds *credentials.Credentials, venue Venue) (VenueClient, error)

// CredentialResolver resolves API credentials, with explicit values taking
// precedence over the environment.
type CredentialResolver func(explicitKey, explicitSecret string) (*credentials.Credentials, error)
