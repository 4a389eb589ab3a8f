package trade

import (
	"fmt"
	"math"
	"strings"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

type TimeInForce string

const (
	TimeInForceGTC TimeInForce = "GTC"
	TimeInForceIOC TimeInForce = "IOC"
	TimeInForceFOK TimeInForce = "FOK"
)

// DefaultQuoteSuffix is the quote asset expected on USDT-M futures symbols.
const DefaultQuoteSuffix = "USDT"

// Params carries raw, caller-supplied order intent before validation.
// Price is ignored for market orders; zero means absent.
type Params struct {
	Symbol      string
	Side        string
	Type        OrderType
	Quantity    float64
	Price       float64
	ReduceOnly  bool
	TimeInForce TimeInForce
}

// Request is a normalized, validated order ready for the venue.
// Price and TimeInForce are set only for limit orders.
type Request struct {
	Symbol      string
	Side        Side
	Type        OrderType
	Quantity    float64
	Price       float64
	ReduceOnly  bool
	TimeInForce TimeInForce
}

// NormalizeSymbol uppercases and trims a symbol. Idempotent.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ParseOrderType parses a user-supplied order type string.
func ParseOrderType(s string) (OrderType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MARKET":
		return OrderTypeMarket, nil
	case "LIMIT":
		return OrderTypeLimit, nil
	default:
		return "", fmt.Errorf("order type must be market or limit, got: %s", s)
	}
}

// ParseTimeInForce parses a user-supplied time-in-force string.
// Empty input defaults to GTC.
func ParseTimeInForce(s string) (TimeInForce, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "GTC":
		return TimeInForceGTC, nil
	case "IOC":
		return TimeInForceIOC, nil
	case "FOK":
		return TimeInForceFOK, nil
	default:
		return "", fmt.Errorf("time in force must be GTC, IOC or FOK, got: %s", s)
	}
}

// Validate normalizes and validates raw order parameters without touching the
// network. Rules apply in order and the first failure wins. The returned
// warnings never block execution: the quote-suffix check only cautions, since
// symbols quoted in other assets can still be valid.
func Validate(p Params, quoteSuffix string) (*Request, []string, error) {
	side := Side(strings.ToUpper(strings.TrimSpace(p.Side)))
	if side != SideBuy && side != SideSell {
		return nil, nil, &ValidationError{
			Reason:  ReasonInvalidSide,
			Message: fmt.Sprintf("side must be BUY or SELL, got: %s", p.Side),
		}
	}

	if math.IsNaN(p.Quantity) || math.IsInf(p.Quantity, 0) || p.Quantity <= 0 {
		return nil, nil, &ValidationError{
			Reason:  ReasonInvalidQuantity,
			Message: fmt.Sprintf("quantity must be positive, got: %v", p.Quantity),
		}
	}

	req := &Request{
		Symbol:     NormalizeSymbol(p.Symbol),
		Side:       side,
		Type:       p.Type,
		Quantity:   p.Quantity,
		ReduceOnly: p.ReduceOnly,
	}

	if p.Type == OrderTypeLimit {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price <= 0 {
			return nil, nil, &ValidationError{
				Reason:  ReasonMissingOrInvalidPrice,
				Message: fmt.Sprintf("limit orders need a positive price, got: %v", p.Price),
			}
		}
		req.Price = p.Price
		req.TimeInForce = p.TimeInForce
		if req.TimeInForce == "" {
			req.TimeInForce = TimeInForceGTC
		}
	}

	if req.Symbol == "" {
		return nil, nil, &ValidationError{
			Reason:  ReasonEmptySymbol,
			Message: "symbol cannot be empty",
		}
	}

	var warnings []string
	if quoteSuffix != "" && (!strings.HasSuffix(req.Symbol, quoteSuffix) || len(req.Symbol) <= len(quoteSuffix)) {
		warnings = append(warnings, fmt.Sprintf("symbol %s may not be valid for %s-quoted futures", req.Symbol, quoteSuffix))
	}

	return req, warnings, nil
}
