package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/quantgate/quantgate/internal/credentials"
	"github.com/quantgate/quantgate/internal/trade"
	"github.com/quantgate/quantgate/internal/utils/request"
)

const (
	liveBaseURL    = "https://fapi.binance.com"
	testnetBaseURL = "https://testnet.binancefuture.com"

	testOrderPath = "/fapi/v1/order/test"

	defaultRecvWindow = 5000
)

// Client implements trade.VenueClient against Binance USDT-M Futures.
// Live submission goes through the go-binance futures client; the
// validate-only endpoint is not exposed by that library, so dry runs
// issue a signed REST call directly.
type Client struct {
	futures    *futures.Client
	rest       *resty.Client
	signer     *signer
	apiKey     string
	baseURL    string
	recvWindow int64
	limiter    *rate.Limiter
	log        *slog.Logger
}

type Option func(*Client)

// WithRecvWindow sets the request validity window in milliseconds for
// signed calls.
func WithRecvWindow(ms int64) Option {
	return func(c *Client) {
		c.recvWindow = ms
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient builds a client bound to the given venue and credentials.
// Venue must be passed explicitly; there is no implicit mainnet default.
func NewClient(creds *credentials.Credentials, venue trade.Venue, opts ...Option) (*Client, error) {
	if creds == nil {
		return nil, errors.New("credentials are required")
	}

	var baseURL string
	switch venue {
	case trade.VenueTestnet:
		baseURL = testnetBaseURL
	case trade.VenueLive:
		baseURL = liveBaseURL
	default:
		return nil, fmt.Errorf("unknown venue: %q", venue)
	}

	fc := futures.NewClient(creds.APIKey, string(creds.APISecret))
	fc.BaseURL = baseURL

	c := &Client{
		futures:    fc,
		rest:       request.Request,
		signer:     newSigner(string(creds.APISecret)),
		apiKey:     creds.APIKey,
		baseURL:    baseURL,
		recvWindow: defaultRecvWindow,
		// Futures order endpoints allow 300 orders per 10s; pace well below that
		// so the adapter stays safe inside a long-lived service.
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ValidateOrder calls POST /fapi/v1/order/test, which checks the order
// against exchange rules without creating a position.
func (c *Client) ValidateOrder(ctx context.Context, req *trade.Request) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &trade.VenueError{Message: "request canceled before dispatch", Err: err}
	}

	c.log.Debug("sending test order", "symbol", req.Symbol, "base_url", c.baseURL)

	vals := orderParams(req)
	vals.Set("recvWindow", strconv.FormatInt(c.recvWindow, 10))
	vals.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))

	query := vals.Encode()
	query += "&signature=" + c.signer.sign(query)

	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("X-MBX-APIKEY", c.apiKey).
		Post(c.baseURL + testOrderPath + "?" + query)
	if err != nil {
		return nil, &trade.VenueError{Message: "test order request failed", Err: err}
	}

	if resp.IsSuccess() {
		body := resp.Body()
		if len(body) == 0 {
			body = []byte("{}")
		}
		return json.RawMessage(body), nil
	}

	var apiErr struct {
		Code int64  `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(resp.Body(), &apiErr); err != nil {
		return nil, &trade.VenueError{
			StatusCode: resp.StatusCode(),
			Message:    string(resp.Body()),
		}
	}
	return nil, classifyAPIError(resp.StatusCode(), apiErr.Code, apiErr.Msg)
}

// SubmitOrder places a real order through the futures client.
func (c *Client) SubmitOrder(ctx context.Context, req *trade.Request) (*trade.PlacedOrder, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &trade.VenueError{Message: "request canceled before dispatch", Err: err}
	}

	c.log.Debug("sending order", "symbol", req.Symbol, "base_url", c.baseURL)

	svc := c.futures.NewCreateOrderService().
		Symbol(req.Symbol).
		Side(sideType(req.Side)).
		Type(orderType(req.Type)).
		Quantity(formatDecimal(req.Quantity))

	if req.Type == trade.OrderTypeLimit {
		svc.Price(formatDecimal(req.Price))
		svc.TimeInForce(tifType(req.TimeInForce))
	}
	if req.ReduceOnly {
		svc.ReduceOnly(true)
	}

	res, err := svc.Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) {
			return nil, classifyAPIError(0, apiErr.Code, apiErr.Message)
		}
		return nil, &trade.VenueError{Message: "order request failed", Err: err}
	}

	raw, _ := json.Marshal(res)
	return &trade.PlacedOrder{
		OrderID: strconv.FormatInt(res.OrderID, 10),
		Raw:     raw,
	}, nil
}

// orderParams maps a validated request onto the venue's wire vocabulary.
// reduceOnly is attached only when set; timeInForce only for limit orders.
func orderParams(req *trade.Request) url.Values {
	vals := url.Values{}
	vals.Set("symbol", req.Symbol)
	vals.Set("side", string(req.Side))
	vals.Set("type", string(req.Type))
	vals.Set("quantity", formatDecimal(req.Quantity))

	if req.Type == trade.OrderTypeLimit {
		vals.Set("price", formatDecimal(req.Price))
		vals.Set("timeInForce", string(req.TimeInForce))
	}
	if req.ReduceOnly {
		vals.Set("reduceOnly", "true")
	}
	return vals
}

// classifyAPIError splits venue failures into order rejections and
// communication errors. Auth, signature, timing, rate-limit and server
// errors (-1000..-1099, -2014, -2015, HTTP 401/403/418/429/5xx) are
// communication failures; everything else rejected the order contents.
func classifyAPIError(status int, code int64, msg string) error {
	switch status {
	case 401, 403, 418, 429:
		return &trade.VenueError{StatusCode: status, Code: code, Message: msg}
	}
	if status >= 500 {
		return &trade.VenueError{StatusCode: status, Code: code, Message: msg}
	}

	if (code <= -1000 && code > -1100) || code == -2014 || code == -2015 {
		return &trade.VenueError{StatusCode: status, Code: code, Message: msg}
	}

	return &trade.RejectedError{Code: code, Message: msg}
}

func sideType(s trade.Side) futures.SideType {
	if s == trade.SideSell {
		return futures.SideTypeSell
	}
	return futures.SideTypeBuy
}

func orderType(t trade.OrderType) futures.OrderType {
	if t == trade.OrderTypeLimit {
		return futures.OrderTypeLimit
	}
	return futures.OrderTypeMarket
}

func tifType(t trade.TimeInForce) futures.TimeInForceType {
	switch t {
	case trade.TimeInForceIOC:
		return futures.TimeInForceTypeIOC
	case trade.TimeInForceFOK:
		return futures.TimeInForceTypeFOK
	default:
		return futures.TimeInForceTypeGTC
	}
}

func formatDecimal(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
