package request

import (
	"net/http"

	"github.com/go-resty/resty/v2"
)

// Request is the shared REST client. No retries: order submission is a
// single-attempt contract, and retrying blindly risks duplicate fills.
var Request = resty.New().SetTransport(&http.Transport{
	Proxy: http.ProxyFromEnvironment,
})
