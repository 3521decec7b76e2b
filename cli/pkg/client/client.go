package client

import (
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/emrealmaoglu/trailium/cli/pkg/config"
	"github.com/emrealmaoglu/trailium/cli/pkg/logger"
)

const userAgent = "Trailium-CLI/0.1.0"

var httpClient *resty.Client

// Init builds the HTTP client from api.base_url and api.timeout
func Init() {
	httpClient = newClient()
}

func newClient() *resty.Client {
	c := resty.New()
	c.SetBaseURL(config.GetString("api.base_url"))
	c.SetTimeout(time.Duration(config.GetInt("api.timeout")) * time.Second)
	c.SetHeader("User-Agent", userAgent)
	c.SetHeader("Accept", "application/json")

	c.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})
	c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response",
			"status", resp.StatusCode(),
			"url", resp.Request.URL,
			"duration", resp.Time())
		return nil
	})
	return c
}

// GetClient returns the HTTP client
func GetClient() *resty.Client {
	if httpClient == nil {
		Init()
	}
	return httpClient
}

// SetAuthToken sets the bearer token sent with every request
func SetAuthToken(token string) {
	GetClient().SetAuthToken(token)
}

// ClearAuthToken drops the bearer token
func ClearAuthToken() {
	GetClient().SetAuthToken("")
}
