package httpclient

import (
	"net/http"

	"github.com/svenkata/TabChatAPI/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

var pooled = &http.Client{Transport: customTransport}

// Pooled returns the shared outbound client. The embedding and LLM providers
// hit the same few hosts on every task, so they reuse one connection pool
// instead of the default transport per SDK instance.
func Pooled() *http.Client {
	return pooled
}
