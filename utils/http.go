// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// DefaultHTTPTimeout bounds outbound calls to the price feed.
const DefaultHTTPTimeout = 30 * time.Second

func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}
