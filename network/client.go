// Package network provides the HTTP client shared by the backend API and media downloads.
package network

import (
	"net/http"
	"time"
)

// Client is the process-wide HTTP client. Its timeout is the only time limit
// applied to backend requests.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 20
	t.MaxIdleConnsPerHost = 10
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	return t
}
