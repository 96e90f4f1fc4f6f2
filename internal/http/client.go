package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"

	"golang.org/x/net/http2"
)

// enableHTTP2 turns on HTTP/2 for direct connections. Proxied transports stay on
// HTTP/1.1 since many corporate proxies mishandle multiplexed streams.
// DISABLE_HTTP2=true forces HTTP/1.1 everywhere.
func enableHTTP2(tr *nethttp.Transport) {
	if os.Getenv("DISABLE_HTTP2") == "true" {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
		return
	}
	tr.ForceAttemptHTTP2 = true
	_ = http2.ConfigureTransport(tr)
}
