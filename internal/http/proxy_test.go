package http

import (
	"net/http"
	"net/url"
	"testing"

	ntlmssp "github.com/Azure/go-ntlmssp"

	"github.com/rescale/rescale-browse/internal/config"
)

func TestProxyFuncWithBypass(t *testing.T) {
	proxyURL, _ := url.Parse("http://proxy.corp:8080")

	tests := []struct {
		name       string
		noProxy    string
		url        string
		wantBypass bool
	}{
		{"empty list always proxies", "", "https://api.example.com/data", false},
		{"wildcard subdomain", "*.example.com", "https://api.example.com/data", true},
		{"bare domain covers subdomains", "example.com", "https://api.example.com/data", true},
		{"cidr", "10.0.0.0/8", "http://10.1.2.3:8080/api", true},
		{"multiple patterns", "*.example.com, 192.168.0.0/16, internal.corp", "http://192.168.1.100/api", true},
		{"non-matching host", "*.internal.corp,10.0.0.0/8", "https://platform.rescale.com/api/v3/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", tt.url, nil)
			result, err := proxyFuncWithBypass(proxyURL, tt.noProxy)(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantBypass && result != nil {
				t.Errorf("expected bypass for %s, got %v", tt.url, result)
			}
			if !tt.wantBypass && (result == nil || result.Host != "proxy.corp:8080") {
				t.Errorf("expected proxy.corp:8080 for %s, got %v", tt.url, result)
			}
		})
	}
}

func TestBuildProxyURL(t *testing.T) {
	u := buildProxyURL(&config.Config{ProxyHost: "proxy.corp", ProxyUser: "alice"})
	if u.Host != "proxy.corp:8080" {
		t.Errorf("default port: got %s", u.Host)
	}
	if u.User != nil {
		t.Error("credentials without a password must not be embedded")
	}

	u = buildProxyURL(&config.Config{ProxyHost: "proxy.corp", ProxyPort: 3128, ProxyUser: "alice", ProxyPassword: "pw"})
	if u.Host != "proxy.corp:3128" || u.User.Username() != "alice" {
		t.Errorf("got %s", u.String())
	}
}

func TestConfigureHTTPClient(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantErr  bool
		wantNTLM bool
		proxied  bool
	}{
		{name: "no proxy", cfg: config.Config{ProxyMode: "no-proxy"}},
		{name: "basic", cfg: config.Config{ProxyMode: "basic", ProxyHost: "proxy.corp"}, proxied: true},
		{name: "ntlm", cfg: config.Config{ProxyMode: "ntlm", ProxyHost: "proxy.corp"}, wantNTLM: true},
		{name: "basic without host falls back", cfg: config.Config{ProxyMode: "basic"}},
		{name: "unsupported", cfg: config.Config{ProxyMode: "socks5"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := ConfigureHTTPClient(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.wantNTLM {
				if _, ok := client.Transport.(ntlmssp.Negotiator); !ok {
					t.Errorf("expected NTLM negotiator, got %T", client.Transport)
				}
				return
			}
			tr, ok := client.Transport.(*http.Transport)
			if !ok {
				t.Fatalf("expected *http.Transport, got %T", client.Transport)
			}
			if (tr.Proxy != nil) != tt.proxied {
				t.Errorf("proxy func set = %v, want %v", tr.Proxy != nil, tt.proxied)
			}
		})
	}
}

func TestNeedsProxyPassword(t *testing.T) {
	if !NeedsProxyPassword(&config.Config{ProxyMode: "NTLM", ProxyUser: "bob"}) {
		t.Error("ntlm with user and no password needs a prompt")
	}
	if NeedsProxyPassword(&config.Config{ProxyMode: "system", ProxyUser: "bob"}) {
		t.Error("system mode never prompts")
	}
}
