package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	tls "github.com/refraction-networking/utls"
	"github.com/use-agent/audit-seo/config"
)

const maxRedirects = 10

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to
// http/1.1 only. Go's http.Transport cannot speak h2 over a utls conn.
var (
	chromeH1Once sync.Once
	chromeH1Spec tls.ClientHelloSpec
	chromeH1Err  error
)

func loadChromeH1Spec() (*tls.ClientHelloSpec, error) {
	chromeH1Once.Do(func() {
		spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
		if err != nil {
			chromeH1Err = fmt.Errorf("fetcher: build chrome tls spec: %w", err)
			return
		}
		for i, ext := range spec.Extensions {
			if alpn, ok := ext.(*tls.ALPNExtension); ok {
				alpn.AlpnProtocols = []string{"http/1.1"}
				spec.Extensions[i] = alpn
				break
			}
		}
		chromeH1Spec = spec
	})
	if chromeH1Err != nil {
		return nil, chromeH1Err
	}
	return &chromeH1Spec, nil
}

// newHTTPClient builds the client used for every attempt. The dialer
// enforces the connect timeout; ResponseHeaderTimeout covers the wait for
// the server to start answering.
func newHTTPClient(cfg config.FetchConfig) (*http.Client, error) {
	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
	}

	switch cfg.TLSFingerprint {
	case "", "go":
	case "chrome":
		spec, err := loadChromeH1Spec()
		if err != nil {
			return nil, err
		}
		transport.ForceAttemptHTTP2 = false
		transport.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("fetcher: apply tls spec: %w", err)
			}
			if cfg.ConnectTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
				defer cancel()
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		}
	default:
		return nil, fmt.Errorf("fetcher: unknown tls fingerprint %q", cfg.TLSFingerprint)
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}, nil
}
