package location

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"sync"
	"time"

	"weatherwall/log"
)

const userAgent = "WeatherWallpaper/1.0"

// maxBody bounds how much of a response is read; both endpoints answer with
// a few hundred bytes.
const maxBody = 1 << 20

type fetchMetrics struct {
	DNS    time.Duration
	TCP    time.Duration
	TLS    time.Duration
	TTFB   time.Duration
	Total  time.Duration
	Reused bool
}

type tracedClient struct {
	client *http.Client
}

func newTracedClient(timeout time.Duration) *tracedClient {
	return &tracedClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        2,
				MaxIdleConnsPerHost: 1,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
	}
}

// connTrace collects fetchMetrics from httptrace callbacks. Dials to
// several addresses run in parallel, so callbacks may overlap and may still
// fire after the request has returned; only the first dial is timed.
type connTrace struct {
	mu      sync.Mutex
	m       fetchMetrics
	tcpDone bool

	dnsStart, tcpStart, tlsStart, wrote time.Time
}

func (t *connTrace) clientTrace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			t.mu.Lock()
			t.m.Reused = info.Reused
			t.mu.Unlock()
		},
		DNSStart: func(httptrace.DNSStartInfo) {
			t.mu.Lock()
			t.dnsStart = time.Now()
			t.mu.Unlock()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			t.mu.Lock()
			t.m.DNS = time.Since(t.dnsStart)
			t.mu.Unlock()
		},
		ConnectStart: func(_, _ string) {
			t.mu.Lock()
			if t.tcpStart.IsZero() {
				t.tcpStart = time.Now()
			}
			t.mu.Unlock()
		},
		ConnectDone: func(_, _ string, err error) {
			t.mu.Lock()
			if err == nil && !t.tcpDone {
				t.m.TCP = time.Since(t.tcpStart)
				t.tcpDone = true
			}
			t.mu.Unlock()
		},
		TLSHandshakeStart: func() {
			t.mu.Lock()
			t.tlsStart = time.Now()
			t.mu.Unlock()
		},
		TLSHandshakeDone: func(tls.ConnectionState, error) {
			t.mu.Lock()
			t.m.TLS = time.Since(t.tlsStart)
			t.mu.Unlock()
		},
		WroteRequest: func(httptrace.WroteRequestInfo) {
			t.mu.Lock()
			t.wrote = time.Now()
			t.mu.Unlock()
		},
		GotFirstResponseByte: func() {
			t.mu.Lock()
			if !t.wrote.IsZero() {
				t.m.TTFB = time.Since(t.wrote)
			}
			t.mu.Unlock()
		},
	}
}

func (t *connTrace) metrics() fetchMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m
}

// getJSON issues one GET and decodes the body into v. Non-2xx statuses are
// errors. There is no retry.
func (c *tracedClient) getJSON(ctx context.Context, url string, v any) (fetchMetrics, error) {
	ct := &connTrace{}
	start := time.Now()
	err := c.do(httptrace.WithClientTrace(ctx, ct.clientTrace()), url, v)
	m := ct.metrics()
	if err == nil {
		m.Total = time.Since(start)
	}
	return m, err
}

func (c *tracedClient) do(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return fmt.Errorf("GET %s: %s", req.URL.Host, resp.Status)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Host, err)
	}
	return nil
}

func (m fetchMetrics) log(source string) {
	log.Debugf("location: %s fetch total=%dms dns=%dms tcp=%dms tls=%dms ttfb=%dms reused=%v",
		source, m.Total.Milliseconds(), m.DNS.Milliseconds(), m.TCP.Milliseconds(),
		m.TLS.Milliseconds(), m.TTFB.Milliseconds(), m.Reused)
}
