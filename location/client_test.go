package location

import (
	"context"
	"errors"
	"net/http/httptrace"
	"sync"
	"testing"
	"time"
)

func TestConnTraceParallelDials(t *testing.T) {
	ct := &connTrace{}
	tr := ct.clientTrace()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr.DNSStart(httptrace.DNSStartInfo{Host: "example.com"})
			tr.ConnectStart("tcp", "192.0.2.1:443")
			time.Sleep(time.Millisecond)
			var err error
			if i%2 == 1 {
				err = errors.New("dial refused")
			}
			tr.ConnectDone("tcp", "192.0.2.1:443", err)
			tr.DNSDone(httptrace.DNSDoneInfo{})
			_ = ct.metrics()
		}(i)
	}
	wg.Wait()

	if m := ct.metrics(); m.TCP <= 0 || m.DNS < 0 {
		t.Errorf("metrics = %+v, want first dial timed", m)
	}
}

func TestGetJSONMetrics(t *testing.T) {
	srv, _ := serve(t, 200, `{"ok":true}`)
	var v struct{ OK bool }
	m, err := newTracedClient(time.Second).getJSON(context.Background(), srv.URL, &v)
	if err != nil {
		t.Fatal(err)
	}
	if !v.OK || m.Total <= 0 {
		t.Errorf("v=%+v metrics=%+v", v, m)
	}

	bad, _ := serve(t, 503, `{}`)
	m, err = newTracedClient(time.Second).getJSON(context.Background(), bad.URL, &v)
	if err == nil || m.Total != 0 {
		t.Errorf("503: err=%v total=%v", err, m.Total)
	}
}
