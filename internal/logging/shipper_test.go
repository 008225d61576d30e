package logging

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"

	"github.com/tinoosan/apishell/internal/config"
	"github.com/tinoosan/apishell/internal/metrics"
)

type ingest struct {
	mu      sync.Mutex
	records []map[string]any
	auth    []string
}

func (i *ingest) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	zr, err := gzip.NewReader(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var batch []map[string]any
	if err := json.NewDecoder(zr).Decode(&batch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	i.mu.Lock()
	i.records = append(i.records, batch...)
	i.auth = append(i.auth, r.Header.Get("Authorization"))
	i.mu.Unlock()
	w.WriteHeader(http.StatusAccepted)
}

func TestShipperDeliversBatchesOnClose(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	in := &ingest{}
	srv := httptest.NewServer(in)
	defer srv.Close()

	sh := NewShipper(ShipperOptions{URL: srv.URL, Token: "tok", BatchSize: 2, FlushInterval: time.Hour, ErrorLog: io.Discard})
	l := New(Options{Format: config.FormatJSON}, io.Discard, sh)
	l.Info("one")
	l.Info("two")
	l.Info("three")

	if err := sh.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if len(in.records) != 3 {
		t.Fatalf("expected 3 shipped records got %d", len(in.records))
	}
	for i, want := range []string{"one", "two", "three"} {
		if in.records[i]["msg"] != want {
			t.Fatalf("record %d = %v want %q", i, in.records[i]["msg"], want)
		}
	}
	for _, a := range in.auth {
		if a != "Bearer tok" {
			t.Fatalf("unexpected authorization %q", a)
		}
	}
}

func TestShipperDropsWhenQueueFull(t *testing.T) {
	sh := newShipper(ShipperOptions{URL: "http://127.0.0.1:0", QueueSize: 1})
	before := testutil.ToFloat64(metrics.LogRecordsDropped)

	for i := 0; i < 3; i++ {
		n, err := sh.Write([]byte(`{"msg":"x"}` + "\n"))
		if err != nil || n == 0 {
			t.Fatalf("Write must not fail: n=%d err=%v", n, err)
		}
	}
	if got := testutil.ToFloat64(metrics.LogRecordsDropped) - before; got != 2 {
		t.Fatalf("expected 2 dropped records got %v", got)
	}
}

func TestShipperCountsFailedDelivery(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	before := testutil.ToFloat64(metrics.LogRecordsDropped)
	sh := NewShipper(ShipperOptions{URL: srv.URL, FlushInterval: time.Hour, ErrorLog: io.Discard})
	_, _ = sh.Write([]byte(`{"msg":"a"}`))
	_, _ = sh.Write([]byte(`{"msg":"b"}`))
	if err := sh.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := testutil.ToFloat64(metrics.LogRecordsDropped) - before; got != 2 {
		t.Fatalf("expected 2 dropped records got %v", got)
	}

	// Writes after close are dropped immediately.
	_, _ = sh.Write([]byte(`{"msg":"late"}`))
	if got := testutil.ToFloat64(metrics.LogRecordsDropped) - before; got != 3 {
		t.Fatalf("expected late write to be dropped, got %v", got)
	}
}

func TestShipperCountsLinesLeftAfterStop(t *testing.T) {
	// No delivery loop runs, so queued lines can only be discarded.
	sh := newShipper(ShipperOptions{URL: "http://127.0.0.1:0", QueueSize: 4})
	before := testutil.ToFloat64(metrics.LogRecordsDropped)

	_, _ = sh.Write([]byte(`{"msg":"a"}`))
	_, _ = sh.Write([]byte(`{"msg":"b"}`))
	if err := sh.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := testutil.ToFloat64(metrics.LogRecordsDropped) - before; got != 2 {
		t.Fatalf("expected 2 dropped records got %v", got)
	}
	if n := len(sh.queue); n != 0 {
		t.Fatalf("expected empty queue got %d", n)
	}
}

func TestShipperConcurrentWritesDuringClose(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var in ingest
	srv := httptest.NewServer(&in)
	defer srv.Close()

	before := testutil.ToFloat64(metrics.LogRecordsDropped)
	sh := NewShipper(ShipperOptions{URL: srv.URL, FlushInterval: time.Hour})

	const writers, lines = 8, 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < lines; j++ {
				_, _ = sh.Write([]byte(`{"msg":"x"}`))
			}
		}()
	}
	if err := sh.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	wg.Wait()

	in.mu.Lock()
	delivered := len(in.records)
	in.mu.Unlock()
	dropped := int(testutil.ToFloat64(metrics.LogRecordsDropped) - before)
	if delivered+dropped != writers*lines {
		t.Fatalf("lost lines: delivered %d dropped %d of %d", delivered, dropped, writers*lines)
	}
}
