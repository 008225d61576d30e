package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/tinoosan/apishell/internal/metrics"
)

// ShipperOptions configures a Shipper. Zero values select the defaults.
type ShipperOptions struct {
	URL           string
	Token         string
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	Client        *http.Client
	// ErrorLog receives delivery diagnostics; defaults to os.Stderr.
	ErrorLog io.Writer
}

// Shipper is an io.Writer that forwards JSON log lines to a remote ingest
// endpoint in gzip-compressed batches. Write never blocks: when the queue is
// full the line is dropped and counted.
type Shipper struct {
	opts  ShipperOptions
	queue chan []byte
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once

	// mu orders enqueues before close so no line lands after the final drain.
	mu     sync.RWMutex
	closed bool
}

// NewShipper starts the delivery loop.
func NewShipper(opts ShipperOptions) *Shipper {
	s := newShipper(opts)
	s.wg.Add(1)
	go s.run()
	return s
}

func newShipper(opts ShipperOptions) *Shipper {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 10000
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = time.Second
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 5 * time.Second}
	}
	if opts.ErrorLog == nil {
		opts.ErrorLog = os.Stderr
	}
	return &Shipper{
		opts:  opts,
		queue: make(chan []byte, opts.QueueSize),
		done:  make(chan struct{}),
	}
}

// Write enqueues one log line. It always reports success.
func (s *Shipper) Write(p []byte) (int, error) {
	line := bytes.TrimRight(p, "\n")
	if len(line) == 0 {
		return len(p), nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		metrics.LogRecordsDropped.Inc()
		return len(p), nil
	}
	select {
	case s.queue <- bytes.Clone(line):
	default:
		metrics.LogRecordsDropped.Inc()
	}
	return len(p), nil
}

// Close stops accepting lines, flushes what is queued and waits for delivery
// or for ctx to end.
func (s *Shipper) Close(ctx context.Context) error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
	})
	stopped := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
		s.discard()
		s.opts.Client.CloseIdleConnections()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// discard counts lines still queued once delivery has stopped.
func (s *Shipper) discard() {
	for {
		select {
		case <-s.queue:
			metrics.LogRecordsDropped.Inc()
		default:
			return
		}
	}
}

func (s *Shipper) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.opts.FlushInterval)
	defer ticker.Stop()

	batch := make([][]byte, 0, s.opts.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := s.send(batch); err != nil {
			metrics.LogRecordsDropped.Add(float64(len(batch)))
			fmt.Fprintf(s.opts.ErrorLog, "log shipper: dropped %d records: %v\n", len(batch), err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case line := <-s.queue:
			batch = append(batch, line)
			if len(batch) >= s.opts.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for {
				select {
				case line := <-s.queue:
					batch = append(batch, line)
					if len(batch) >= s.opts.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// send posts batch as a JSON array.
func (s *Shipper) send(batch [][]byte) error {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte{'['})
	for i, line := range batch {
		if i > 0 {
			_, _ = zw.Write([]byte{','})
		}
		_, _ = zw.Write(line)
	}
	_, _ = zw.Write([]byte{']'})
	if err := zw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.opts.URL, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	if s.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.opts.Token)
	}
	resp, err := s.opts.Client.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ingest returned HTTP %d", resp.StatusCode)
	}
	return nil
}
