package engine

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"sellerhub-agent/internal/domain/model"
	"sellerhub-agent/internal/domain/ports/adapter"
	"sellerhub-agent/internal/infra/metrics"
)

// errUnauthorized marks a dial rejected on header credentials, which
// triggers the query-string token fallback.
var errUnauthorized = errors.New("stream dial unauthorized")

// sseStream is one server-push connection scoped to a job. Frames are
// delivered on a channel in server-emission order; the channel closes when
// the transport ends, after which Err reports why. A closed stream is
// never redialed through the same value.
type sseStream struct {
	frames chan adapter.Frame
	cancel context.CancelFunc

	mu  sync.Mutex
	err error

	closeOnce sync.Once
}

func (s *sseStream) Frames() <-chan adapter.Frame { return s.frames }

func (s *sseStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *sseStream) Close() {
	s.closeOnce.Do(s.cancel)
}

func (s *sseStream) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// OpenStream dials the job's progress endpoint. Header bearer auth is
// attempted first; if the server rejects it (401/403) the dial is retried
// once with the ?token= query fallback, matching the wire contract of
// clients whose push transport cannot set headers.
func (c *Client) OpenStream(ctx context.Context, desc model.Descriptor, serverJobID, token string) (adapter.Stream, error) {
	streamURL := fmt.Sprintf("%s%s/%s", c.baseURL, desc.ReportPath, serverJobID)

	streamCtx, cancel := context.WithCancel(ctx)
	resp, err := c.dialSSE(streamCtx, streamURL, token, false)
	if errors.Is(err, errUnauthorized) {
		metrics.IncStreamAuthFallback()
		c.log.Debug().Str("job_id", serverJobID).Msg("header auth rejected, falling back to query token")
		resp, err = c.dialSSE(streamCtx, streamURL, token, true)
	}
	if err != nil {
		cancel()
		return nil, err
	}

	s := &sseStream{
		frames: make(chan adapter.Frame),
		cancel: cancel,
	}
	go s.read(streamCtx, resp)
	return s, nil
}

func (c *Client) dialSSE(ctx context.Context, rawURL, token string, queryAuth bool) (*http.Response, error) {
	dialURL := rawURL
	if queryAuth {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parse stream url: %w", err)
		}
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
		dialURL = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dialURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if !queryAuth {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dial stream: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		resp.Body.Close()
		if queryAuth {
			return nil, fmt.Errorf("stream rejected query token: status %d", resp.StatusCode)
		}
		return nil, errUnauthorized
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, fmt.Errorf("stream dial failed: status %d", resp.StatusCode)
	}
	return resp, nil
}

// read parses the SSE wire format: "data:" lines accumulate into one frame,
// a blank line dispatches it. Comment lines (":") and event/id/retry fields
// are transport noise and never surface. Empty or non-JSON data is still
// delivered; tolerating it is the consumer's policy.
func (s *sseStream) read(ctx context.Context, resp *http.Response) {
	defer resp.Body.Close()
	defer close(s.frames)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var data []byte
	dataSet := false
	for scanner.Scan() {
		line := scanner.Bytes()
		switch {
		case len(bytes.TrimSpace(line)) == 0:
			if !dataSet {
				continue
			}
			frame := adapter.Frame{Data: append([]byte(nil), data...)}
			select {
			case s.frames <- frame:
			case <-ctx.Done():
				return
			}
			data = data[:0]
			dataSet = false
		case bytes.HasPrefix(line, []byte("data:")):
			chunk := bytes.TrimPrefix(line, []byte("data:"))
			chunk = bytes.TrimPrefix(chunk, []byte(" "))
			if dataSet {
				data = append(data, '\n')
			}
			data = append(data, chunk...)
			dataSet = true
		default:
			// comment, event:, id:, retry: — ignored
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		s.setErr(fmt.Errorf("stream transport: %w", err))
		return
	}
	if ctx.Err() == nil {
		// Server closed the connection. The consumer decides whether that
		// is a failure (no terminal frame seen yet) or a normal end.
		s.setErr(errors.New("stream closed by server"))
	}
}
