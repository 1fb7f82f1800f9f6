package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"sellerhub-agent/internal/domain/model"
	"sellerhub-agent/internal/domain/ports/adapter"
)

var _ adapter.JobEngine = (*Client)(nil)

// Client talks to the remote job engine over HTTP: multipart submissions,
// SSE progress streams and artifact downloads.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     *zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zerolog.Logger) *Client {
	l := logger.With().Str("component", "EngineClient").Logger()
	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		// No overall timeout on the shared client: stream connections are
		// long-lived. Submit and FetchArtifact bound themselves below.
		http: &http.Client{},
		log:  &l,
	}
}

func (c *Client) requestCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

type ackPayload struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	JobID   string `json:"jobId"`
}

// Submit posts the spreadsheet plus identifying fields to the type's
// submission endpoint and returns the engine's acknowledgment. The user
// field name comes from the descriptor: verification flows send userName,
// the others send usuario. That asymmetry is the server's contract.
func (c *Client) Submit(ctx context.Context, desc model.Descriptor, up adapter.Upload, token string) (*adapter.SubmitAck, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", up.FileName)
	if err != nil {
		return nil, fmt.Errorf("build multipart: %w", err)
	}
	if _, err := io.Copy(fw, up.Content); err != nil {
		return nil, fmt.Errorf("copy file into multipart: %w", err)
	}
	if err := w.WriteField(desc.UserField, up.User.UserName); err != nil {
		return nil, fmt.Errorf("write field %s: %w", desc.UserField, err)
	}
	if err := w.WriteField("sellerId", up.User.SellerID); err != nil {
		return nil, fmt.Errorf("write field sellerId: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart: %w", err)
	}

	ctx, cancel := c.requestCtx(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+desc.SubmitPath, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send submission: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var ack ackPayload
	// A non-JSON body on an error status still surfaces as the generic
	// message below, so the decode error is only fatal on success.
	decodeErr := json.Unmarshal(body, &ack)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if ack.Message != "" {
			return nil, fmt.Errorf("engine rejected submission: %s", ack.Message)
		}
		return nil, fmt.Errorf("engine rejected submission: status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode acknowledgment: %w, body: %s", decodeErr, string(body))
	}

	c.log.Debug().Str("path", desc.SubmitPath).Str("job_id", ack.JobID).Msg("submission acknowledged")
	return &adapter.SubmitAck{Status: ack.Status, Message: ack.Message, JobID: ack.JobID}, nil
}

// FetchArtifact downloads the raw spreadsheet produced by a completed job.
func (c *Client) FetchArtifact(ctx context.Context, desc model.Descriptor, serverJobID, token string) ([]byte, error) {
	ctx, cancel := c.requestCtx(ctx)
	defer cancel()
	url := fmt.Sprintf("%s%s/%s", c.baseURL, desc.DownloadPath, serverJobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artifact download failed: status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read artifact body: %w", err)
	}
	return b, nil
}
