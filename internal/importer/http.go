package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/studybuddy/pkg/logger"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 4 << 10

// HTTPSink posts records to POST /students on a running service. The service
// assigns new ids; the CSV id is only logged.
type HTTPSink struct {
	client *http.Client
	url    string
	logger logger.Logger
}

// NewHTTPSink returns a sink for the service at baseURL.
func NewHTTPSink(baseURL string, timeout time.Duration) *HTTPSink {
	return &HTTPSink{
		client: &http.Client{Timeout: timeout},
		url:    strings.TrimRight(baseURL, "/") + "/students",
		logger: logger.Named("importer"),
	}
}

type registerResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Submit implements Sink.
func (s *HTTPSink) Submit(ctx context.Context, rec Record) error {
	body, err := json.Marshal(rec.Registration)
	if err != nil {
		return fmt.Errorf("failed to marshal registration: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil && e.Message != "" {
			return fmt.Errorf("%w: %d %s: %s", ErrRejected, resp.StatusCode, e.Code, e.Message)
		}
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	var ack registerResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	s.logger.Debug(ctx, "registered", logger.String("csvID", rec.StudentID), logger.String("id", ack.ID))
	return nil
}
