package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cross-asset-gateway/internal/core/ports"

	"github.com/rs/zerolog"
)

// CallbackPayload is the JSON structure delivered to the client callback URL.
type CallbackPayload struct {
	QueryHash     string `json:"query_hash"`
	RequestDigest string `json:"request_digest"`
	Result        []byte `json:"result"`
	Timestamp     int64  `json:"timestamp"`
	Signature     string `json:"signature"`
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// callbackService implements ports.CallbackInvoker over HTTP. The caller
// bounds the delivery through the context; a single signed POST is attempted
// and any failure is returned as-is for the caller to record.
type callbackService struct {
	sigSvc     ports.SignatureService
	secretKey  string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewCallbackService creates a new callback invoker.
func NewCallbackService(
	sigSvc ports.SignatureService,
	secretKey string,
	httpClient HTTPClient,
	log zerolog.Logger,
) ports.CallbackInvoker {
	return &callbackService{
		sigSvc:     sigSvc,
		secretKey:  secretKey,
		httpClient: httpClient,
		log:        log,
	}
}

// Invoke signs and posts the result payload to the client's callback URL.
func (s *callbackService) Invoke(ctx context.Context, cb ports.CallbackRequest) error {
	body := CallbackPayload{
		QueryHash:     cb.QueryHash.Hex(),
		RequestDigest: cb.RequestDigest.Hex(),
		Result:        cb.Result,
		Timestamp:     time.Now().Unix(),
	}
	unsigned, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal callback payload: %w", err)
	}
	body.Signature = s.sigSvc.Sign(s.secretKey, string(unsigned))

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal signed payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cb.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver callback: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}

	s.log.Debug().
		Str("hash", cb.QueryHash.Hex()).
		Str("url", cb.URL).
		Int("status", resp.StatusCode).
		Msg("callback delivered")
	return nil
}
