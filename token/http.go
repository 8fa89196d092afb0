package token

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HTTPService sends token-service requests as JSON over HTTP. The remote
// service acknowledges with 2xx and later POSTs the Result to the callback
// URL; the acknowledgement carries no outcome.
type HTTPService struct {
	baseURL     string
	callbackURL string
	client      *http.Client
}

type httpRequestEnvelope struct {
	Request
	CallbackURL string `json:"callbackUrl"`
}

// NewHTTPService builds a client for the token service at baseURL that asks
// for results to be delivered to callbackURL.
func NewHTTPService(baseURL, callbackURL string) *HTTPService {
	return &HTTPService{
		baseURL:     strings.TrimRight(baseURL, "/"),
		callbackURL: callbackURL,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPService) send(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(httpRequestEnvelope{Request: req, CallbackURL: s.callbackURL})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/%s", s.baseURL, req.Op)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("token: %s request: %w", req.Op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("token: %s request rejected with status %d", req.Op, resp.StatusCode)
	}
	return req.ID, nil
}

// Mint issues an asynchronous mint request.
func (s *HTTPService) Mint(ctx context.Context, account string, amount *big.Int) (string, error) {
	if amount == nil || amount.Sign() < 0 {
		return "", ErrAmountRequired
	}
	return s.send(ctx, Request{ID: uuid.NewString(), Op: OpMint, Account: account, Amount: new(big.Int).Set(amount)})
}

// Burn issues an asynchronous burn request.
func (s *HTTPService) Burn(ctx context.Context, account string, amount *big.Int) (string, error) {
	if amount == nil || amount.Sign() <= 0 {
		return "", ErrAmountRequired
	}
	return s.send(ctx, Request{ID: uuid.NewString(), Op: OpBurn, Account: account, Amount: new(big.Int).Set(amount)})
}

// RequestOwner issues an asynchronous owner query.
func (s *HTTPService) RequestOwner(ctx context.Context) (string, error) {
	return s.send(ctx, Request{ID: uuid.NewString(), Op: OpOwner})
}

// BalanceOf issues an asynchronous balance query.
func (s *HTTPService) BalanceOf(ctx context.Context, account string) (string, error) {
	return s.send(ctx, Request{ID: uuid.NewString(), Op: OpBalance, Account: account})
}
