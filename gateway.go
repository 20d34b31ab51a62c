package bankxlive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

const (
	PaymentSuccess   = "success"
	PaymentFailed    = "failed"
	PaymentAbandoned = "abandoned"
	PaymentReversed  = "reversed"
)

var koboPerNaira = decimal.NewFromInt(100)

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks . Gateway

// Gateway is the payment provider the pending payment flows go through.
type Gateway interface {
	InitializePayment(ctx context.Context, req PaymentReq) (*PaymentInit, error)
	VerifyPayment(ctx context.Context, reference string) (*PaymentVerification, error)
}

type PaymentReq struct {
	Amount      decimal.Decimal
	Email       string
	Reference   string
	CallbackURL string
	Metadata    map[string]string
}

type PaymentInit struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type PaymentVerification struct {
	Reference       string
	Status          string
	Amount          decimal.Decimal
	GatewayResponse string
}

// PaystackClient talks to the Paystack transaction API.
type PaystackClient struct {
	BaseURL    string
	SecretKey  string
	HTTPClient *http.Client
}

var (
	_ Gateway = (*PaystackClient)(nil)
	_ Gateway = (*breakerGateway)(nil)
)

func NewPaystackClient(baseURL, secretKey string, timeout time.Duration) *PaystackClient {
	return &PaystackClient{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		SecretKey: secretKey,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type paystackEnvelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type paystackInitReq struct {
	Email       string            `json:"email"`
	Amount      string            `json:"amount"`
	Reference   string            `json:"reference,omitempty"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type paystackVerifyData struct {
	Status          string `json:"status"`
	Reference       string `json:"reference"`
	Amount          int64  `json:"amount"`
	GatewayResponse string `json:"gateway_response"`
}

func (p *PaystackClient) InitializePayment(ctx context.Context, req PaymentReq) (*PaymentInit, error) {
	body := paystackInitReq{
		Email:       req.Email,
		Amount:      req.Amount.Mul(koboPerNaira).Round(0).String(),
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	}
	var out paystackEnvelope[PaymentInit]
	if err := p.do(ctx, http.MethodPost, "/transaction/initialize", body, &out); err != nil {
		return nil, gatewayErr("initialize", err)
	}
	if !out.Status {
		return nil, ErrGateway{Op: "initialize", Err: errors.New(out.Message)}
	}
	if out.Data.Reference == "" {
		out.Data.Reference = req.Reference
	}
	return &out.Data, nil
}

func (p *PaystackClient) VerifyPayment(ctx context.Context, reference string) (*PaymentVerification, error) {
	var out paystackEnvelope[paystackVerifyData]
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := p.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, gatewayErr("verify", err)
	}
	if !out.Status {
		return nil, ErrGateway{Op: "verify", Err: errors.New(out.Message)}
	}
	return &PaymentVerification{
		Reference:       out.Data.Reference,
		Status:          out.Data.Status,
		Amount:          decimal.New(out.Data.Amount, -2),
		GatewayResponse: out.Data.GatewayResponse,
	}, nil
}

func (p *PaystackClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.SecretKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		var env paystackEnvelope[json.RawMessage]
		if jerr := json.Unmarshal(raw, &env); jerr == nil && env.Message != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, env.Message)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.Unmarshal(raw, out)
}

func gatewayErr(op string, err error) error {
	var gerr ErrGateway
	if errors.As(err, &gerr) {
		return err
	}
	var nerr net.Error
	timeout := errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout())
	return ErrGateway{Op: op, Timeout: timeout, Err: err}
}

// BreakerSettings builds circuit breaker settings that trip after the given
// number of consecutive gateway failures.
func BreakerSettings(name string, maxRequests, consecutiveFailures uint32, interval, timeout time.Duration) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailures
		},
	}
}

// breakerGateway stops calling a failing provider for a while instead of
// letting every request wait out the gateway timeout.
type breakerGateway struct {
	next     Gateway
	initCB   *gobreaker.CircuitBreaker[*PaymentInit]
	verifyCB *gobreaker.CircuitBreaker[*PaymentVerification]
}

func NewBreakerGateway(next Gateway, st gobreaker.Settings) Gateway {
	initSt, verifySt := st, st
	initSt.Name = st.Name + ":initialize"
	verifySt.Name = st.Name + ":verify"
	return &breakerGateway{
		next:     next,
		initCB:   gobreaker.NewCircuitBreaker[*PaymentInit](initSt),
		verifyCB: gobreaker.NewCircuitBreaker[*PaymentVerification](verifySt),
	}
}

func (b *breakerGateway) InitializePayment(ctx context.Context, req PaymentReq) (*PaymentInit, error) {
	res, err := b.initCB.Execute(func() (*PaymentInit, error) {
		return b.next.InitializePayment(ctx, req)
	})
	if err != nil {
		return nil, breakerErr("initialize", err)
	}
	return res, nil
}

func (b *breakerGateway) VerifyPayment(ctx context.Context, reference string) (*PaymentVerification, error) {
	res, err := b.verifyCB.Execute(func() (*PaymentVerification, error) {
		return b.next.VerifyPayment(ctx, reference)
	})
	if err != nil {
		return nil, breakerErr("verify", err)
	}
	return res, nil
}

func breakerErr(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrGateway{Op: op, Err: err}
	}
	return err
}
