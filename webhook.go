package bankxlive

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	maxWebhookBody   = 1 << 20
	defaultDedupeTTL = 24 * time.Hour
	signatureHeader  = "x-paystack-signature"
)

type paystackEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

// WebhookHandler receives Paystack events and settles the matching ledger
// entry. Every event is checked against the HMAC-SHA512 signature of its body.
type WebhookHandler struct {
	svc    Service
	secret []byte
	log    *zerolog.Logger
	ttl    time.Duration
	clock  func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

var _ http.Handler = (*WebhookHandler)(nil)

func NewWebhookHandler(svc Service, secret string, log *zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		svc:    svc,
		secret: []byte(secret),
		log:    log,
		ttl:    defaultDedupeTTL,
		clock:  time.Now,
		seen:   make(map[string]time.Time),
	}
}

// Sign returns the signature Paystack would send for body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha512.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (h *WebhookHandler) validSignature(sig string, body []byte) bool {
	if sig == "" || len(h.secret) == 0 {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(Sign(h.secret, body)))
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	defer r.Body.Close()
	if err != nil {
		h.log.Err(err).Str("method", "webhook").Msg("error reading webhook body")
		WriteHTTPError(w, ErrInternalServer)
		return
	}
	if !h.validSignature(r.Header.Get(signatureHeader), body) {
		h.log.Warn().Str("remote", r.RemoteAddr).Msg("rejected webhook with invalid signature")
		WriteHTTPError(w, ErrUnauthorized{Reason: "invalid signature"})
		return
	}
	var evt paystackEvent
	if err = json.Unmarshal(body, &evt); err != nil {
		h.log.Err(err).Str("method", "webhook").Msg("error unmarshalling JSON")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"request body": "malformed JSON"}})
		return
	}
	ref := evt.Data.Reference
	if ref == "" {
		h.log.Info().Str("event", evt.Event).Msg("ignoring webhook event without reference")
		writeAck(w, "ignored")
		return
	}

	key := evt.Event + ":" + ref
	if !h.claim(key) {
		h.log.Info().Str("event", evt.Event).Str("reference", ref).Msg("duplicate webhook event ignored")
		writeAck(w, "duplicate")
		return
	}

	txn, err := h.svc.SettlePayment(r.Context(), SettlementReq{Reference: ref})
	if err != nil {
		if errors.As(err, &ErrNotFound{}) {
			h.log.Warn().Str("event", evt.Event).Str("reference", ref).Msg("webhook for unknown reference")
			writeAck(w, "unknown reference")
			return
		}
		// let the provider redeliver
		h.release(key)
		h.log.Err(err).Str("event", evt.Event).Str("reference", ref).Msg("error settling payment")
		WriteHTTPError(w, err)
		return
	}
	if txn.Status == StatusPending {
		h.release(key)
	}
	h.log.Info().
		Str("event", evt.Event).
		Str("reference", ref).
		Str("status", string(txn.Status)).
		Msg("webhook processed")
	writeAck(w, string(txn.Status))
}

// claim records key and reports whether it was not seen within the TTL.
func (h *WebhookHandler) claim(key string) bool {
	now := h.clock()
	h.mu.Lock()
	defer h.mu.Unlock()
	for k, at := range h.seen {
		if now.Sub(at) > h.ttl {
			delete(h.seen, k)
		}
	}
	if _, dup := h.seen[key]; dup {
		return false
	}
	h.seen[key] = now
	return true
}

func (h *WebhookHandler) release(key string) {
	h.mu.Lock()
	delete(h.seen, key)
	h.mu.Unlock()
}

func writeAck(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
