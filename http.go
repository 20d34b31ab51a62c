package bankxlive

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const maxKYCForm = MaxDocumentImgLen + 1<<20

type balanceJSONResp struct {
	Balance decimal.Decimal `json:"balance"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}

type broadcastResp struct {
	Recipients int `json:"recipients"`
}

func NewHTTPHandler(svc Service, auth *Authenticator, hub http.Handler, webhook http.Handler, log *zerolog.Logger) http.Handler {
	hndlr := &httpHandler{
		Svc:  svc,
		Auth: auth,
		Log:  log,
	}
	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(accessLog(log))
	mux.Use(middleware.Recoverer)
	mux.NotFound(HTTPNotFound)

	mux.Post("/register", hndlr.Register)
	mux.Post("/login", hndlr.Login)
	mux.Get("/banks", hndlr.Banks)
	mux.Handle("/ws", hub)
	mux.Method(http.MethodPost, "/webhooks/paystack", webhook)

	mux.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Route("/accounts/{acctID:[0-9]+}", func(rr chi.Router) {
			rr.Get("/", hndlr.Account)
			rr.Get("/balance", hndlr.Balance)
			rr.Get("/transactions", hndlr.Transactions)
			rr.Get("/statement", hndlr.Statement)
			rr.Get("/insights", hndlr.Insights)
			rr.Post("/transfers", hndlr.Transfer)
			rr.Post("/bills", hndlr.PayBill)
			rr.Post("/airtime", hndlr.PurchaseAirtime)
			rr.Post("/external-transfers", hndlr.ExternalTransfer)
			rr.Post("/cards", hndlr.IssueCard)
			rr.Get("/cards", hndlr.Cards)
			rr.Post("/kyc", hndlr.SubmitKYC)
			rr.Get("/kyc", hndlr.KYCDocuments)
		})
		r.Route("/admin", func(rr chi.Router) {
			rr.Get("/transactions", hndlr.AllTransactions)
			rr.Get("/kyc/pending", hndlr.PendingKYC)
			rr.Post("/kyc/{docID:[0-9]+}/review", hndlr.ReviewKYC)
			rr.Post("/broadcast", hndlr.Broadcast)
		})
	})

	return mux
}

type httpHandler struct {
	Svc  Service
	Auth *Authenticator
	Log  *zerolog.Logger
}

func accessLog(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info().
					Str("reqID", middleware.GetReqID(r.Context())).
					Str("httpMethod", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("elapsed", time.Since(start)).
					Msg("request handled")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// decodeJSON reads the body into dst, writing the error response itself when
// it returns false.
func (h *httpHandler) decodeJSON(w http.ResponseWriter, r *http.Request, method string, dst any) bool {
	buf, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		h.Log.Err(err).Str("method", method).Msg("error reading HTTP request")
		WriteHTTPError(w, ErrInternalServer)
		return false
	}
	if err = json.Unmarshal(buf, dst); err != nil {
		h.Log.Err(err).Str("method", method).Msg("error unmarshalling JSON")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"request body": "malformed JSON"}})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("response encoding failed")
	}
}

func actorOf(r *http.Request) Actor {
	a, _ := ActorFrom(r.Context())
	return a
}

func (h *httpHandler) accountReq(r *http.Request) AccountReq {
	return AccountReq{
		Actor:  actorOf(r),
		AcctID: chi.URLParam(r, "acctID"),
	}
}

func (h *httpHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountReq
	if !h.decodeJSON(w, r, "register", &req) {
		return
	}
	acct, err := h.Svc.CreateAccount(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (h *httpHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !h.decodeJSON(w, r, "login", &req) {
		return
	}
	token, acct, err := h.Auth.Login(req.Username, req.Password)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResp{Token: token, Account: acct})
}

func (h *httpHandler) Banks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SupportedBanks())
}

func (h *httpHandler) Account(w http.ResponseWriter, r *http.Request) {
	acct, err := h.Svc.Account(r.Context(), h.accountReq(r))
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *httpHandler) Balance(w http.ResponseWriter, r *http.Request) {
	bal, err := h.Svc.Balance(r.Context(), h.accountReq(r))
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceJSONResp{Balance: *bal})
}

func (h *httpHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	req := TransactionsReq{
		Actor:  actorOf(r),
		AcctID: chi.URLParam(r, "acctID"),
		Desc:   r.URL.Query().Get("order") == "desc",
	}
	txns, err := h.Svc.Transactions(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

func (h *httpHandler) Statement(w http.ResponseWriter, r *http.Request) {
	buf := new(bytes.Buffer)
	if err := h.Svc.Statement(r.Context(), buf, h.accountReq(r)); err != nil {
		WriteHTTPError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="statement-`+chi.URLParam(r, "acctID")+`.pdf"`)
	if _, err := buf.WriteTo(w); err != nil {
		h.Log.Err(err).Str("method", "statement").Msg("error writing statement")
	}
}

func (h *httpHandler) Insights(w http.ResponseWriter, r *http.Request) {
	ins, err := h.Svc.Insights(r.Context(), h.accountReq(r))
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ins)
}

func (h *httpHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferReq
	if !h.decodeJSON(w, r, "transfer", &req) {
		return
	}
	req.Actor = actorOf(r)
	req.From = chi.URLParam(r, "acctID")
	res, err := h.Svc.Transfer(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *httpHandler) PayBill(w http.ResponseWriter, r *http.Request) {
	var req BillPaymentReq
	if !h.decodeJSON(w, r, "payBill", &req) {
		return
	}
	req.Actor = actorOf(r)
	req.AcctID = chi.URLParam(r, "acctID")
	res, err := h.Svc.PayBill(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

func (h *httpHandler) PurchaseAirtime(w http.ResponseWriter, r *http.Request) {
	var req AirtimeReq
	if !h.decodeJSON(w, r, "purchaseAirtime", &req) {
		return
	}
	req.Actor = actorOf(r)
	req.AcctID = chi.URLParam(r, "acctID")
	res, err := h.Svc.PurchaseAirtime(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

func (h *httpHandler) ExternalTransfer(w http.ResponseWriter, r *http.Request) {
	var req ExternalTransferReq
	if !h.decodeJSON(w, r, "externalTransfer", &req) {
		return
	}
	req.Actor = actorOf(r)
	req.AcctID = chi.URLParam(r, "acctID")
	res, err := h.Svc.ExternalTransfer(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

func (h *httpHandler) SubmitKYC(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxKYCForm)
	if err := r.ParseMultipartForm(maxKYCForm); err != nil {
		h.Log.Err(err).Str("method", "submitKYC").Msg("error parsing multipart form")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"request body": "malformed or too large multipart form"}})
		return
	}
	file, _, err := r.FormFile("documentImage")
	if err != nil {
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"documentImage": "required"}})
		return
	}
	defer file.Close()
	img, err := io.ReadAll(io.LimitReader(file, MaxDocumentImgLen+1))
	if err != nil {
		h.Log.Err(err).Str("method", "submitKYC").Msg("error reading document image")
		WriteHTTPError(w, ErrInternalServer)
		return
	}

	req := KYCSubmitReq{
		Actor:          actorOf(r),
		AcctID:         chi.URLParam(r, "acctID"),
		DocumentType:   DocumentType(r.FormValue("documentType")),
		DocumentNumber: r.FormValue("documentNumber"),
		DocumentImage:  img,
		ContentType:    http.DetectContentType(img),
	}
	doc, err := h.Svc.SubmitKYC(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	doc.DocumentImage = ""
	writeJSON(w, http.StatusCreated, doc)
}

func (h *httpHandler) KYCDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Svc.KYCDocuments(r.Context(), h.accountReq(r))
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *httpHandler) IssueCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.Svc.IssueCard(r.Context(), h.accountReq(r))
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (h *httpHandler) Cards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Svc.Cards(r.Context(), h.accountReq(r))
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *httpHandler) AllTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.Svc.AllTransactions(r.Context(), AdminReq{Actor: actorOf(r)})
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

func (h *httpHandler) PendingKYC(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Svc.PendingKYC(r.Context(), AdminReq{Actor: actorOf(r)})
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *httpHandler) ReviewKYC(w http.ResponseWriter, r *http.Request) {
	var req KYCReviewReq
	if !h.decodeJSON(w, r, "reviewKYC", &req) {
		return
	}
	docID, err := snowflake.ParseString(chi.URLParam(r, "docID"))
	if err != nil {
		h.Log.Err(err).Str("method", "reviewKYC").Msg("error parsing document ID")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"docID": "invalid format"}})
		return
	}
	req.Actor = actorOf(r)
	req.DocID = docID
	doc, err := h.Svc.ReviewKYC(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *httpHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req BroadcastReq
	if !h.decodeJSON(w, r, "broadcast", &req) {
		return
	}
	req.Actor = actorOf(r)
	n, err := h.Svc.Broadcast(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, broadcastResp{Recipients: n})
}

func WriteHTTPError(w http.ResponseWriter, err error) {
	var ne error
	defer func() {
		if ne != nil {
			log.Error().
				Err(ne).
				Msg("error response encoding failed")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	errnf := &ErrNotFound{}
	errbr := &ErrBadRequest{}
	errit := &ErrInvalidTransfer{}
	errif := &ErrInsufficientFunds{}
	errcf := &ErrConflict{}
	errst := &ErrStatusTransition{}
	errua := &ErrUnauthorized{}
	errfb := &ErrForbidden{}
	errgw := &ErrGateway{}
	switch {
	case errors.As(err, errnf):
		w.WriteHeader(http.StatusNotFound)
		ne = json.NewEncoder(w).Encode(errnf)
	case errors.As(err, errbr):
		w.WriteHeader(http.StatusBadRequest)
		ne = json.NewEncoder(w).Encode(errbr)
	case errors.As(err, errit):
		w.WriteHeader(http.StatusBadRequest)
		ne = json.NewEncoder(w).Encode(errit)
	case errors.As(err, errif):
		w.WriteHeader(http.StatusUnprocessableEntity)
		ne = json.NewEncoder(w).Encode(errif)
	case errors.As(err, errcf):
		w.WriteHeader(http.StatusConflict)
		ne = json.NewEncoder(w).Encode(errcf)
	case errors.As(err, errst):
		w.WriteHeader(http.StatusConflict)
		ne = json.NewEncoder(w).Encode(errst)
	case errors.As(err, errua):
		w.WriteHeader(http.StatusUnauthorized)
		ne = json.NewEncoder(w).Encode(errua)
	case errors.As(err, errfb):
		w.WriteHeader(http.StatusForbidden)
		ne = json.NewEncoder(w).Encode(errfb)
	case errors.As(err, errgw):
		status := http.StatusBadGateway
		if errgw.Timeout {
			status = http.StatusGatewayTimeout
		}
		w.WriteHeader(status)
		ne = json.NewEncoder(w).Encode(map[string]string{"message": errgw.Error()})
	case errors.Is(err, ErrServiceBusy), errors.Is(err, ErrStoreClosed):
		w.WriteHeader(http.StatusServiceUnavailable)
		ne = json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		resp := map[string]string{
			"message": "server error",
		}
		ne = json.NewEncoder(w).Encode(resp)
	}
}

func HTTPNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	resp := map[string]string{
		"path": r.URL.Path,
	}
	json.NewEncoder(w).Encode(resp)
}
