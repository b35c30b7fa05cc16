package api

import (
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"safetx/errors"
	"safetx/exception"
	"safetx/jsonx"
	"safetx/logx"
	"safetx/monitoring"
	"safetx/service"
	"safetx/types"
)

const maxBodyBytes = 1 << 20

type APIServer struct {
	History    *service.HistoryService
	ListenAddr string
	Version    string
	// Submission protection
	SubmitIPLimiter *rateLimiter
}

func NewAPIServer(history *service.HistoryService, addr, version string) *APIServer {
	// Submissions: per IP cooldown 120 requests / minute
	ipLimiter := newRateLimiter(120, time.Minute)

	return &APIServer{
		History:         history,
		ListenAddr:      addr,
		Version:         version,
		SubmitIPLimiter: ipLimiter,
	}
}

// ConfigureRateLimit replaces the default submission limiter.
func (s *APIServer) ConfigureRateLimit(max int, window time.Duration) {
	s.SubmitIPLimiter = newRateLimiter(max, window)
}

// Handler builds the route table. Separated from Start so tests can drive
// it through httptest.
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /transactions/{wallet}", s.timed(s.submitHandler))
	mux.HandleFunc("GET /transactions/{wallet}", s.timed(s.listHandler))
	mux.HandleFunc("GET /about", s.aboutHandler)
	mux.Handle("GET /metrics", monitoring.Handler())
	return mux
}

func (s *APIServer) Start() {
	handler := s.Handler()
	logx.Info("API", "listening on ", s.ListenAddr)
	exception.SafeGoWithPanic("api-server", func() {
		if err := http.ListenAndServe(s.ListenAddr, handler); err != nil {
			logx.Error("API", "listener stopped: ", err)
		}
	})
}

func (s *APIServer) timed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		monitoring.ObserveRequestDuration(time.Since(start))
	}
}

func (s *APIServer) submitHandler(w http.ResponseWriter, r *http.Request) {
	clientIP := clientIP(r)
	if s.SubmitIPLimiter != nil && !s.SubmitIPLimiter.Allow(clientIP) {
		logx.Warn("API", "rate limit exceeded for IP ", clientIP)
		monitoring.IncreaseRejectedCount(monitoring.RejectedRateLimited)
		writeError(w, errors.NewError(errors.ErrCodeRateLimited, errors.ErrMsgRateLimited))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(body) == 0 {
		writeError(w, errors.NewError(errors.ErrCodeInvalidRequest, errors.ErrMsgInvalidRequest))
		return
	}
	defer r.Body.Close()

	var req types.ConfirmationRequest
	if err := jsonx.Unmarshal(body, &req); err != nil {
		writeError(w, errors.NewError(errors.ErrCodeInvalidRequest, errors.ErrMsgInvalidRequest))
		return
	}

	result, err := s.History.Submit(r.Context(), r.PathValue("wallet"), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *APIServer) listHandler(w http.ResponseWriter, r *http.Request) {
	views, err := s.History.WalletTransactions(r.Context(), r.PathValue("wallet"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, views)
}

func (s *APIServer) aboutHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":        "safetx",
		"version":     s.Version,
		"api_version": "v1",
	})
}

// statusForCode maps the error taxonomy onto HTTP statuses. The 400/422
// split mirrors what clients key retry and correction logic on: 400 for
// syntactically invalid input and failed validation, 422 for well-formed
// but unprocessable targets, 503 for retryable infrastructure failure.
func statusForCode(code errors.ServiceErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidRequest, errors.ErrCodeMalformedAddress, errors.ErrCodeInvalidDigest,
		errors.ErrCodeInvalidValue, errors.ErrCodeInvalidOperation,
		errors.ErrCodeDigestMismatch, errors.ErrCodeNotApproved:
		return http.StatusBadRequest
	case errors.ErrCodeUnprocessableWallet, errors.ErrCodeInconsistentTransaction:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeWalletUnknown:
		return http.StatusNotFound
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeOracleUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.CodeOf(err)
	status := statusForCode(code)

	serviceErr, ok := err.(*errors.ServiceError)
	if !ok {
		logx.Error("API", "unclassified error: ", err)
		serviceErr = &errors.ServiceError{Code: errors.ErrCodeInternal, Message: errors.ErrMsgInternal}
	}

	writeJSON(w, status, serviceErr)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonx.NewEncoder(w).Encode(v)
}

func clientIP(r *http.Request) string {
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

type rateLimiter struct {
	max     int
	window  time.Duration
	mu      sync.Mutex
	entries map[string][]time.Time
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	return &rateLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *rateLimiter) Allow(key string) bool {
	now := time.Now()
	cutoff := now.Add(-l.window)
	l.mu.Lock()
	defer l.mu.Unlock()
	arr := l.entries[key]
	// drop old
	kept := arr[:0]
	for _, t := range arr {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}
