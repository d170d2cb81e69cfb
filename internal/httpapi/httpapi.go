package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"masapos/backend/internal/domain"
	"masapos/backend/internal/service"
	"masapos/backend/internal/store"
	"masapos/backend/pkg/logger"
)

type API struct {
	service       *service.Service
	auth          *AuthManager
	allowedOrigin string
	loginLimiter  *attemptLimiter
	deleteLimiter *attemptLimiter
	csrfSecret    []byte
}

func New(svc *service.Service, auth *AuthManager, allowedOrigin string) *API {
	csrfSecret := make([]byte, 32)
	if _, err := rand.Read(csrfSecret); err != nil {
		csrfSecret = []byte("csrf-fallback-secret-change-me!!")
	}
	return &API{
		service:       svc,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		deleteLimiter: newAttemptLimiter(30, time.Minute),
		csrfSecret:    csrfSecret,
	}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", a.handleLogin)
	mux.HandleFunc("/api/v1/auth/csrf-token", a.handleCSRFToken)

	mux.HandleFunc("/api/v1/sales/sessions", a.requireAuth(a.handleSessions, "cashier", "admin"))
	mux.HandleFunc("/api/v1/sales/", a.requireAuth(a.handleSaleActions, "cashier", "admin"))
	mux.HandleFunc("/api/v1/reports/products", a.requireAuth(a.handleProductReport, "admin"))
	mux.HandleFunc("/api/v1/reports/staff", a.requireAuth(a.handleStaffReport, "admin"))

	return a.withMiddleware(mux)
}

func (a *API) requireAuth(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.auth.ParseToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		if len(roles) > 0 && !isRoleAllowed(actor.Role, roles) {
			writeError(w, http.StatusForbidden, errors.New("forbidden role"))
			return
		}

		next(w, r.WithContext(service.WithActor(r.Context(), actor)))
	}
}

func isRoleAllowed(role string, allowed []string) bool {
	for _, allow := range allowed {
		if role == allow {
			return true
		}
	}
	return false
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"csrf_token": a.generateCSRFToken(),
	})
}

func (a *API) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	resp, err := a.service.Sessions(r.Context(), filterFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSaleActions serves GET and DELETE on /api/v1/sales/{id}.
func (a *API) handleSaleActions(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/sales/"), "/"))
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, errors.New("sale id required"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		details, err := a.service.SaleDetails(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, details)
	case http.MethodDelete:
		if actor, ok := service.ActorFromContext(r.Context()); ok && !a.deleteLimiter.Allow(actor.Username) {
			writeError(w, http.StatusTooManyRequests, errors.New("too many delete requests"))
			return
		}
		result, err := a.service.DeleteEntry(r.Context(), id, filterFromQuery(r))
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, result)
		case errors.Is(err, service.ErrPartialDelete):
			writeJSON(w, http.StatusMultiStatus, result)
		case errors.Is(err, service.ErrDeleteFailed):
			logger.Log.Error().Err(err).Str("entry_id", id).Msg("cascading delete failed")
			writeJSON(w, http.StatusBadGateway, result)
		default:
			writeServiceError(w, err)
		}
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleProductReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	resp, err := a.service.ProductReport(r.Context(), filterFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	a.writeReport(w, r, "product-report", resp.Filter, resp, productTables(resp.Stats))
}

func (a *API) handleStaffReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	resp, err := a.service.StaffReport(r.Context(), filterFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	a.writeReport(w, r, "staff-report", resp.Filter, resp, staffTables(resp.Staff))
}

func (a *API) writeReport(w http.ResponseWriter, r *http.Request, name string, filter domain.ReportFilter, payload any, tables []reportTable) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	filename := reportFilename(name, filter)

	switch format {
	case "", "json":
		writeJSON(w, http.StatusOK, payload)
	case "csv":
		body, err := tablesToCSV(tables)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
		_, _ = w.Write(body)
	case "xlsx":
		buf, err := tablesToXLSX(tables)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
		_, _ = w.Write(buf.Bytes())
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported format %q", format))
	}
}

func reportFilename(name string, filter domain.ReportFilter) string {
	parts := []string{name}
	if filter.From != "" {
		parts = append(parts, filter.From)
	}
	if filter.To != "" {
		parts = append(parts, filter.To)
	}
	return strings.Join(parts, "_")
}

func filterFromQuery(r *http.Request) domain.ReportFilter {
	query := r.URL.Query()
	return domain.ReportFilter{
		From: strings.TrimSpace(query.Get("from")),
		To:   strings.TrimSpace(query.Get("to")),
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-CSRF-Token")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if !a.checkCSRF(w, r) {
			return
		}

		startedAt := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(startedAt)).
			Msg("request")
	})
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidFilter):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalidRecord):
		status = http.StatusUnprocessableEntity
	}
	writeError(w, status, err)
}

// writeError keeps 5xx messages generic; 4xx messages are user facing.
func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status >= 500 {
		logger.Log.Error().Err(err).Int("status", status).Msg("internal error")
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
