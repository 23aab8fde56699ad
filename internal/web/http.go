package web

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	maxSignupBodyBytes = 4 * 1024
)

func instrumentRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		observer := &statusObserver{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(observer, r)
		logger.Info("http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", observer.status,
			"duration_ms", time.Since(started).Milliseconds(),
			"remote", r.RemoteAddr,
			"request_id", RequestIDFrom(r.Context()),
		)
	})
}

type statusObserver struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (o *statusObserver) WriteHeader(status int) {
	if !o.wroteHeader {
		o.status = status
		o.wroteHeader = true
	}
	o.ResponseWriter.WriteHeader(status)
}

func (o *statusObserver) Write(p []byte) (int, error) {
	o.wroteHeader = true
	return o.ResponseWriter.Write(p)
}

func (o *statusObserver) Flush() {
	if flusher, ok := o.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (h *Handler) logRejection(r *http.Request, operation string, reason string, details string) {
	h.logger.Warn("http_request_rejected",
		"operation", operation,
		"method", r.Method,
		"path", r.URL.Path,
		"reason", reason,
		"details", details,
		"remote", r.RemoteAddr,
		"request_id", RequestIDFrom(r.Context()),
	)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, maxBytes int64, target any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(target); err != nil {
		var syntaxErr *json.SyntaxError
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &syntaxErr):
			writeErr(w, http.StatusBadRequest, "BAD_JSON", "request body must be valid JSON")
		case errors.As(err, &maxBytesErr):
			writeErr(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body exceeds max size")
		case strings.Contains(err.Error(), "unknown field"):
			writeErr(w, http.StatusBadRequest, "BAD_JSON", "request contains unknown fields")
		default:
			writeErr(w, http.StatusBadRequest, "BAD_JSON", "request body must be valid JSON")
		}
		return err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeErr(w, http.StatusBadRequest, "BAD_JSON", "request body must contain exactly one JSON object")
		return errors.New("trailing data after JSON object")
	}
	return nil
}

func writeErr(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message, "status": strconv.Itoa(status)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// clientIP is the throttling key for a request.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		return r.RemoteAddr
	}
	return host
}
