package mosparotest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/vitalvas/mosparo/formdata"
	"github.com/vitalvas/mosparo/formsig"
	"go.uber.org/zap"
)

// RequestIDHeader carries the ID the server assigns to every request.
const RequestIDHeader = "X-Request-ID"

// middlewareFunc wraps an http.Handler.
type middlewareFunc func(http.Handler) http.Handler

func chain(h http.Handler, mws ...middlewareFunc) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}

	return h
}

type requestIDKey struct{}

// requestIDFromContext returns the ID stored by requestIDMiddleware.
func requestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}

	return ""
}

// requestIDMiddleware assigns a UUID v4 to every request and echoes it in
// the response.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()

		w.Header().Set(RequestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *zap.Logger) middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.Debug("handled request",
				zap.String("request_id", requestIDFromContext(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// recoveryMiddleware turns a handler panic into a 500 mosparo error
// response and logs the recovered value.
func recoveryMiddleware(logger *zap.Logger) middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					logger.Error("handler panic",
						zap.String("request_id", requestIDFromContext(r.Context())),
						zap.String("path", r.URL.Path),
						zap.Any("panic", v),
					)

					writeJSON(w, http.StatusInternalServerError, errorResponse{Error: true, ErrorMessage: "Internal server error."})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// bodyLimitMiddleware caps request bodies at maxBytes. Reading past the
// limit fails with *http.MaxBytesError.
func bodyLimitMiddleware(maxBytes int64) middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// signatureAuthMiddleware checks the Basic Auth credentials of a mosparo
// API call: the user name must be the public key and the password the
// request signature over the endpoint path and the body (POST) or the
// query parameters (GET).
func signatureAuthMiddleware(signer *formsig.Signer) middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok || username != signer.PublicKey() {
				unauthorized(w)
				return
			}

			expected, err := expectedRequestSignature(r, signer)
			if err != nil || !formsig.Equal(password, expected) {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func expectedRequestSignature(r *http.Request, signer *formsig.Signer) (string, error) {
	if r.Method == http.MethodGet {
		query, err := queryRecord(r)
		if err != nil {
			return "", err
		}

		return signer.RequestSignature(r.URL.Path, query), nil
	}

	body, err := readAndRestoreBody(r)
	if err != nil {
		return "", err
	}

	return signer.Hash(r.URL.Path + string(body)), nil
}

// queryRecord rebuilds the signed statistics query: range as an integer
// followed by startDate, each only when present.
func queryRecord(r *http.Request) (formdata.Record, error) {
	query := r.URL.Query()
	rec := formdata.Record{}

	if v := query.Get("range"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("range: %w", err)
		}
		rec = append(rec, formdata.Field{Key: "range", Value: formdata.Int(n)})
	}

	if v := query.Get("startDate"); v != "" {
		rec = append(rec, formdata.Field{Key: "startDate", Value: formdata.String(v)})
	}

	return rec, nil
}

func readAndRestoreBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	return body, nil
}

// bodyError answers a request whose body could not be read.
func bodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: true, ErrorMessage: "Request body too large."})
		return
	}

	writeJSON(w, http.StatusBadRequest, errorResponse{Error: true, ErrorMessage: "Request body not valid."})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="mosparo"`)
	writeJSON(w, http.StatusUnauthorized, errorResponse{Error: true, ErrorMessage: "Request not valid"})
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

type errorResponse struct {
	Error        bool   `json:"error"`
	ErrorMessage string `json:"errorMessage"`
}
