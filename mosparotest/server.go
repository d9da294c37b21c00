package mosparotest

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/vitalvas/mosparo/formdata"
	"github.com/vitalvas/mosparo/formsig"
	"go.uber.org/zap"
)

// API endpoints served by Server.
const (
	VerifyPath          = "/api/v1/verification/verify"
	StatisticByDatePath = "/api/v1/statistic/by-date"
)

// Config configures a Server.
type Config struct {
	// PublicKey and PrivateKey are the project keys the server accepts.
	// Random UUIDs are used when empty.
	PublicKey  string
	PrivateKey string

	// TLS starts the server with a self-signed certificate.
	TLS bool

	// MaxBodySize limits request bodies. Defaults to DefaultMaxBodySize.
	MaxBodySize int64

	// Logger receives one debug entry per request. Defaults to a no-op
	// logger.
	Logger *zap.Logger
}

// DefaultMaxBodySize is the request body limit used when
// Config.MaxBodySize is not positive.
const DefaultMaxBodySize = 1 << 20

// Submission is a form as the mosparo frontend saw it in the browser,
// together with the tokens it issued.
type Submission struct {
	SubmitToken     string
	ValidationToken string
	FormData        formdata.Mapping

	// Spam makes the server reject the submission after a successful
	// signature check.
	Spam bool
}

// DateStatistic holds the counts of one day.
type DateStatistic struct {
	NumberOfValidSubmissions int `json:"numberOfValidSubmissions"`
	NumberOfSpamSubmissions  int `json:"numberOfSpamSubmissions"`
}

// Statistics is returned by the statistics endpoint.
type Statistics struct {
	NumberOfValidSubmissions int                      `json:"numberOfValidSubmissions"`
	NumberOfSpamSubmissions  int                      `json:"numberOfSpamSubmissions"`
	NumbersByDate            map[string]DateStatistic `json:"numbersByDate"`
}

// Request is a recorded API call.
type Request struct {
	ID     string
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Server is an in-process mosparo API for tests. It checks request
// signatures, recomputes form signatures from the registered plaintext
// form data and answers like a mosparo installation.
type Server struct {
	URL        string
	PublicKey  string
	PrivateKey string

	srv    *httptest.Server
	signer *formsig.Signer

	mu          sync.Mutex
	submissions map[string]Submission
	statistics  Statistics
	remoteError string
	requests    []Request
}

// NewServer starts a Server. Call Close when done.
func NewServer(cfg Config) *Server {
	publicKey := cfg.PublicKey
	if publicKey == "" {
		publicKey = uuid.NewString()
	}

	privateKey := cfg.PrivateKey
	if privateKey == "" {
		privateKey = uuid.NewString()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("mosparotest")

	maxBodySize := cfg.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}

	s := &Server{
		PublicKey:   publicKey,
		PrivateKey:  privateKey,
		signer:      formsig.NewSigner(publicKey, privateKey),
		submissions: map[string]Submission{},
		statistics:  Statistics{NumbersByDate: map[string]DateStatistic{}},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+VerifyPath, s.handleVerify)
	mux.HandleFunc("GET "+StatisticByDatePath, s.handleStatistics)

	handler := chain(mux,
		requestIDMiddleware,
		loggingMiddleware(logger),
		recoveryMiddleware(logger),
		bodyLimitMiddleware(maxBodySize),
		s.recordMiddleware,
		s.remoteErrorMiddleware,
		signatureAuthMiddleware(s.signer),
	)

	if cfg.TLS {
		s.srv = httptest.NewTLSServer(handler)
	} else {
		s.srv = httptest.NewServer(handler)
	}

	s.URL = s.srv.URL

	return s
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

// Client returns an HTTP client that trusts the server certificate.
func (s *Server) Client() *http.Client {
	return s.srv.Client()
}

// Register stores a submission so that verification calls for its submit
// token can succeed.
func (s *Server) Register(sub Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.submissions[sub.SubmitToken] = sub
}

// NewSubmission registers form with freshly generated tokens and returns
// the submission.
func (s *Server) NewSubmission(form formdata.Mapping) Submission {
	sub := Submission{
		SubmitToken:     uuid.NewString(),
		ValidationToken: uuid.NewString(),
		FormData:        form,
	}

	s.Register(sub)

	return sub
}

// SetStatistics sets the data returned by the statistics endpoint.
func (s *Server) SetStatistics(stats Statistics) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statistics = stats
}

// SetRemoteError makes every API call answer with an explicit error
// carrying message. An empty message restores normal operation.
func (s *Server) SetRemoteError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remoteError = message
}

// Requests returns the API calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.requests)
}

func (s *Server) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := readAndRestoreBody(r)
		if err != nil {
			bodyError(w, err)
			return
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			ID:     requestIDFromContext(r.Context()),
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   bytes.Clone(body),
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) remoteErrorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		message := s.remoteError
		s.mu.Unlock()

		if message != "" {
			writeJSON(w, http.StatusOK, errorResponse{Error: true, ErrorMessage: message})
			return
		}

		next.ServeHTTP(w, r)
	})
}
