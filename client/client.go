package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vitalvas/mosparo/formdata"
	"github.com/vitalvas/mosparo/formsig"
	"go.uber.org/zap"
)

// API endpoints. Request signatures cover these paths, not the full URL.
const (
	VerifyPath          = "/api/v1/verification/verify"
	StatisticByDatePath = "/api/v1/statistic/by-date"
)

// maxResponseSize bounds the response body read from mosparo.
const maxResponseSize = 10 << 20

// startDateLayout is the format of the startDate query parameter.
const startDateLayout = "2006-01-02"

// Config configures a Client.
type Config struct {
	// Host is the base URL of the mosparo installation, for example
	// "https://mosparo.example.com". Required.
	Host string

	// PublicKey and PrivateKey are the mosparo project keys. Required.
	PublicKey  string
	PrivateKey string

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// Timeout limits each API call. Zero means no client-side timeout;
	// the call still honours its context.
	Timeout time.Duration

	// Transport overrides the base round tripper. When nil, a clone of
	// http.DefaultTransport with environment proxy settings is used.
	// InsecureSkipVerify has no effect on a custom Transport.
	Transport http.RoundTripper

	// Logger receives debug entries for every API call. Defaults to a
	// no-op logger. Keys, signatures and form values are never logged.
	Logger *zap.Logger
}

// Client talks to a mosparo installation. It holds no mutable state and
// is safe for concurrent use.
type Client struct {
	host   string
	signer *formsig.Signer
	http   *http.Client
	logger *zap.Logger
}

// New creates a Client. It returns an error wrapping ErrConfiguration
// when the host or keys are missing.
func New(cfg Config) (*Client, error) {
	host := strings.TrimRight(cfg.Host, "/")

	u, err := url.Parse(host)
	if host == "" || err != nil || u.Scheme == "" || u.Host == "" {
		return nil, ErrNoHost
	}

	if cfg.PublicKey == "" || cfg.PrivateKey == "" {
		return nil, ErrNoKeys
	}

	base := cfg.Transport
	if base == nil {
		base = newBaseTransport(cfg.InsecureSkipVerify)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	signer := formsig.NewSigner(cfg.PublicKey, cfg.PrivateKey)

	return &Client{
		host:   host,
		signer: signer,
		http: &http.Client{
			Transport: newTransport(base, signer),
			Timeout:   cfg.Timeout,
		},
		logger: logger.Named("mosparo"),
	}, nil
}

// Signer returns the signer built from the configured key pair.
func (c *Client) Signer() *formsig.Signer { return c.signer }

// VerifySubmission asks mosparo whether the submitted form data is
// legitimate.
//
// Empty submitToken or validationToken arguments are taken from the
// _mosparo_submitToken and _mosparo_validationToken fields of form. If a
// token is still missing, ErrTokensMissing is returned before anything is
// hashed or sent. form is not modified.
//
// A remote error or a mismatching verification signature is not an
// error: the result is then neither valid nor submittable, and a remote
// error message is added to the issues.
func (c *Client) VerifySubmission(ctx context.Context, form formdata.Mapping, submitToken, validationToken string) (*VerificationResult, error) {
	if submitToken == "" {
		submitToken = tokenFromForm(form, formdata.SubmitTokenKey)
	}

	if validationToken == "" {
		validationToken = tokenFromForm(form, formdata.ValidationTokenKey)
	}

	if submitToken == "" || validationToken == "" {
		return nil, ErrTokensMissing
	}

	sub := c.signer.SignSubmission(form, submitToken, validationToken)

	res, err := c.send(ctx, http.MethodPost, VerifyPath, sub.Body())
	if err != nil {
		return nil, err
	}

	return verificationResult(res, sub), nil
}

func tokenFromForm(form formdata.Mapping, key string) string {
	if s, ok := form[key].(formdata.String); ok {
		return string(s)
	}

	return ""
}

// verificationResult maps a verification response. Only valid and the
// verification signature decide the outcome; verifiedFields and issues of
// an unexpected shape are skipped. Issues given as plain strings become
// message issues.
func verificationResult(res response, sub formsig.Submission) *VerificationResult {
	result := &VerificationResult{
		verifiedFields: map[string]string{},
		issues:         []Issue{},
	}

	if fields, ok := res.value("verifiedFields").(map[string]any); ok {
		for key, state := range fields {
			if s, ok := state.(string); ok {
				result.verifiedFields[key] = s
			}
		}
	}

	if issues, ok := res.value("issues").([]any); ok {
		for _, item := range issues {
			switch t := item.(type) {
			case map[string]any:
				result.issues = append(result.issues, Issue(t))
			case string:
				result.issues = append(result.issues, Issue{"message": t})
			}
		}
	}

	signature, _ := res.str("verificationSignature")

	switch {
	case res.truthy("valid") && sub.CheckVerification(signature):
		result.submittable = true
		result.valid = true
	case res.truthy("error"):
		message, _ := res.str("errorMessage")
		result.issues = append(result.issues, Issue{"message": message})
	}

	return result
}

// StatisticQuery selects the time range for StatisticByDate.
type StatisticQuery struct {
	// Range is the time range, sent in whole seconds. mosparo rounds it
	// up to full days. Ignored when shorter than a second.
	Range time.Duration

	// StartDate is the first day to return. Ignored when zero.
	StartDate time.Time
}

func (q StatisticQuery) record() formdata.Record {
	rec := formdata.Record{}

	if seconds := int64(q.Range / time.Second); seconds > 0 {
		rec = append(rec, formdata.Field{Key: "range", Value: formdata.Int(seconds)})
	}

	if !q.StartDate.IsZero() {
		rec = append(rec, formdata.Field{Key: "startDate", Value: formdata.String(q.StartDate.Format(startDateLayout))})
	}

	return rec
}

// StatisticByDate returns the submission statistics of the project,
// grouped by date. An error flagged by mosparo is returned as ErrRemote.
func (c *Client) StatisticByDate(ctx context.Context, query StatisticQuery) (*StatisticResult, error) {
	res, err := c.send(ctx, http.MethodGet, StatisticByDatePath, query.record())
	if err != nil {
		return nil, err
	}

	if res.has("error") {
		message, ok := res.str("errorMessage")
		if !ok {
			message = defaultRemoteMessage
		}

		return nil, fmt.Errorf("%w: %s", ErrRemote, message)
	}

	if !res.has("data") {
		return nil, fmt.Errorf("%w: missing data", ErrInvalidResponse)
	}

	var data struct {
		NumberOfValidSubmissions int             `json:"numberOfValidSubmissions"`
		NumberOfSpamSubmissions  int             `json:"numberOfSpamSubmissions"`
		NumbersByDate            json.RawMessage `json:"numbersByDate"`
	}

	if err := res.decode("data", &data); err != nil {
		return nil, err
	}

	result := &StatisticResult{
		NumberOfValidSubmissions: data.NumberOfValidSubmissions,
		NumberOfSpamSubmissions:  data.NumberOfSpamSubmissions,
		NumbersByDate:            map[string]DateStatistic{},
	}

	if !isEmptyJSON(data.NumbersByDate) {
		if err := json.Unmarshal(data.NumbersByDate, &result.NumbersByDate); err != nil {
			return nil, fmt.Errorf("%w: field numbersByDate: %w", ErrInvalidResponse, err)
		}
	}

	return result, nil
}

// send performs one signed API call and decodes the response body. GET
// payloads are sent as query parameters, others as the serialized body.
func (c *Client) send(ctx context.Context, method, endpoint string, payload formdata.Record) (response, error) {
	target := c.host + endpoint

	var body io.Reader
	if method == http.MethodGet {
		if len(payload) > 0 {
			query := url.Values{}
			for _, f := range payload {
				if s, ok := f.Value.(formdata.Scalar); ok {
					query.Set(f.Key, s.Text())
				}
			}
			target += "?" + query.Encode()
		}
	} else {
		body = strings.NewReader(formdata.Serialize(payload))
	}

	req, err := http.NewRequestWithContext(withSignedCall(ctx, endpoint, payload), method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	c.logger.Debug("api call",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Duration("duration", time.Since(start)),
	)

	return parseResponse(bytes.TrimSpace(raw))
}
