package mosparotest

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/mosparo/formdata"
	"github.com/vitalvas/mosparo/formsig"
	"go.uber.org/zap/zaptest"
)

func postVerify(t *testing.T, srv *Server, signer *formsig.Signer, body string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, srv.URL+VerifyPath, strings.NewReader(body))
	require.NoError(t, err)
	req.SetBasicAuth(signer.PublicKey(), signer.Hash(VerifyPath+body))

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))

	return resp, out
}

func TestServerVerify(t *testing.T) {
	srv := NewServer(Config{Logger: zaptest.NewLogger(t)})
	defer srv.Close()

	signer := formsig.NewSigner(srv.PublicKey, srv.PrivateKey)
	form := formdata.Mapping{
		"name":    formdata.String("John Example"),
		"email[]": formdata.Sequence{formdata.String("john@example.com")},
	}

	t.Run("valid submission", func(t *testing.T) {
		sub := srv.NewSubmission(form)
		signed := signer.SignSubmission(form, sub.SubmitToken, sub.ValidationToken)

		resp, out := postVerify(t, srv, signer, formdata.Serialize(signed.Body()))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
		assert.Equal(t, true, out["valid"])
		assert.Equal(t, signed.VerificationSignature, out["verificationSignature"])
		assert.Equal(t, map[string]any{"email": "valid", "name": "valid"}, out["verifiedFields"])
	})

	t.Run("tampered field", func(t *testing.T) {
		sub := srv.NewSubmission(form)
		tampered := formdata.Mapping{
			"name":    formdata.String("Jane Example"),
			"email[]": formdata.Sequence{formdata.String("john@example.com")},
		}
		signed := signer.SignSubmission(tampered, sub.SubmitToken, sub.ValidationToken)

		_, out := postVerify(t, srv, signer, formdata.Serialize(signed.Body()))

		assert.Equal(t, false, out["valid"])
		assert.Equal(t, map[string]any{"email": "valid", "name": "invalid"}, out["verifiedFields"])
		assert.NotEmpty(t, out["issues"])
	})

	t.Run("spam submission", func(t *testing.T) {
		sub := Submission{SubmitToken: "spam-submit", ValidationToken: "spam-validation", FormData: form, Spam: true}
		srv.Register(sub)
		signed := signer.SignSubmission(form, sub.SubmitToken, sub.ValidationToken)

		_, out := postVerify(t, srv, signer, formdata.Serialize(signed.Body()))

		assert.Equal(t, false, out["valid"])
		assert.NotContains(t, out, "verificationSignature")
	})

	t.Run("unknown submit token", func(t *testing.T) {
		signed := signer.SignSubmission(form, "unknown", "validation")

		_, out := postVerify(t, srv, signer, formdata.Serialize(signed.Body()))

		assert.Equal(t, true, out["error"])
		assert.Equal(t, "Submit token not valid.", out["errorMessage"])
	})

	t.Run("wrong validation token", func(t *testing.T) {
		sub := srv.NewSubmission(form)
		signed := signer.SignSubmission(form, sub.SubmitToken, "other")

		_, out := postVerify(t, srv, signer, formdata.Serialize(signed.Body()))

		assert.Equal(t, true, out["error"])
		assert.Equal(t, "Validation token not valid.", out["errorMessage"])
	})

	t.Run("wrong private key", func(t *testing.T) {
		other := formsig.NewSigner(srv.PublicKey, "wrong")
		sub := srv.NewSubmission(form)
		signed := other.SignSubmission(form, sub.SubmitToken, sub.ValidationToken)

		resp, out := postVerify(t, srv, other, formdata.Serialize(signed.Body()))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, `Basic realm="mosparo"`, resp.Header.Get("WWW-Authenticate"))
		assert.Equal(t, true, out["error"])
	})

	t.Run("remote error", func(t *testing.T) {
		srv.SetRemoteError("Project disabled.")
		defer srv.SetRemoteError("")

		_, out := postVerify(t, srv, signer, "{}")

		assert.Equal(t, "Project disabled.", out["errorMessage"])
	})
}

func TestServerStatistics(t *testing.T) {
	srv := NewServer(Config{PublicKey: "pub", PrivateKey: "priv"})
	defer srv.Close()

	srv.SetStatistics(Statistics{
		NumberOfValidSubmissions: 1,
		NumberOfSpamSubmissions:  2,
		NumbersByDate: map[string]DateStatistic{
			"2021-04-29": {NumberOfValidSubmissions: 1, NumberOfSpamSubmissions: 2},
		},
	})

	signer := formsig.NewSigner("pub", "priv")

	tests := []struct {
		name     string
		query    string
		payload  formdata.Record
		wantCode int
	}{
		{
			name:     "no query",
			payload:  formdata.Record{},
			wantCode: http.StatusOK,
		},
		{
			name:  "range and start date",
			query: "?range=3600&startDate=2021-04-29",
			payload: formdata.Record{
				{Key: "range", Value: formdata.Int(3600)},
				{Key: "startDate", Value: formdata.String("2021-04-29")},
			},
			wantCode: http.StatusOK,
		},
		{
			name:     "signature over different query",
			query:    "?range=60",
			payload:  formdata.Record{},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "malformed range",
			query:    "?range=abc",
			payload:  formdata.Record{},
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, srv.URL+StatisticByDatePath+tt.query, nil)
			require.NoError(t, err)
			req.SetBasicAuth("pub", signer.RequestSignature(StatisticByDatePath, tt.payload))

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantCode, resp.StatusCode)

			if tt.wantCode == http.StatusOK {
				var out statisticsResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
				assert.Equal(t, 2, out.Data.NumberOfSpamSubmissions)
				assert.Contains(t, out.Data.NumbersByDate, "2021-04-29")
			}
		})
	}

	t.Run("wrong public key", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, srv.URL+StatisticByDatePath, nil)
		require.NoError(t, err)
		req.SetBasicAuth("other", signer.RequestSignature(StatisticByDatePath, formdata.Record{}))

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("records requests", func(t *testing.T) {
		requests := srv.Requests()
		require.NotEmpty(t, requests)

		last := requests[len(requests)-1]
		assert.Equal(t, http.MethodGet, last.Method)
		assert.Equal(t, StatisticByDatePath, last.Path)
		assert.NotEmpty(t, last.ID)
	})
}

func TestServerRoutes(t *testing.T) {
	srv := NewServer(Config{TLS: true})
	defer srv.Close()

	assert.True(t, strings.HasPrefix(srv.URL, "https://"))
	assert.NotEmpty(t, srv.PublicKey)
	assert.NotEmpty(t, srv.PrivateKey)

	signer := formsig.NewSigner(srv.PublicKey, srv.PrivateKey)

	t.Run("unauthenticated", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + VerifyPath)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown route", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/unknown", nil)
		require.NoError(t, err)
		req.SetBasicAuth(srv.PublicKey, signer.RequestSignature("/api/v1/unknown", formdata.Record{}))

		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
