package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/mosparo/mosparotest"
)

const statisticsBody = `{
	"result": true,
	"data": {
		"numberOfValidSubmissions": 0,
		"numberOfSpamSubmissions": 10,
		"numbersByDate": {
			"2021-04-29": {"numberOfValidSubmissions": 0, "numberOfSpamSubmissions": 10}
		}
	}
}`

func TestStatisticByDate(t *testing.T) {
	want := &StatisticResult{
		NumberOfValidSubmissions: 0,
		NumberOfSpamSubmissions:  10,
		NumbersByDate: map[string]DateStatistic{
			"2021-04-29": {NumberOfValidSubmissions: 0, NumberOfSpamSubmissions: 10},
		},
	}

	tests := []struct {
		name      string
		query     StatisticQuery
		wantQuery string
		wantPass  string
	}{
		{
			name:      "without range",
			wantQuery: "",
			wantPass:  "9114ad3d6a234a78b87566e99d960fb012fd2d72a4bfa621b8bbdf850cc4b276",
		},
		{
			name:      "with range and start date",
			query:     StatisticQuery{Range: time.Hour, StartDate: time.Date(2021, 4, 29, 15, 0, 0, 0, time.UTC)},
			wantQuery: "range=3600&startDate=2021-04-29",
			wantPass:  "4bf868fa8e55eca571be7425e8326eafe725003c78656d5b00a8cf311802a672",
		},
		{
			name:      "sub-second range is ignored",
			query:     StatisticQuery{Range: 500 * time.Millisecond},
			wantQuery: "",
			wantPass:  "9114ad3d6a234a78b87566e99d960fb012fd2d72a4bfa621b8bbdf850cc4b276",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMethod, gotQuery, gotUser, gotPass, gotAccept string

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotQuery = r.URL.RawQuery
				gotUser, gotPass, _ = r.BasicAuth()
				gotAccept = r.Header.Get("Accept")
				io.WriteString(w, statisticsBody)
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL)

			got, err := c.StatisticByDate(context.Background(), tt.query)
			require.NoError(t, err)

			assert.Equal(t, want, got)
			assert.Equal(t, http.MethodGet, gotMethod)
			assert.Equal(t, tt.wantQuery, gotQuery)
			assert.Equal(t, testPublicKey, gotUser)
			assert.Equal(t, tt.wantPass, gotPass)
			assert.Equal(t, "application/json", gotAccept)
		})
	}
}

func TestStatisticByDateErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "remote error with message",
			body:    `{"error":true,"errorMessage":"Request not valid"}`,
			wantErr: ErrRemote,
			wantMsg: "mosparo: remote error: Request not valid",
		},
		{
			name:    "remote error without message",
			body:    `{"error":true}`,
			wantErr: ErrRemote,
			wantMsg: "mosparo: remote error: An error occurred in the connection to mosparo.",
		},
		{
			name:    "error key present but false",
			body:    `{"error":false,"data":{}}`,
			wantErr: ErrRemote,
		},
		{
			name:    "missing data",
			body:    `{"result":true}`,
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "malformed data",
			body:    `{"data":{"numberOfSpamSubmissions":"many"}}`,
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "malformed dates",
			body:    `{"data":{"numbersByDate":{"2021-04-29":1}}}`,
			wantErr: ErrInvalidResponse,
		},
		{
			name:    "empty body",
			body:    ``,
			wantErr: ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := jsonServer(t, tt.body)
			c := newTestClient(t, srv.URL)

			got, err := c.StatisticByDate(context.Background(), StatisticQuery{})

			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.EqualError(t, err, tt.wantMsg)
			}
		})
	}

	t.Run("php empty dates", func(t *testing.T) {
		srv, _ := jsonServer(t, `{"data":{"numberOfValidSubmissions":1,"numberOfSpamSubmissions":2,"numbersByDate":[]}}`)
		c := newTestClient(t, srv.URL)

		got, err := c.StatisticByDate(context.Background(), StatisticQuery{})
		require.NoError(t, err)

		assert.Equal(t, 1, got.NumberOfValidSubmissions)
		assert.Equal(t, 2, got.NumberOfSpamSubmissions)
		assert.Empty(t, got.NumbersByDate)
		assert.NotNil(t, got.NumbersByDate)
	})
}

func TestStatisticByDateWithServer(t *testing.T) {
	srv := mosparotest.NewServer(mosparotest.Config{})
	defer srv.Close()

	srv.SetStatistics(mosparotest.Statistics{
		NumberOfValidSubmissions: 3,
		NumberOfSpamSubmissions:  4,
		NumbersByDate: map[string]mosparotest.DateStatistic{
			"2024-01-01": {NumberOfValidSubmissions: 3, NumberOfSpamSubmissions: 4},
		},
	})

	c, err := New(Config{Host: srv.URL, PublicKey: srv.PublicKey, PrivateKey: srv.PrivateKey})
	require.NoError(t, err)

	t.Run("signed query accepted", func(t *testing.T) {
		got, err := c.StatisticByDate(context.Background(), StatisticQuery{
			Range:     7 * 24 * time.Hour,
			StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		assert.Equal(t, 3, got.NumberOfValidSubmissions)
		assert.Equal(t, DateStatistic{NumberOfValidSubmissions: 3, NumberOfSpamSubmissions: 4}, got.NumbersByDate["2024-01-01"])
	})

	t.Run("wrong key escalates to error", func(t *testing.T) {
		other, err := New(Config{Host: srv.URL, PublicKey: srv.PublicKey, PrivateKey: "wrong"})
		require.NoError(t, err)

		_, err = other.StatisticByDate(context.Background(), StatisticQuery{})
		assert.ErrorIs(t, err, ErrRemote)
		assert.EqualError(t, err, "mosparo: remote error: Request not valid")
	})

	t.Run("remote error", func(t *testing.T) {
		srv.SetRemoteError("Project disabled.")
		defer srv.SetRemoteError("")

		_, err := c.StatisticByDate(context.Background(), StatisticQuery{})
		assert.ErrorIs(t, err, ErrRemote)
		assert.NotErrorIs(t, err, ErrTransport)
	})
}
