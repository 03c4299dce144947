package quote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(Config{URL: srv.URL, Pair: "BTCBRL", Timeout: time.Second, UserAgent: "AthenaBot/1.0"}), &calls
}

func TestFetch_Success(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AthenaBot/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"BTCBRL":{"code":"BTC","bid":"352100.5","pctChange":"-1.25"}}`))
	})

	q, ok := c.Fetch(context.Background())
	require.True(t, ok)
	assert.Equal(t, 352100.5, q.Price)
	assert.Equal(t, -1.25, q.PercentChange)
}

func TestFetch_BadChangeDegradesToZero(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"BTCBRL":{"bid":"100","pctChange":"n/a"}}`))
	})

	q, ok := c.Fetch(context.Background())
	require.True(t, ok)
	assert.Equal(t, 100.0, q.Price)
	assert.Equal(t, 0.0, q.PercentChange)
}

func TestFetch_NonFiniteChangeDegradesToZero(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"BTCBRL":{"bid":"100","pctChange":"NaN"}}`))
	})

	q, ok := c.Fetch(context.Background())
	require.True(t, ok)
	assert.Equal(t, 0.0, q.PercentChange)
}

func TestFetch_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"BTCBRL":{"bid":"1","pctChange":"0"}}`},
		{"malformed json", http.StatusOK, `{"BTCBRL":`},
		{"missing pair", http.StatusOK, `{"ETHBRL":{"bid":"1","pctChange":"0"}}`},
		{"bad bid", http.StatusOK, `{"BTCBRL":{"bid":"abc","pctChange":"0"}}`},
		{"zero bid", http.StatusOK, `{"BTCBRL":{"bid":"0","pctChange":"0"}}`},
		{"negative bid", http.StatusOK, `{"BTCBRL":{"bid":"-5","pctChange":"0"}}`},
		{"NaN bid", http.StatusOK, `{"BTCBRL":{"bid":"NaN","pctChange":"0"}}`},
		{"Inf bid", http.StatusOK, `{"BTCBRL":{"bid":"Inf","pctChange":"0"}}`},
		{"overflowing bid", http.StatusOK, `{"BTCBRL":{"bid":"1e400","pctChange":"0"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, ok := c.Fetch(context.Background())
			assert.False(t, ok)
			assert.Equal(t, int32(1), atomic.LoadInt32(calls), "no retry expected")
		})
	}
}

func TestFetch_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Config{URL: url, Pair: "BTCBRL"})
	_, ok := c.Fetch(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, c.Probe(context.Background()), ErrUnavailable)
}

func TestFetch_Timeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(done)

	c := NewClient(Config{URL: srv.URL, Pair: "BTCBRL", Timeout: 50 * time.Millisecond})
	_, ok := c.Fetch(context.Background())
	assert.False(t, ok)
}
