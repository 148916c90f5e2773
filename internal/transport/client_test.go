package transport_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/docsync/internal/transport"
	"github.com/agentstation/docsync/pkg/errors"
)

func TestClientGetAndPost(t *testing.T) {
	var gotContentType, gotBody, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.Method == http.MethodPost {
			gotContentType = r.Header.Get("Content-Type")
			b, _ := io.ReadAll(r.Body)
			gotBody = string(b)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := transport.New(transport.WithRateLimit(0, 0), transport.WithUserAgent("test-agent"))

	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	body, err := transport.ReadBody(resp, "fetch")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
	assert.Equal(t, "test-agent", gotUA)

	resp, err = c.Post(context.Background(), srv.URL, transport.ContentTypeText, `{"a":1}`)
	require.NoError(t, err)
	_, err = transport.ReadBody(resp, "create")
	require.NoError(t, err)
	assert.Equal(t, "text/plain;charset=utf-8", gotContentType)
	assert.Equal(t, `{"a":1}`, gotBody)
}

func TestReadBodyStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	resp, err := transport.New().Get(context.Background(), srv.URL)
	require.NoError(t, err)
	_, err = transport.ReadBody(resp, "fetch")
	require.Error(t, err)
	assert.True(t, errors.IsTransport(err))

	var te *errors.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusBadGateway, te.StatusCode)
	assert.Contains(t, te.Message, "boom")
}

func TestRateLimitHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := transport.New(transport.WithRateLimit(0.001, 1))
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	_, _ = transport.ReadBody(resp, "fetch")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Get(ctx, srv.URL)
	assert.Error(t, err, "second request must wait longer than the deadline")
}
