package transport

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dittonosql/go-sdk/internal/auth"
)

func testProvider(t *testing.T) auth.Provider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return auth.NewSimpleProvider("ocid1.tenancy.oc1..t", "ocid1.user.oc1..u", "aa:bb:cc", "us-ashburn-1", key)
}

func TestTransport_Send_SignsAndSetsHeaders(t *testing.T) {
	var gotAuth, gotContentType, gotRequestID, gotContentSHA256 string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotRequestID = r.Header.Get("opc-client-request-id")
		gotContentSHA256 = r.Header.Get("x-content-sha256")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	tr := New(nil, srv.URL, testProvider(t), "test-agent/1.0")
	resp, err := tr.Send(context.Background(), DataPath(4), []byte("frame-bytes"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []byte("ok"), resp.Body)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, resp.RequestID, gotRequestID)
	assert.Equal(t, "application/octet-stream", gotContentType)
	assert.True(t, strings.HasPrefix(gotAuth, `Signature version="1"`))
	assert.Contains(t, gotAuth, `keyId="ocid1.tenancy.oc1..t/ocid1.user.oc1..u/aa:bb:cc"`)
	assert.Contains(t, gotAuth, `headers="date (request-target) host content-type content-length x-content-sha256"`)
	assert.Equal(t, []byte("frame-bytes"), gotBody)

	sum := sha256.Sum256([]byte("frame-bytes"))
	assert.Equal(t, base64.StdEncoding.EncodeToString(sum[:]), gotContentSHA256)
}

func TestTransport_Send_EachCallGetsAFreshRequestID(t *testing.T) {
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get("opc-client-request-id"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := New(nil, srv.URL, testProvider(t), "")
	_, err := tr.Send(context.Background(), "/V4/nosql/data", nil)
	require.NoError(t, err)
	_, err = tr.Send(context.Background(), "/V4/nosql/data", nil)
	require.NoError(t, err)

	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestTransport_Send_NoProviderSendsNoAuthorizationHeader(t *testing.T) {
	var gotAuth string
	var sawHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth, sawHeader = r.Header.Get("Authorization"), r.Header.Get("Authorization") != ""
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := New(nil, srv.URL, nil, "")
	_, err := tr.Send(context.Background(), "/V4/nosql/data", nil)
	require.NoError(t, err)
	assert.False(t, sawHeader, "unexpected Authorization header: %q", gotAuth)
}

func TestTransport_Send_DeadlineExceededTranslatesToRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := New(nil, srv.URL, testProvider(t), "")
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	_, err := tr.Send(ctx, "/V4/nosql/data", nil)
	require.Error(t, err)
}

func TestTransport_Send_ConnectionRefusedTranslatesToServerError(t *testing.T) {
	tr := New(nil, "http://127.0.0.1:1", testProvider(t), "")
	_, err := tr.Send(context.Background(), "/V4/nosql/data", nil)
	require.Error(t, err)
}

func TestEffectiveTimeout(t *testing.T) {
	cases := []struct {
		name                             string
		request, deflt, remaining, want time.Duration
	}{
		{"all zero means unlimited", 0, 0, 0, 0},
		{"request timeout is the only positive value", 5 * time.Second, 0, 0, 5 * time.Second},
		{"smallest of the three wins", 5 * time.Second, 3 * time.Second, 10 * time.Second, 3 * time.Second},
		{"remaining budget can be the smallest", time.Minute, time.Minute, time.Second, time.Second},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := EffectiveTimeout(c.request, c.deflt, c.remaining)
			assert.Equal(t, c.want, got)
		})
	}
}
