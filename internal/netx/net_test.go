package netx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutObject(t *testing.T) {
	file := []byte("png bytes")
	header := http.Header{"Authorization": []string{"Bearer tok"}}

	t.Run("success 201", func(t *testing.T) {
		var gotBody []byte
		var gotCT, gotAuth, gotMethod string

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			gotAuth = r.Header.Get("Authorization")
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusCreated)
		}))
		defer ts.Close()

		err := PutObject(context.Background(), ts.Client(), ts.URL+"/objects/a.png", header, file, "image/png")
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "image/png", gotCT)
		assert.Equal(t, "Bearer tok", gotAuth)
		assert.True(t, bytes.Equal(file, gotBody))
	})

	t.Run("non-2xx -> HTTPError with truncated body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(strings.Repeat("x", 500)))
		}))
		defer ts.Close()

		err := PutObject(context.Background(), nil, ts.URL, nil, file, "image/png")

		var httpErr *HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
		assert.Len(t, httpErr.Body, maxErrorBody)
		assert.True(t, strings.HasPrefix(err.Error(), "HTTP 403: "))
	})

	t.Run("network error", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		err := PutObject(context.Background(), nil, ts.URL, nil, file, "image/png")
		require.Error(t, err)

		var httpErr *HTTPError
		assert.False(t, errors.As(err, &httpErr))
	})

	t.Run("context deadline", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer ts.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := PutObject(ctx, nil, ts.URL, nil, file, "image/png")
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestGet(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer ok" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer ts.Close()

	require.NoError(t, Get(context.Background(), nil, ts.URL, http.Header{"Authorization": []string{"Bearer ok"}}))

	err := Get(context.Background(), nil, ts.URL, nil)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
}
