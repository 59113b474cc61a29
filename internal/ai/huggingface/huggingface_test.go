package huggingface

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeSuccess(t *testing.T) {
	var gotPath, gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"summary_text":"App crashes when config file is missing."}]`))
	}))
	defer srv.Close()

	c := NewClient("facebook/bart-large-cnn",
		WithBaseURL(srv.URL),
		WithToken("hf_test"),
		WithHTTPClient(srv.Client()),
	)

	got := c.Summarize(context.Background(), "Long issue description")

	assert.Equal(t, "App crashes when config file is missing.", got)
	assert.Equal(t, "/models/facebook/bart-large-cnn", gotPath)
	assert.Equal(t, "Bearer hf_test", gotAuth)
	assert.JSONEq(t, `{"inputs":"Long issue description"}`, gotBody)
}

// The three failure modes the pipeline can hit must be indistinguishable:
// transport errors, non-2xx responses, and responses missing summary_text all
// produce the identical marker.
func TestSummarizeFailureModes(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // refuse all connections

		c := NewClient("any/model", WithBaseURL(srv.URL))
		assert.Equal(t, FailureMarker, c.Summarize(context.Background(), "text"))
	})

	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := NewClient("any/model", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
		assert.Equal(t, FailureMarker, c.Summarize(context.Background(), "text"))
	})

	t.Run("missing summary field", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":"unexpected shape"}`))
		}))
		defer srv.Close()

		c := NewClient("any/model", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
		assert.Equal(t, FailureMarker, c.Summarize(context.Background(), "text"))
	})

	t.Run("empty array response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		c := NewClient("any/model", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
		assert.Equal(t, FailureMarker, c.Summarize(context.Background(), "text"))
	})
}

func TestSummarizeOmitsAuthorizationWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[{"summary_text":"ok"}]`))
	}))
	defer srv.Close()

	c := NewClient("any/model", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.Equal(t, "ok", c.Summarize(context.Background(), "text"))
	assert.Empty(t, gotAuth)
}
