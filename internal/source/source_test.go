package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/vectome/vectome/internal/sketch"
)

const ecoliSig = `[{"name":"Escherichia coli","signatures":[{"num":4,"ksize":51,"mins":[4,3,2,1]}]}]`

func TestKey(t *testing.T) {
	require.Equal(t, "escherichia_coli", Key("  Escherichia   coli "))
	require.Equal(t, "escherichia_coli_k-12", Key("Escherichia coli K-12"))
	require.Equal(t, "562", Key("562"))
	require.Equal(t, "a_b", Key("a/b"))
}

func TestDirSource_Resolve(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "escherichia_coli.sig"), []byte(ecoliSig), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "562.json"), []byte(ecoliSig), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.sig"), []byte(`[{"signatures":[]}]`), 0o644))

	src := NewDir(dir, 51)
	ctx := context.Background()

	s, err := src.Resolve(ctx, "Escherichia coli")
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3, 4}, s.Hashes())

	s, err = src.Resolve(ctx, "562")
	require.NoError(t, err)
	require.Equal(t, 4, s.Len())

	_, err = src.Resolve(ctx, "Bacillus subtilis")
	require.True(t, errors.Is(err, ErrUnresolvedIdentifier), "got %v", err)

	_, err = src.Resolve(ctx, "empty")
	require.True(t, errors.Is(err, ErrSketchUnavailable), "got %v", err)
}

func TestStatic(t *testing.T) {
	src := NewStatic(map[string]*sketch.Sketch{
		"A":       sketch.New([]uint64{1}),
		"No Data": nil,
	})
	ctx := context.Background()

	_, err := src.Resolve(ctx, "a")
	require.NoError(t, err)
	_, err = src.Resolve(ctx, "no data")
	require.True(t, errors.Is(err, ErrSketchUnavailable))
	_, err = src.Resolve(ctx, "missing")
	require.True(t, errors.Is(err, ErrUnresolvedIdentifier))
	require.True(t, IsResolutionFailure(err))
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Escherichia coli":
			_, _ = w.Write([]byte(ecoliSig))
		case "/gone":
			w.WriteHeader(http.StatusGone)
		case "/boom":
			w.WriteHeader(http.StatusInternalServerError)
		case "/short":
			w.Header().Set("Content-Length", "4096")
			_, _ = w.Write([]byte("[{"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src, err := NewFromConfig(&Config{Type: "http", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	ctx := context.Background()

	s, err := src.Resolve(ctx, "Escherichia coli")
	require.NoError(t, err)
	require.Equal(t, "Escherichia coli", s.Name())

	_, err = src.Resolve(ctx, "nobody")
	require.True(t, errors.Is(err, ErrUnresolvedIdentifier))

	_, err = src.Resolve(ctx, "gone")
	require.True(t, errors.Is(err, ErrSketchUnavailable))

	_, err = src.Resolve(ctx, "boom")
	require.True(t, errors.Is(err, ErrSketchUnavailable), "got %v", err)
	require.True(t, IsResolutionFailure(err))
	require.Contains(t, err.Error(), "HTTP 500")

	_, err = src.Resolve(ctx, "short")
	require.True(t, errors.Is(err, ErrSketchUnavailable), "got %v", err)
}

func TestHTTPSource_UnreachableAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	src := NewHTTP(&Config{BaseURL: base, Retries: 1})
	_, err := src.Resolve(context.Background(), "Escherichia coli")
	require.True(t, errors.Is(err, ErrUnresolvedIdentifier), "got %v", err)
	require.True(t, IsResolutionFailure(err))
	require.Contains(t, err.Error(), "after 2 attempts")
}

func TestHTTPSource_Timeout(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	src := NewHTTP(&Config{BaseURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := src.Resolve(ctx, "slow")
	require.Error(t, err)
	require.True(t, IsResolutionFailure(err), "got %v", err)
}

func TestNewFromConfig_Errors(t *testing.T) {
	_, err := NewFromConfig(nil)
	require.Error(t, err)
	_, err = NewFromConfig(&Config{Type: "dir"})
	require.Error(t, err)
	require.NotEmpty(t, errors.FlattenHints(err))
	_, err = NewFromConfig(&Config{Type: "ftp"})
	require.Error(t, err)
}
