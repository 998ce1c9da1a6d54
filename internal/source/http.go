package source

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/vectome/vectome/internal/sketch"
)

type httpSource struct {
	baseURL string
	ksize   int
	retries int
	client  *http.Client
}

// NewHTTP constructs a Source backed by a signature service.
//
// It uses the REST endpoint:
//
//	GET {baseURL}/{identifier}
//
// returning a sourmash JSON signature. 404 means the identifier is unknown;
// 204 and 410 mean the genome exists without a sketch, as does any other
// non-2xx status. Transport errors are retried up to cfg.Retries times and
// then reported as an unresolved identifier.
func NewHTTP(cfg *Config) Source {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpSource{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		ksize:   cfg.KSize,
		retries: cfg.Retries,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *httpSource) Name() string { return "http:" + p.baseURL }

func (p *httpSource) Resolve(ctx context.Context, id string) (*sketch.Sketch, error) {
	if strings.TrimSpace(id) == "" {
		return nil, Unresolved(id, errors.New("empty identifier"))
	}
	endpoint := p.baseURL + "/" + url.PathEscape(strings.TrimSpace(id))

	var (
		resp *http.Response
		err  error
	)
	for attempt := 0; ; attempt++ {
		req, rerr := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if rerr != nil {
			return nil, rerr
		}
		req.Header.Set("Accept", "application/json")
		resp, err = p.client.Do(req)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, errors.Wrapf(err, "fetch %s", endpoint)
		}
		if attempt >= p.retries {
			return nil, Unresolved(id, errors.Wrapf(err, "fetch %s after %d attempts", endpoint, attempt+1))
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 200 * time.Millisecond):
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, Unavailable(id, errors.Wrapf(err, "cannot read response from %s", endpoint))
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, Unresolved(id, errors.Newf("HTTP %d", resp.StatusCode))
	case resp.StatusCode == http.StatusNoContent, resp.StatusCode == http.StatusGone:
		return nil, Unavailable(id, errors.Newf("HTTP %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, Unavailable(id, errors.Newf("signature request failed: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	s, err := sketch.ReadSignature(bytes.NewReader(body), p.ksize)
	if err != nil {
		return nil, Unavailable(id, err)
	}
	return s, nil
}
