package github

import (
	"fmt"
	"io"
	"net/http"
)

const userAgent = "gh-pr-report"

// authTransport sets the standard GitHub headers and, when a token is
// configured, a bearer Authorization header.
type authTransport struct {
	token string
	base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", jsonMediaType)
	}

	return t.base.RoundTrip(req)
}

// limitedReader fails once more than limit bytes have been read.
type limitedReader struct {
	io.ReadCloser
	limit int64
	read  int64
}

func (lr *limitedReader) Read(p []byte) (int, error) {
	if lr.read >= lr.limit {
		// Probe for one more byte so a body of exactly limit bytes still succeeds.
		var probe [1]byte
		n, err := lr.ReadCloser.Read(probe[:])
		if n > 0 {
			return 0, fmt.Errorf("response size exceeded limit of %d bytes", lr.limit)
		}
		return 0, err
	}

	remaining := lr.limit - lr.read
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err := lr.ReadCloser.Read(p)
	lr.read += int64(n)
	return n, err
}
