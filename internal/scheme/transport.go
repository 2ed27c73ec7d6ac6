// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scheme

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
)

var installOnce sync.Once

// Install registers the "memgo" scheme on [http.DefaultTransport]. It must be
// called before artifacts are fetched with [http.DefaultClient]. Subsequent
// calls are no-ops.
func Install() {
	installOnce.Do(func() {
		transport, ok := http.DefaultTransport.(*http.Transport)
		if !ok {
			slog.Warn("Default transport replaced, memgo scheme not installed")
			return
		}

		transport.RegisterProtocol(Scheme, Transport{})

		slog.Debug("Scheme installed", slog.String("scheme", Scheme))
	})
}

// Transport is the [http.RoundTripper] for "memgo" URLs. It answers GET and
// HEAD requests with the artifact content or with status 404.
type Transport struct{}

var _ http.RoundTripper = Transport{}

// RoundTrip implements [http.RoundTripper].
func (Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		_ = req.Body.Close()
	}

	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return response(req, http.StatusMethodNotAllowed, http.NoBody), nil
	}

	body, err := Open(req.Context(), req.URL)

	switch {
	case errors.Is(err, ErrNotFound):
		return response(req, http.StatusNotFound, http.NoBody), nil
	case err != nil:
		return nil, err //nolint:wrapcheck
	}

	if req.Method == http.MethodHead {
		_ = body.Close()
		body = http.NoBody
	}

	return response(req, http.StatusOK, body), nil
}

func response(req *http.Request, status int, body io.ReadCloser) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        make(http.Header),
		Body:          body,
		ContentLength: -1,
		Request:       req,
	}
}
