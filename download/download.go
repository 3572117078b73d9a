package download

import (
	"context"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// Doer sends http requests. *http.Client implements it; tests substitute
// their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError indicates the server answered with something other than 200 OK.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("error status: %s", e.Status)
}

// GetBody performs an http GET with url=u using the supplied client and
// header. Only a 200 response is accepted; anything else, including other 2xx
// codes, yields a *StatusError.
func GetBody(ctx context.Context, hc Doer, u string, header http.Header) (io.ReadCloser, error) {
	log.Debugf("get: %s", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	rsp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	if rsp.StatusCode != http.StatusOK {
		// Drain a little so the connection can be reused. Errors here don't
		// matter; the request has already failed.
		_, _ = io.CopyN(io.Discard, rsp.Body, 4096)
		rsp.Body.Close()
		return nil, &StatusError{Code: rsp.StatusCode, Status: rsp.Status}
	}

	return rsp.Body, nil
}

// GetFile calls GetBody(), then streams the response into destPath via
// SaveStream(). Cancelling ctx aborts the transfer and leaves destPath
// untouched.
func GetFile(ctx context.Context, hc Doer, u string, header http.Header, destPath string) error {
	body, err := GetBody(ctx, hc, u, header)
	if err != nil {
		return err
	}
	defer body.Close()

	err = SaveStream(body, destPath)
	if err != nil {
		return fmt.Errorf("failed to save http response: %w", err)
	}

	return nil
}
