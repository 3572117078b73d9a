// Package passport retrieves avatar images from a Passport image service and
// saves them as local files.
//
// Two endpoints exist. The public one, {base}/img/avatar/, needs no
// credentials. The private one, {base}/img/private/avatar/, requires a bearer
// token and is only available to a Fetcher constructed with one. Query
// parameters are forwarded untouched; the service interprets them as Glide
// image transformations (w, h, fit, ...).
package passport

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/ccollins476ad/passportphoto/download"
	"github.com/ccollins476ad/passportphoto/fileutil"
	log "github.com/sirupsen/logrus"
)

// Version is reported to the server in the User-Agent header.
const Version = "1.0.0"

const (
	publicPath  = "/img/avatar/"
	privatePath = "/img/private/avatar/"
)

var errNoToken = errors.New("private photos require a token")

// endpoint is a fully configured avatar location. It is never modified after
// construction.
type endpoint struct {
	name   string
	root   string // Ends with a slash; the identifier is appended.
	header http.Header
}

// Fetcher retrieves avatar photos. It is safe for concurrent use.
type Fetcher struct {
	hc     download.Doer
	logger *log.Entry

	public  *endpoint
	private *endpoint // nil without a token.
}

// Option configures a Fetcher.
type Option func(f *Fetcher)

// WithHTTPClient makes the fetcher send requests through hc instead of
// http.DefaultClient.
func WithHTTPClient(hc download.Doer) Option {
	return func(f *Fetcher) {
		f.hc = hc
	}
}

// WithLogger sets the entry that failure causes are logged to.
func WithLogger(l *log.Entry) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a fetcher for the Passport service at baseURL. Private
// photos can only be retrieved if token is non-empty.
func NewFetcher(baseURL string, token string, opts ...Option) *Fetcher {
	base := strings.TrimRight(baseURL, "/")

	f := &Fetcher{
		hc:     http.DefaultClient,
		logger: log.NewEntry(log.StandardLogger()),
		public: &endpoint{
			name:   "public",
			root:   base + publicPath,
			header: baseHeader(),
		},
	}

	if token != "" {
		header := baseHeader()
		header.Set("Authorization", "Bearer "+token)
		f.private = &endpoint{
			name:   "private",
			root:   base + privatePath,
			header: header,
		}
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

func baseHeader() http.Header {
	return http.Header{
		"Accept":     []string{"*/*"},
		"User-Agent": []string{"passportphoto/" + Version},
	}
}

// HasPrivate returns true if the fetcher was given a token and can therefore
// retrieve private photos.
func (f *Fetcher) HasPrivate() bool {
	return f.private != nil
}

// GetPrivatePhoto retrieves the private photo of the given identifier and
// saves it to <outputDir>/<identifier>.jpg. An empty outputDir means the
// platform's temporary directory. query is sent as the url query string. The
// result fails immediately, without any network traffic, if the fetcher has
// no token.
func (f *Fetcher) GetPrivatePhoto(ctx context.Context, identifier string, outputDir string, query map[string]string) Result {
	if f.private == nil {
		f.logFailure(identifier, "private", errNoToken)
		return failed()
	}
	return f.fetch(ctx, f.private, identifier, outputDir, query)
}

// GetPublicPhoto retrieves the public photo of the given identifier. See
// GetPrivatePhoto() for the meaning of the parameters.
func (f *Fetcher) GetPublicPhoto(ctx context.Context, identifier string, outputDir string, query map[string]string) Result {
	return f.fetch(ctx, f.public, identifier, outputDir, query)
}

// fetch downloads one photo from ep. Every error is logged and collapsed into
// a failed result.
func (f *Fetcher) fetch(ctx context.Context, ep *endpoint, identifier string, outputDir string, query map[string]string) Result {
	destPath, err := fileutil.PhotoPath(outputDir, identifier)
	if err != nil {
		f.logFailure(identifier, ep.name, err)
		return failed()
	}

	u := ep.photoURL(identifier, query)

	err = download.GetFile(ctx, f.hc, u, ep.header, destPath)
	if err != nil {
		f.logFailure(identifier, ep.name, err)
		return failed()
	}

	return succeeded(destPath)
}

func (f *Fetcher) logFailure(identifier string, epName string, err error) {
	f.logger.WithError(err).WithFields(log.Fields{
		"identifier": identifier,
		"endpoint":   epName,
	}).Debug("photo unavailable")
}

// photoURL returns the url of the given identifier's photo, with query
// encoded in sorted key order.
func (ep *endpoint) photoURL(identifier string, query map[string]string) string {
	u := ep.root + url.PathEscape(identifier)

	if len(query) == 0 {
		return u
	}

	vals := url.Values{}
	for k, v := range query {
		vals.Set(k, v)
	}

	return u + "?" + vals.Encode()
}
