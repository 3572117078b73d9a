package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ccollins476ad/passportphoto/passport"
	"github.com/ccollins476ad/passportphoto/web"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// newFetcher creates the fetcher described by cfg. It returns an error if
// cfg asks for private photos but the fetcher cannot retrieve them.
func newFetcher(cfg *Config, opts ...passport.Option) (*passport.Fetcher, error) {
	f := passport.NewFetcher(cfg.BaseURL, cfg.Token, opts...)
	if cfg.Private && !f.HasPrivate() {
		return nil, fmt.Errorf("-private requires a token: set PASSPORT_TOKEN")
	}
	return f, nil
}

// job is one identifier to fetch, remembering its position on the command
// line so results can be reported in order.
type job struct {
	idx        int
	identifier string
}

// fetchAll fetches the photo of each configured identifier, cfg.Jobs at a
// time. The returned slice has one entry per identifier, in command line
// order. It returns ctx's error if ctx was cancelled along the way.
func fetchAll(ctx context.Context, cfg *Config, f *passport.Fetcher) ([]passport.Result, error) {
	results := make([]passport.Result, len(cfg.Identifiers))
	g := &errgroup.Group{}

	startGoroutines := func() {
		jobChan := make(chan job)
		defer close(jobChan)

		for i := 0; i < cfg.Jobs; i++ {
			g.Go(func() error {
				// Each worker writes to distinct indices of results.
				for j := range jobChan {
					results[j.idx] = fetchOne(ctx, cfg, f, j.identifier)
				}
				return nil
			})
		}

		for i, id := range cfg.Identifiers {
			select {
			case <-ctx.Done():
				// Operation aborted. Return early to execute deferred channel
				// close.
				return

			case jobChan <- job{idx: i, identifier: id}:
			}
		}
	}

	startGoroutines()

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	return results, ctx.Err()
}

// fetchOne fetches a single photo with the configured timeout.
func fetchOne(ctx context.Context, cfg *Config, f *passport.Fetcher, identifier string) passport.Result {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	log.Debugf("fetching photo: identifier=%s private=%t", identifier, cfg.Private)

	if cfg.Private {
		return f.GetPrivatePhoto(ctx, identifier, cfg.OutDir, cfg.Query)
	}
	return f.GetPublicPhoto(ctx, identifier, cfg.OutDir, cfg.Query)
}

// report prints each saved photo to w and logs each failure. It returns the
// saved photos and the number of failures.
func report(w io.Writer, identifiers []string, results []passport.Result) ([]web.Photo, int) {
	var photos []web.Photo
	failed := 0

	for i, res := range results {
		id := identifiers[i]

		path, ok := res.Path()
		if !ok {
			log.Errorf("photo unavailable: identifier=%s", id)
			failed++
			continue
		}

		fmt.Fprintf(w, "%s\t%s\n", id, path)
		photos = append(photos, web.Photo{Identifier: id, Path: path})
	}

	return photos, failed
}

// writeGallery writes an html page showing the given photos to filename.
func writeGallery(filename string, photos []web.Photo) error {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return err
	}

	page := web.BuildGallery("Passport photos", filepath.Dir(abs), photos)

	log.Infof("writing gallery: %s", abs)
	return os.WriteFile(abs, []byte(page), 0644)
}
