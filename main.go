package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/ccollins476ad/passportphoto/passport"
	log "github.com/sirupsen/logrus"
)

func printFatalError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

func main() {
	fs := newFlagSet(os.Args[0], os.Stderr)

	cfg, err := parseArgs(fs, os.Args[1:], os.Getenv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		printFatalError(err)
		fs.Usage()
		os.Exit(1)
	}

	log.SetOutput(os.Stderr)
	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f, err := newFetcher(cfg,
		passport.WithHTTPClient(&http.Client{}),
		passport.WithLogger(log.WithField("component", "passport")),
	)
	if err != nil {
		printFatalError(err)
		os.Exit(1)
	}

	results, err := fetchAll(ctx, cfg, f)
	if err != nil {
		printFatalError(err)
		os.Exit(3)
	}

	photos, failed := report(os.Stdout, cfg.Identifiers, results)

	if cfg.Gallery != "" {
		err = writeGallery(cfg.Gallery, photos)
		if err != nil {
			printFatalError(err)
			os.Exit(2)
		}
	}

	if failed > 0 {
		log.Warnf("%d of %d photos unavailable", failed, len(results))
		os.Exit(3)
	}
}
