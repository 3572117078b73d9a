package main

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"mvdan.cc/xurls/v2"
)

type Config struct {
	BaseURL     string            // Passport service url.
	Token       string            // Bearer token from $PASSPORT_TOKEN; enables private photos.
	Private     bool              // True to fetch private photos.
	OutDir      string            // Directory to save photos to. Empty for the temp dir.
	Query       map[string]string // Image transform parameters.
	Identifiers []string          // Users whose photos to fetch.
	Gallery     string            // Path of html gallery to write, or "".
	Timeout     time.Duration     // Per-photo request timeout.
	Verbose     bool              // True for verbose output.
	Jobs        int               // Number of jobs to run in parallel.
}

// queryFlag collects repeated -q key=value arguments.
type queryFlag map[string]string

func (q queryFlag) String() string {
	var parts []string
	for k, v := range q {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (q queryFlag) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return fmt.Errorf("query parameter must have the form key=value: %s", s)
	}
	q[k] = v
	return nil
}

// parseArgs builds a Config from command line arguments. getenv supplies the
// default service url and the bearer token. The token is only read from the
// environment so it never shows up in process listings.
func parseArgs(fs *flag.FlagSet, args []string, getenv func(string) string) (*Config, error) {
	query := queryFlag{}

	baseURL := fs.String("url", getenv("PASSPORT_URL"), "passport service url (default $PASSPORT_URL)")
	private := fs.Bool("private", false, "fetch private photos; requires $PASSPORT_TOKEN")
	outDir := fs.String("o", "", "output directory (default: system temp dir)")
	gallery := fs.String("gallery", "", "write an html gallery of the fetched photos to this file")
	timeout := fs.Duration("timeout", 30*time.Second, "per-photo request timeout")
	verbose := fs.Bool("v", false, "verbose output")
	jobs := fs.Int("j", 1, "jobs")
	fs.Var(query, "q", "image transform parameter key=value, repeatable (e.g. w=200)")

	fs.Usage = func() { usage(fs) }

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}

	if *baseURL == "" {
		return nil, fmt.Errorf("missing passport url: use -url or set PASSPORT_URL")
	}
	err = checkBaseURL(*baseURL)
	if err != nil {
		return nil, err
	}

	if *jobs < 1 {
		return nil, fmt.Errorf("invalid job count: %d", *jobs)
	}

	if len(fs.Args()) < 1 {
		return nil, fmt.Errorf("missing required argument: identifier")
	}

	return &Config{
		BaseURL:     *baseURL,
		Token:       getenv("PASSPORT_TOKEN"),
		Private:     *private,
		OutDir:      *outDir,
		Query:       query,
		Identifiers: fs.Args(),
		Gallery:     *gallery,
		Timeout:     *timeout,
		Verbose:     *verbose,
		Jobs:        *jobs,
	}, nil
}

// checkBaseURL returns an error unless u is a complete http or https url.
func checkBaseURL(u string) error {
	rx, err := xurls.StrictMatchingScheme(`https?://`)
	if err != nil {
		return err
	}

	trimmed := strings.TrimRight(u, "/")
	if rx.FindString(trimmed) != trimmed {
		return fmt.Errorf("invalid passport url: %s", u)
	}

	return nil
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintf(out, "Usage: %s [option]... <identifier>...\n", filepath.Base(fs.Name()))
	fmt.Fprintf(out, "Downloads avatar photos from a Passport service.\n")
	fmt.Fprintf(out, "Private photos need a bearer token in $PASSPORT_TOKEN.\n")
	fs.PrintDefaults()
}

// newFlagSet returns the flag set parseArgs() is normally given.
func newFlagSet(name string, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	return fs
}
