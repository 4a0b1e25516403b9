package vocab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/muesli/gitcha"
)

// DefaultSource is the vocabulary file used when none is given.
const DefaultSource = "words_a1.csv"

// maxSourceSize caps how much of a source is read.
const maxSourceSize = 16 << 20

// ErrLoadFailure wraps every transport or parse failure of Load.
var ErrLoadFailure = errors.New("unable to load vocabulary")

// SourceExtensions are the patterns used to find a vocabulary file inside
// a directory.
var SourceExtensions = []string{"*.csv", "*.txt", "*.md", "*.markdown"}

// Source describes where a list came from.
type Source struct {
	Location string // as requested
	Path     string // absolute local path, empty for stdin and URLs
	Format   Format
}

// IsLocal reports whether the source is a file that can be watched.
func (s Source) IsLocal() bool { return s.Path != "" }

// Loader fetches and parses vocabulary sources.
type Loader struct {
	Client *http.Client
	Stdin  io.Reader
}

// DefaultLoader reads from the network with http.DefaultClient and from os.Stdin.
var DefaultLoader = &Loader{Client: http.DefaultClient, Stdin: os.Stdin}

// Load fetches and parses a vocabulary source with DefaultLoader.
func Load(ctx context.Context, location string) (List, Source, error) {
	return DefaultLoader.Load(ctx, location)
}

// Load fetches location and parses it. location may be "-" for stdin, an
// http(s) URL, a directory, or a file path. Errors wrap ErrLoadFailure.
func (l *Loader) Load(ctx context.Context, location string) (List, Source, error) {
	if location == "" {
		location = DefaultSource
	}

	rc, src, err := l.open(ctx, location)
	if err != nil {
		return nil, src, fmt.Errorf("%w: %w", ErrLoadFailure, err)
	}
	defer rc.Close() //nolint:errcheck

	b, err := io.ReadAll(io.LimitReader(rc, maxSourceSize))
	if err != nil {
		return nil, src, fmt.Errorf("%w: unable to read %s: %w", ErrLoadFailure, location, err)
	}

	list, err := Parse(string(b), src.Format)
	if err != nil {
		return nil, src, fmt.Errorf("%w: %s: %w", ErrLoadFailure, location, err)
	}

	log.Debug("vocabulary loaded", "source", location, "format", src.Format, "entries", len(list))
	return list, src, nil
}

func (l *Loader) open(ctx context.Context, location string) (io.ReadCloser, Source, error) {
	src := Source{Location: location, Format: FormatFor(location)}

	// from stdin
	if location == "-" {
		if l.Stdin == nil {
			return nil, src, errors.New("stdin is not available")
		}
		return io.NopCloser(l.Stdin), src, nil
	}

	// HTTP(S) URLs
	if u, err := url.ParseRequestURI(location); err == nil && strings.Contains(location, "://") {
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, src, fmt.Errorf("%s is not a supported protocol", u.Scheme)
		}
		src.Format = FormatFor(u.Path)
		rc, err := l.fetch(ctx, u.String())
		return rc, src, err
	}

	st, err := os.Stat(location)
	if err != nil {
		return nil, src, fmt.Errorf("unable to open file: %w", err)
	}
	if st.IsDir() {
		found, err := FindSource(location)
		if err != nil {
			return nil, src, err
		}
		location = found
		src.Format = FormatFor(found)
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, src, fmt.Errorf("unable to open file: %w", err)
	}
	if abs, err := filepath.Abs(location); err == nil {
		src.Path = abs
	} else {
		src.Path = location
	}
	return f, src, nil
}

func (l *Loader) fetch(ctx context.Context, u string) (io.ReadCloser, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to get url: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// FindSource returns the first vocabulary file, by path order, below dir.
func FindSource(dir string) (string, error) {
	ch, err := gitcha.FindFilesExcept(dir, SourceExtensions, nil)
	if err != nil {
		return "", fmt.Errorf("unable to search %s: %w", dir, err)
	}

	var paths []string
	for res := range ch {
		paths = append(paths, res.Path)
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("no vocabulary file found in %s", dir)
	}

	sort.Strings(paths)
	return paths[0], nil
}
