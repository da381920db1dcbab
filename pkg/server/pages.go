package server

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// PageExt is the page fixture file extension.
const PageExt = ".html"

// ErrPageNotFound is returned for unknown page fixtures.
var ErrPageNotFound = errors.New("server: page not found")

// listPages returns the fixture names in pages, without extension.
func listPages(pages fs.FS) ([]string, error) {
	if pages == nil {
		return nil, nil
	}
	files, err := fs.Glob(pages, "*"+PageExt)
	if err != nil {
		return nil, fmt.Errorf("server: list pages: %w", err)
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(f, PageExt))
	}
	sort.Strings(names)
	return names, nil
}

// readPage returns the markup of the named fixture.
func readPage(pages fs.FS, name string) (string, error) {
	if pages == nil || name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrPageNotFound, name)
	}
	file := name
	if path.Ext(file) != PageExt {
		file += PageExt
	}
	if !fs.ValidPath(file) {
		return "", fmt.Errorf("%w: %q", ErrPageNotFound, name)
	}
	data, err := fs.ReadFile(pages, file)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %q", ErrPageNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("server: read page %s: %w", name, err)
	}
	return string(data), nil
}
