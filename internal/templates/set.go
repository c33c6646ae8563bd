// Package templates loads the literal HTML fragments and stylesheets that wrap
// every generated page. Fragments are opaque bytes; nothing here parses them.
package templates

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	berrors "git.home.luguber.info/inful/webbuild/internal/errors"
)

// Fragment file names relative to the template root.
const (
	HeaderFile     = "html/header.p.html"
	MiddleFile     = "html/middle.p.html"
	FooterFile     = "html/footer.p.html"
	PageFooterFile = "html/footer.html"

	StylesheetDir = "css"
)

// Set holds the four fragments shared by every page of one build.
type Set struct {
	Header     []byte // opens every generated document
	Middle     []byte // separates an index fragment from its listing
	Footer     []byte // closes directory indexes
	PageFooter []byte // closes rendered page fragments
}

// Load reads every fragment below root. A missing or unreadable fragment fails the load.
func Load(root string) (*Set, error) {
	s := &Set{}
	targets := []struct {
		name string
		dst  *[]byte
	}{
		{HeaderFile, &s.Header},
		{MiddleFile, &s.Middle},
		{FooterFile, &s.Footer},
		{PageFooterFile, &s.PageFooter},
	}
	for _, t := range targets {
		path := filepath.Join(root, filepath.FromSlash(t.name))
		// #nosec G304 -- path is built from the configured template root
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, berrors.TemplateMissing(path, err)
		}
		*t.dst = b
	}
	return s, nil
}

// Stylesheets lists the .css files in root/css sorted by name. The files are
// returned as names relative to that directory.
func Stylesheets(root string) ([]string, error) {
	dir := filepath.Join(root, StylesheetDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, berrors.TemplateMissing(dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".css") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
