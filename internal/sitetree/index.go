package sitetree

import (
	"fmt"
	"html"
	"strings"
)

const (
	homeLabel = "🏠 "
	upLabel   = "⇑ up"
)

// Entry is one row of a directory listing.
type Entry struct {
	Name         string
	Href         string
	NewContext   bool // open in a new browsing context (files only)
	LastModified string
	Size         string
}

// escaper returns html.EscapeString when enabled and the identity otherwise.
func escaper(enabled bool) func(string) string {
	if enabled {
		return html.EscapeString
	}
	return func(s string) string { return s }
}

// NormalizeFolder converts a relative folder path to its rooted form:
// "" stays "", "a/b" and "/a/b/" become "/a/b".
func NormalizeFolder(folder string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return ""
	}
	return "/" + folder
}

// Breadcrumb renders the navigation links from the site root to folder.
// The root segment links to "/" and shows a home glyph; every later segment
// links to the cumulative path up to and including itself.
func Breadcrumb(folder string, escape bool) string {
	esc := escaper(escape)
	segments := strings.Split(NormalizeFolder(folder), "/")

	var sb strings.Builder
	sb.WriteString("<p>")
	for i, seg := range segments {
		href, label := "/", homeLabel
		if i > 0 {
			href, label = strings.Join(segments[:i+1], "/"), seg
		}
		fmt.Fprintf(&sb, " <a href='%s'>%s</a> /", esc(href), esc(label))
	}
	sb.WriteString("</p>")
	return sb.String()
}

// Listing renders the entry table for folder. Non-root folders start with an up row.
func Listing(folder string, entries []Entry, escape bool) string {
	esc := escaper(escape)
	folder = NormalizeFolder(folder)

	var sb strings.Builder
	sb.WriteString("<table><tbody>")
	if folder != "" {
		fmt.Fprintf(&sb, "<tr><td><a href='%s/..'>%s</a></td><td></td><td></td></tr>", esc(folder), upLabel)
	}
	for _, e := range entries {
		target := ""
		if e.NewContext {
			target = " target='_blank'"
		}
		fmt.Fprintf(&sb, "<tr><td><a href='%s'%s>%s</a></td><td>%s</td><td>%s</td></tr>",
			esc(e.Href), target, esc(e.Name), e.LastModified, e.Size)
	}
	sb.WriteString("</tbody></table>")
	return sb.String()
}
