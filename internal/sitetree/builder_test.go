package sitetree

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/webbuild/internal/config"
	berrors "git.home.luguber.info/inful/webbuild/internal/errors"
	"git.home.luguber.info/inful/webbuild/internal/history"
	"git.home.luguber.info/inful/webbuild/internal/metrics"
	"git.home.luguber.info/inful/webbuild/internal/observability"
	helpers "git.home.luguber.info/inful/webbuild/internal/testutil/testutils"
)

type fixture struct {
	src, out, tpl string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	base := t.TempDir()
	f := fixture{
		src: filepath.Join(base, "src"),
		out: filepath.Join(base, "out"),
		tpl: filepath.Join(base, "templates"),
	}
	helpers.WriteTree(t, f.src, map[string]string{
		"index.p.html":    "<h1>Home</h1>",
		"about.p.html":    "<p>About</p>",
		"notes.p.md":      "# Notes\n",
		"logo.png":        "PNG",
		"docs/guide.txt":  "guide",
		"docs/deep/x.txt": "xx",
	})
	helpers.WriteTree(t, f.tpl, map[string]string{
		"html/header.p.html": "<H>",
		"html/middle.p.html": "<M>",
		"html/footer.p.html": "<F>",
		"html/footer.html":   "<PF>",
		"css/index.css":      "body{}",
		"css/print.css":      "@media print{}",
		"css/README":         "not a stylesheet",
	})
	return f
}

func (f fixture) options() Options {
	return Options{
		SourceRoot:   f.src,
		OutputRoot:   f.out,
		TemplateRoot: f.tpl,
		History: history.Static{
			filepath.Join(f.src, "about.p.html"): "2024-03-01 12:00",
		},
	}
}

type countingRecorder struct {
	entries  map[metrics.EntryKind]int
	outcomes map[metrics.Outcome]int
	bytes    int64
	observed int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{entries: map[metrics.EntryKind]int{}, outcomes: map[metrics.Outcome]int{}}
}

func (r *countingRecorder) ObserveBuildDuration(time.Duration) { r.observed++ }
func (r *countingRecorder) IncBuildOutcome(o metrics.Outcome)  { r.outcomes[o]++ }
func (r *countingRecorder) IncEntry(k metrics.EntryKind)       { r.entries[k]++ }
func (r *countingRecorder) AddBytesWritten(n int64)            { r.bytes += n }

func TestBuild_RootIndex(t *testing.T) {
	f := newFixture(t)
	_, err := New(f.options()).Build(context.Background())
	require.NoError(t, err)

	want := "<H><h1>Home</h1><M>" +
		"<p> <a href='/'>🏠 </a> /</p>" +
		"<table><tbody>" +
		"<tr><td><a href='/about.p.html' target='_blank'>about.p.html</a></td><td>2024-03-01 12:00</td><td>12.00 B</td></tr>" +
		"<tr><td><a href='/docs'>docs</a></td><td></td><td>7.00 B</td></tr>" +
		"<tr><td><a href='/logo.png' target='_blank'>logo.png</a></td><td></td><td>3.00 B</td></tr>" +
		"<tr><td><a href='/notes.p.md' target='_blank'>notes.p.md</a></td><td></td><td>8.00 B</td></tr>" +
		"</tbody></table><F>"
	helpers.NewFileAssertions(t, f.out).AssertFileEquals("index.html", want)
}

func TestBuild_NestedIndex(t *testing.T) {
	f := newFixture(t)
	_, err := New(f.options()).Build(context.Background())
	require.NoError(t, err)

	want := "<H><M>" +
		"<p> <a href='/'>🏠 </a> / <a href='/docs'>docs</a> /</p>" +
		"<table><tbody>" +
		"<tr><td><a href='/docs/..'>⇑ up</a></td><td></td><td></td></tr>" +
		"<tr><td><a href='/docs/deep'>deep</a></td><td></td><td>2.00 B</td></tr>" +
		"<tr><td><a href='/docs/guide.txt' target='_blank'>guide.txt</a></td><td></td><td>5.00 B</td></tr>" +
		"</tbody></table><F>"
	helpers.NewFileAssertions(t, f.out).AssertFileEquals("docs/index.html", want)
}

func TestBuild_MirrorsTree(t *testing.T) {
	f := newFixture(t)
	res, err := New(f.options()).Build(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, res.BuildID)

	helpers.NewFileAssertions(t, f.out).
		AssertFileEquals("about.html", "<H><p>About</p><PF>").
		AssertFileEquals("notes.p.md", "# Notes\n").
		AssertFileEquals("logo.png", "PNG").
		AssertFileEquals("docs/guide.txt", "guide").
		AssertFileEquals("docs/deep/x.txt", "xx").
		AssertDirExists("docs/deep").
		AssertFileExists("docs/deep/index.html").
		AssertFileEquals(".styling/index.css", "body{}").
		AssertFileEquals(".styling/print.css", "@media print{}").
		AssertNotExists(".styling/README").
		AssertNotExists("index.p.html").
		AssertNotExists("about.p.html").
		AssertNotExists("notes.html")

	// Every source directory has an index document.
	err = filepath.WalkDir(f.src, func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		if d.IsDir() {
			rel, _ := filepath.Rel(f.src, path)
			helpers.NewFileAssertions(t, f.out).AssertFileExists(filepath.Join(rel, IndexDocument))
		}
		return nil
	})
	require.NoError(t, err)

	require.Equal(t, 3, res.Directories)
	require.Equal(t, 1, res.Pages)
	require.Equal(t, 0, res.Markdown)
	require.Equal(t, 4, res.Copies)
	require.Equal(t, 2, res.Stylesheets)
}

func TestBuild_RenderMarkdown(t *testing.T) {
	f := newFixture(t)
	opts := f.options()
	opts.RenderMarkdown = true
	res, err := New(opts).Build(context.Background())
	require.NoError(t, err)

	helpers.NewFileAssertions(t, f.out).
		AssertFileEquals("notes.html", "<H><h1 id=\"notes\">Notes</h1>\n<PF>").
		AssertNotExists("notes.p.md").
		AssertFileContains("index.html", "<a href='/notes.p.md' target='_blank'>notes.p.md</a>")

	require.Equal(t, 1, res.Markdown)
	require.Equal(t, 3, res.Copies)
}

func TestBuild_ResolveLinks(t *testing.T) {
	f := newFixture(t)
	opts := f.options()
	opts.RenderMarkdown = true
	opts.ResolveLinks = true
	_, err := New(opts).Build(context.Background())
	require.NoError(t, err)

	helpers.NewFileAssertions(t, f.out).
		AssertFileContains("index.html", "<a href='/about.html' target='_blank'>about.p.html</a>").
		AssertFileContains("index.html", "<a href='/notes.html' target='_blank'>notes.p.md</a>").
		AssertFileContains("index.html", "<a href='/docs'>docs</a>")
}

func TestBuild_IndexLinksResolve(t *testing.T) {
	tests := []struct {
		name    string
		resolve bool
		// root the listing hrefs are looked up under
		root func(fixture) string
	}{
		{"source names", false, func(f fixture) string { return f.src }},
		{"output names", true, func(f fixture) string { return f.out }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			opts := f.options()
			opts.RenderMarkdown = true
			opts.ResolveLinks = tt.resolve
			_, err := New(opts).Build(context.Background())
			require.NoError(t, err)

			for _, dir := range []string{"", "docs", "docs/deep"} {
				raw, err := os.ReadFile(filepath.Join(f.out, dir, IndexDocument))
				require.NoError(t, err)
				doc, err := html.Parse(bytes.NewReader(raw))
				require.NoError(t, err)

				for _, href := range tableLinks(doc) {
					if strings.HasSuffix(href, "/..") {
						continue
					}
					target := filepath.Join(tt.root(f), filepath.FromSlash(strings.TrimPrefix(href, "/")))
					_, err := os.Stat(target)
					require.NoError(t, err, "link %q in %q", href, dir)
				}
			}
		})
	}
}

// tableLinks returns the href of every anchor inside a table cell.
func tableLinks(n *html.Node) []string {
	var hrefs []string
	var walk func(*html.Node, bool)
	walk = func(n *html.Node, inCell bool) {
		if n.Type == html.ElementNode {
			if n.Data == "td" {
				inCell = true
			}
			if n.Data == "a" && inCell {
				for _, a := range n.Attr {
					if a.Key == "href" {
						hrefs = append(hrefs, a.Val)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inCell)
		}
	}
	walk(n, false)
	return hrefs
}

func TestBuild_CreatesMissingFragments(t *testing.T) {
	f := newFixture(t)
	_, err := New(f.options()).Build(context.Background())
	require.NoError(t, err)

	helpers.NewFileAssertions(t, f.src).
		AssertFileEquals("docs/index.p.html", "").
		AssertFileEquals("docs/deep/index.p.html", "").
		AssertFileEquals("index.p.html", "<h1>Home</h1>")
}

func TestBuild_ReadonlySourceLeavesSourceUntouched(t *testing.T) {
	f := newFixture(t)
	opts := f.options()
	opts.ReadonlySource = true
	_, err := New(opts).Build(context.Background())
	require.NoError(t, err)

	helpers.NewFileAssertions(t, f.src).
		AssertNotExists("docs/index.p.html").
		AssertNotExists("docs/deep/index.p.html")
	helpers.NewFileAssertions(t, f.out).AssertFileContains("docs/index.html", "<H><M><p>")
}

func TestBuild_OutputExists(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(f.out, 0o750))

	rec := newCountingRecorder()
	opts := f.options()
	opts.Recorder = rec
	_, err := New(opts).Build(context.Background())
	require.Error(t, err)
	require.True(t, berrors.IsCategory(err, berrors.CategoryValidation))
	require.Equal(t, 1, rec.outcomes[metrics.OutcomeFailed])

	entries, err := os.ReadDir(f.out)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestBuild_MissingTemplateWritesNothing(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(filepath.Join(f.tpl, "html", "middle.p.html")))

	_, err := New(f.options()).Build(context.Background())
	require.Error(t, err)
	require.True(t, berrors.IsCategory(err, berrors.CategoryTemplate))
	helpers.NewFileAssertions(t, f.out).AssertNotExists("")
}

func TestBuild_MissingSource(t *testing.T) {
	f := newFixture(t)
	opts := f.options()
	opts.SourceRoot = filepath.Join(t.TempDir(), "absent")

	_, err := New(opts).Build(context.Background())
	require.Error(t, err)
	require.True(t, berrors.IsCategory(err, berrors.CategoryFileSystem))

	opts.ReadonlySource = true
	opts.OutputRoot = filepath.Join(t.TempDir(), "out")
	_, err = New(opts).Build(context.Background())
	require.Error(t, err)
	require.True(t, berrors.IsCategory(err, berrors.CategoryFileSystem))
}

func TestBuild_Deterministic(t *testing.T) {
	f := newFixture(t)

	_, err := New(f.options()).Build(context.Background())
	require.NoError(t, err)
	first := snapshot(t, f.out)

	require.NoError(t, Clean(f.out))
	helpers.NewFileAssertions(t, f.out).AssertNotExists("")

	_, err = New(f.options()).Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, snapshot(t, f.out))
}

func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestBuild_Canceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := newCountingRecorder()
	opts := f.options()
	opts.Recorder = rec
	_, err := New(opts).Build(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, rec.outcomes[metrics.OutcomeCanceled])
	require.Equal(t, 1, rec.observed)
}

func TestBuild_RecorderCounts(t *testing.T) {
	f := newFixture(t)
	rec := newCountingRecorder()
	opts := f.options()
	opts.Recorder = rec
	res, err := New(opts).Build(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, rec.outcomes[metrics.OutcomeSuccess])
	require.Equal(t, 3, rec.entries[metrics.EntryDirectory])
	require.Equal(t, 1, rec.entries[metrics.EntryPage])
	require.Equal(t, 0, rec.entries[metrics.EntryMarkdown])
	require.Equal(t, 4, rec.entries[metrics.EntryCopy])
	require.Equal(t, 2, rec.entries[metrics.EntryStylesheet])
	require.Equal(t, res.Bytes, rec.bytes)
	require.Positive(t, rec.bytes)
}

func TestBuildFolder_SingleFolder(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(f.out, 0o750))

	b := New(f.options())
	require.NoError(t, b.BuildFolder(context.Background(), "docs/deep"))

	helpers.NewFileAssertions(t, f.out).
		AssertFileEquals("docs/deep/x.txt", "xx").
		AssertFileContains("docs/deep/index.html", "<a href='/docs/deep/x.txt' target='_blank'>x.txt</a>").
		AssertNotExists("index.html").
		AssertNotExists("docs/index.html")
	require.Equal(t, 1, b.Result().Directories)
}

func TestBuild_EscapeNames(t *testing.T) {
	f := newFixture(t)
	helpers.WriteTree(t, f.src, map[string]string{"a&b.txt": "x"})
	opts := f.options()
	opts.EscapeNames = true
	_, err := New(opts).Build(context.Background())
	require.NoError(t, err)

	helpers.NewFileAssertions(t, f.out).
		AssertFileContains("index.html", "<a href='/a&amp;b.txt' target='_blank'>a&amp;b.txt</a>").
		AssertFileEquals("a&b.txt", "x")
}

func TestClean_AbsentOutput(t *testing.T) {
	require.NoError(t, Clean(filepath.Join(t.TempDir(), "never-built")))
}

func TestBuild_LogsCarryBuildID(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	opts := f.options()
	opts.Logger = slog.New(observability.NewContextHandler(
		slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	res, err := New(opts).Build(context.Background())
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, `msg="Start building" build_id=`+res.BuildID)
	require.Contains(t, out, "folder=/docs/deep")
	require.Contains(t, out, "entry=about.p.html kind=page")
	require.Contains(t, out, "entry=x.txt kind=copy")
	require.Contains(t, out, `msg="Site build finished"`)
}

func TestBuild_GitHistoryInListing(t *testing.T) {
	_, w, repoRoot := helpers.SetupTestGitRepo(t)
	first := time.Date(2023, 6, 1, 8, 30, 0, 0, time.UTC)
	second := time.Date(2024, 2, 29, 17, 5, 0, 0, time.UTC)
	helpers.CommitFile(t, w, repoRoot, "site/docs/a.txt", "a", first)
	helpers.CommitFile(t, w, repoRoot, "site/b.txt", "b", second)

	f := newFixture(t)
	src := filepath.Join(repoRoot, "site")
	opts := f.options()
	opts.SourceRoot = src
	opts.History = history.New(config.HistoryGit, src)
	opts.ReadonlySource = true

	_, err := New(opts).Build(context.Background())
	require.NoError(t, err)

	helpers.NewFileAssertions(t, f.out).
		AssertFileContains("index.html", "<a href='/b.txt' target='_blank'>b.txt</a></td><td>2024-02-29 17:05</td>").
		AssertFileContains("index.html", "<a href='/docs'>docs</a></td><td>2023-06-01 08:30</td>")
}
