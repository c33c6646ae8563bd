package sitetree

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	berrors "git.home.luguber.info/inful/webbuild/internal/errors"
	"git.home.luguber.info/inful/webbuild/internal/history"
	"git.home.luguber.info/inful/webbuild/internal/logfields"
	"git.home.luguber.info/inful/webbuild/internal/markdown"
	"git.home.luguber.info/inful/webbuild/internal/metrics"
	"git.home.luguber.info/inful/webbuild/internal/observability"
	"git.home.luguber.info/inful/webbuild/internal/templates"
)

// Reserved names in the source and output trees.
const (
	IndexFragment  = "index.p.html"
	IndexDocument  = "index.html"
	PageSuffix     = ".p.html"
	MarkdownSuffix = ".p.md"
	StylingDir     = ".styling"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Options configures a Builder.
type Options struct {
	SourceRoot   string
	OutputRoot   string
	TemplateRoot string

	History  history.Provider   // defaults to history.None
	Recorder metrics.Recorder   // defaults to metrics.NoopRecorder
	Markdown *markdown.Renderer // defaults to markdown.NewRenderer()
	Logger   *slog.Logger       // defaults to slog.Default()

	EscapeNames    bool
	ReadonlySource bool // substitute an empty index fragment instead of creating one
	RenderMarkdown bool // render *.p.md into NAME.html; copied verbatim otherwise
	ResolveLinks   bool // link listing rows to output names instead of source names
}

// Result summarizes one build.
type Result struct {
	BuildID     string
	StartedAt   time.Time
	Duration    time.Duration
	Directories int
	Pages       int
	Markdown    int
	Copies      int
	Stylesheets int
	Bytes       int64
}

// Builder transforms a source tree into an output tree. A Builder is not
// safe for concurrent use.
type Builder struct {
	opts   Options
	tpl    *templates.Set
	result *Result
	log    *slog.Logger
}

// New creates a Builder, filling unset collaborators with no-op defaults.
func New(opts Options) *Builder {
	if opts.History == nil {
		opts.History = history.None{}
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Markdown == nil {
		opts.Markdown = markdown.NewRenderer()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Builder{opts: opts, log: opts.Logger, result: &Result{}}
}

// Result returns the counters accumulated so far.
func (b *Builder) Result() *Result { return b.result }

// Build performs a full build: it refuses to touch an existing output root,
// mirrors the whole source tree and copies stylesheets into .styling.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	b.result = &Result{BuildID: uuid.NewString(), StartedAt: time.Now()}
	ctx = observability.WithBuildID(ctx, b.result.BuildID)
	res, err := b.build(ctx)
	b.result.Duration = time.Since(b.result.StartedAt)
	b.opts.Recorder.ObserveBuildDuration(b.result.Duration)
	b.opts.Recorder.IncBuildOutcome(metrics.OutcomeFor(err))
	return res, err
}

func (b *Builder) build(ctx context.Context) (*Result, error) {
	out := b.opts.OutputRoot
	if _, err := os.Stat(out); err == nil {
		return nil, berrors.OutputExists(out)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, berrors.FilesystemError("stat", out, err)
	}

	tpl, err := templates.Load(b.opts.TemplateRoot)
	if err != nil {
		return nil, err
	}
	b.tpl = tpl
	sheets, err := templates.Stylesheets(b.opts.TemplateRoot)
	if err != nil {
		return nil, err
	}

	b.log.InfoContext(ctx, "Starting site build",
		slog.String("source", b.opts.SourceRoot),
		logfields.Output(out))

	if err := os.MkdirAll(out, dirPerm); err != nil {
		return nil, berrors.FilesystemError("mkdir", out, err)
	}
	if err := b.BuildFolder(ctx, ""); err != nil {
		return nil, err
	}
	if err := b.copyStylesheets(sheets); err != nil {
		return nil, err
	}

	b.log.InfoContext(ctx, "Site build finished",
		slog.Int("directories", b.result.Directories),
		slog.Int("pages", b.result.Pages+b.result.Markdown),
		slog.Int("copies", b.result.Copies),
		logfields.DurationMS(float64(time.Since(b.result.StartedAt).Microseconds())/1000))
	return b.result, nil
}

// BuildFolder mirrors one source folder (and, recursively, its subfolders)
// into the output tree. The output root itself must already exist.
func (b *Builder) BuildFolder(ctx context.Context, folder string) error {
	if b.tpl == nil {
		tpl, err := templates.Load(b.opts.TemplateRoot)
		if err != nil {
			return err
		}
		b.tpl = tpl
	}
	return b.buildFolder(ctx, NormalizeFolder(folder))
}

func (b *Builder) buildFolder(ctx context.Context, folder string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.DebugContext(ctx, "Start building", logfields.Folder(folder))

	srcDir := b.sourcePath(folder)
	outDir := b.outputPath(folder)
	if err := os.MkdirAll(outDir, dirPerm); err != nil {
		return berrors.FilesystemError("mkdir", outDir, err)
	}

	fragment, err := b.indexFragment(srcDir)
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return berrors.FilesystemError("readdir", srcDir, err)
	}

	if err := b.writeIndex(ctx, folder, srcDir, outDir, fragment, entries); err != nil {
		return err
	}
	b.result.Directories++
	b.opts.Recorder.IncEntry(metrics.EntryDirectory)

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := e.Name()
		src := filepath.Join(srcDir, name)
		info, err := os.Stat(src)
		if err != nil {
			return berrors.FilesystemError("stat", src, err)
		}
		var kind metrics.EntryKind
		switch {
		case info.IsDir():
			if err := b.buildFolder(ctx, folder+"/"+name); err != nil {
				return err
			}
			continue
		case name == IndexFragment:
			// consumed by the index document
			continue
		case strings.HasSuffix(name, PageSuffix):
			if err := b.renderPage(src, filepath.Join(outDir, b.OutputName(name))); err != nil {
				return err
			}
			kind = metrics.EntryPage
		case b.opts.RenderMarkdown && strings.HasSuffix(name, MarkdownSuffix):
			if err := b.renderMarkdown(src, filepath.Join(outDir, b.OutputName(name))); err != nil {
				return err
			}
			kind = metrics.EntryMarkdown
		default:
			if err := b.copyFile(src, filepath.Join(outDir, name), info.Mode().Perm()); err != nil {
				return err
			}
			b.result.Copies++
			b.opts.Recorder.IncEntry(metrics.EntryCopy)
			kind = metrics.EntryCopy
		}
		b.log.DebugContext(ctx, "Built entry", logfields.Folder(folder),
			logfields.Entry(name), logfields.Kind(string(kind)))
	}

	b.log.DebugContext(ctx, "Finished building", logfields.Folder(folder))
	return nil
}

// indexFragment returns the folder's own fragment. A missing fragment is
// created empty on disk, or substituted in memory when the source is read-only.
func (b *Builder) indexFragment(srcDir string) ([]byte, error) {
	path := filepath.Join(srcDir, IndexFragment)
	if !b.opts.ReadonlySource {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm) // #nosec G304 -- inside the source root
		switch {
		case err == nil:
			b.log.Debug("Created empty index fragment", logfields.Path(path))
			if err := f.Close(); err != nil {
				return nil, berrors.FilesystemError("create", path, err)
			}
		case errors.Is(err, os.ErrExist):
		default:
			return nil, berrors.FilesystemError("create", path, err)
		}
	}

	content, err := os.ReadFile(path) // #nosec G304 -- inside the source root
	if err != nil {
		if b.opts.ReadonlySource && errors.Is(err, os.ErrNotExist) {
			if _, statErr := os.Stat(srcDir); statErr != nil {
				return nil, berrors.FilesystemError("stat", srcDir, statErr)
			}
			return nil, nil
		}
		return nil, berrors.FilesystemError("read", path, err)
	}
	return content, nil
}

func (b *Builder) writeIndex(ctx context.Context, folder, srcDir, outDir string, fragment []byte, entries []os.DirEntry) error {
	rows := make([]Entry, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if name == IndexFragment {
			continue
		}
		full := filepath.Join(srcDir, name)
		isFile := false
		if info, err := os.Stat(full); err == nil {
			isFile = info.Mode().IsRegular()
		}
		target := name
		if isFile && b.opts.ResolveLinks {
			target = b.OutputName(name)
		}
		rows = append(rows, Entry{
			Name:         name,
			Href:         folder + "/" + target,
			NewContext:   isFile,
			LastModified: b.opts.History.LastModified(ctx, full),
			Size:         SizeString(full),
		})
	}

	var buf bytes.Buffer
	buf.Write(b.tpl.Header)
	buf.Write(fragment)
	buf.Write(b.tpl.Middle)
	buf.WriteString(Breadcrumb(folder, b.opts.EscapeNames))
	buf.WriteString(Listing(folder, rows, b.opts.EscapeNames))
	buf.Write(b.tpl.Footer)

	return b.writeFile(filepath.Join(outDir, IndexDocument), buf.Bytes())
}

// OutputName maps a source file name to the name it has in the output tree.
func (b *Builder) OutputName(name string) string {
	switch {
	case name == IndexFragment:
		return IndexDocument
	case strings.HasSuffix(name, PageSuffix):
		return strings.TrimSuffix(name, PageSuffix) + ".html"
	case b.opts.RenderMarkdown && strings.HasSuffix(name, MarkdownSuffix):
		return strings.TrimSuffix(name, MarkdownSuffix) + ".html"
	default:
		return name
	}
}

// renderPage wraps a page fragment with the shared header and page footer.
func (b *Builder) renderPage(src, dst string) error {
	body, err := os.ReadFile(src) // #nosec G304 -- inside the source root
	if err != nil {
		return berrors.FilesystemError("read", src, err)
	}
	if err := b.writeFile(dst, b.wrap(body)); err != nil {
		return err
	}
	b.result.Pages++
	b.opts.Recorder.IncEntry(metrics.EntryPage)
	return nil
}

// renderMarkdown converts a Markdown fragment and wraps it like a page fragment.
func (b *Builder) renderMarkdown(src, dst string) error {
	body, err := os.ReadFile(src) // #nosec G304 -- inside the source root
	if err != nil {
		return berrors.FilesystemError("read", src, err)
	}
	rendered, err := b.opts.Markdown.Render(body)
	if err != nil {
		return berrors.BuildFailed(src, err)
	}
	if err := b.writeFile(dst, b.wrap(rendered)); err != nil {
		return err
	}
	b.result.Markdown++
	b.opts.Recorder.IncEntry(metrics.EntryMarkdown)
	return nil
}

func (b *Builder) wrap(body []byte) []byte {
	out := make([]byte, 0, len(b.tpl.Header)+len(body)+len(b.tpl.PageFooter))
	out = append(out, b.tpl.Header...)
	out = append(out, body...)
	return append(out, b.tpl.PageFooter...)
}

func (b *Builder) copyStylesheets(names []string) error {
	dir := filepath.Join(b.opts.OutputRoot, StylingDir)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return berrors.FilesystemError("mkdir", dir, err)
	}
	for _, name := range names {
		src := filepath.Join(b.opts.TemplateRoot, templates.StylesheetDir, name)
		if err := b.copyFile(src, filepath.Join(dir, name), filePerm); err != nil {
			return err
		}
		b.result.Stylesheets++
		b.opts.Recorder.IncEntry(metrics.EntryStylesheet)
	}
	return nil
}

func (b *Builder) copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src) // #nosec G304 -- inside the source or template root
	if err != nil {
		return berrors.FilesystemError("open", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) // #nosec G304 -- inside the output root
	if err != nil {
		return berrors.FilesystemError("create", dst, err)
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return berrors.FilesystemError("copy", dst, err)
	}
	b.addBytes(n)
	return nil
}

func (b *Builder) writeFile(dst string, content []byte) error {
	if err := os.WriteFile(dst, content, filePerm); err != nil {
		return berrors.FilesystemError("write", dst, err)
	}
	b.addBytes(int64(len(content)))
	return nil
}

func (b *Builder) addBytes(n int64) {
	b.result.Bytes += n
	b.opts.Recorder.AddBytesWritten(n)
}

func (b *Builder) sourcePath(folder string) string {
	return filepath.Join(b.opts.SourceRoot, filepath.FromSlash(folder))
}

func (b *Builder) outputPath(folder string) string {
	return filepath.Join(b.opts.OutputRoot, filepath.FromSlash(folder))
}
