package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/webbuild/internal/config"
	"git.home.luguber.info/inful/webbuild/internal/history"
	"git.home.luguber.info/inful/webbuild/internal/logfields"
	"git.home.luguber.info/inful/webbuild/internal/metrics"
	"git.home.luguber.info/inful/webbuild/internal/observability"
	"git.home.luguber.info/inful/webbuild/internal/watch"
	"git.home.luguber.info/inful/webbuild/internal/workspace"
)

// PreviewCmd serves the site from a workspace and rebuilds it on changes.
type PreviewCmd struct {
	Port      int           `name:"port" help:"HTTP port (overrides preview.port)."`
	Interval  time.Duration `name:"interval" help:"Periodic rebuild interval, e.g. 5m (overrides preview.interval)."`
	Workspace string        `name:"workspace" help:"Persistent workspace directory (overrides preview.workspace)."`
}

func (p *PreviewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	p.applyOverrides(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return runPreview(ctx, cfg, nil)
}

func (p *PreviewCmd) applyOverrides(cfg *config.Config) {
	if p.Port > 0 {
		cfg.Preview.Port = p.Port
	}
	if p.Interval > 0 {
		cfg.Preview.Interval = p.Interval
	}
	if p.Workspace != "" {
		cfg.Preview.Workspace = p.Workspace
	}
}

// previewServer rebuilds into a workspace and serves its live site.
type previewServer struct {
	ws    *workspace.Manager
	build *siteBuild
	reg   *prom.Registry

	mu      sync.RWMutex
	lastErr error
}

// rebuild stages a fresh build and promotes it only when it succeeded.
func (s *previewServer) rebuild(ctx context.Context) {
	if err := s.ws.Reset(); err != nil {
		s.setErr(err)
		return
	}
	res, err := s.build.run(ctx, s.ws.StagingPath())
	if err == nil {
		err = s.ws.Promote()
	}
	s.setErr(err)
	if err != nil {
		slog.Warn("Rebuild failed; keeping previous site", logfields.Error(err))
		return
	}
	slog.InfoContext(ctx, "Site rebuilt", logfields.BuildID(res.BuildID), slog.Int("directories", res.Directories))
}

func (s *previewServer) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

func (s *previewServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(s.reg))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.RLock()
		err := s.lastErr
		s.mu.RUnlock()
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("/", http.FileServer(http.Dir(s.ws.SitePath())))
	return mux
}

// runPreview blocks until ctx is done. When ready is non-nil it receives the
// listener address once the first build has finished and the server is up.
func runPreview(ctx context.Context, cfg *config.Config, ready chan<- string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ws := workspace.NewManager("")
	if cfg.Preview.Workspace != "" {
		ws = workspace.NewPersistentManager(cfg.Preview.Workspace)
	}
	if err := ws.Create(); err != nil {
		return err
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("Failed to cleanup workspace", logfields.Error(err))
		}
	}()

	reg := prom.NewRegistry()
	rep := openReporter(cfg)
	defer rep.Close()

	srv := &previewServer{
		ws:  ws,
		reg: reg,
		build: &siteBuild{
			cfg:      cfg,
			history:  history.New(cfg.Build.History, cfg.Paths.Source),
			recorder: metrics.NewPrometheusRecorder(reg),
			reporter: rep,
			readonly: true,
		},
	}
	srv.rebuild(observability.WithTrigger(ctx, "startup"))

	watcher, err := watch.NewWatcher(cfg.Paths.Source, cfg.Paths.Template)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	deb := watch.NewDebouncer(watch.DefaultDelay)
	defer deb.Stop()
	go func() { _ = watcher.Run(ctx, deb.Trigger) }()

	if cfg.Preview.Interval > 0 {
		sched, err := watch.NewScheduler()
		if err != nil {
			return err
		}
		if _, err := sched.ScheduleEvery("periodic-rebuild", cfg.Preview.Interval, deb.Fire); err != nil {
			return err
		}
		sched.Start()
		defer func() { _ = sched.Stop(context.Background()) }()
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(cfg.Preview.Port)))
	if err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	httpServer := &http.Server{Handler: srv.handler(), ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- httpServer.Serve(ln) }()
	slog.Info("Preview server listening", "addr", ln.Addr().String(), "workspace", ws.Path())
	if ready != nil {
		ready <- ln.Addr().String()
	}

	served := make(chan struct{})
	go func() {
		changed := observability.WithTrigger(ctx, "change")
		watch.Serve(ctx, deb.C, func() { srv.rebuild(changed) })
		close(served)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			cancel()
			<-served
			return fmt.Errorf("http server: %w", err)
		}
	}

	slog.Info("Shutting down preview server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	cancel()
	<-served
	return nil
}
