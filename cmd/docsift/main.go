package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/docsift/docsift"
	"github.com/docsift/docsift/backend"
	"github.com/docsift/docsift/internal/logging"
	"github.com/docsift/docsift/internal/metrics"
	"github.com/docsift/docsift/internal/querylog"
	"github.com/docsift/docsift/internal/version"
	"github.com/docsift/docsift/plugin"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Register built-in plugins so discovery picks them up.
	_ "github.com/docsift/docsift/internal/plugins/passivedns"
	_ "github.com/docsift/docsift/internal/plugins/whois"
)

// configurable is implemented by plugins that accept operator preference
// values at startup.
type configurable interface {
	Configure(prefs map[string]string) error
}

func main() {
	// Load and validate config if DOCSIFT_CONFIG is set.
	cfg := &docsift.Config{}
	if cfgPath := os.Getenv("DOCSIFT_CONFIG"); cfgPath != "" {
		loaded, err := docsift.LoadConfig(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if err := docsift.ValidateConfig(*loaded); err != nil {
			log.Fatalf("Invalid config: %v", err)
		}
		cfg = loaded
		log.Printf("Config loaded: backend=%s, plugin configs=%d", cfg.Backend.Kind, len(cfg.Plugins))
	}

	be, err := openBackend(cfg.Backend)
	if err != nil {
		log.Fatalf("Failed to open search backend: %v", err)
	}
	if cfg.Backend.SeedFile != "" {
		if err := seedBackend(be, cfg.Backend.SeedFile); err != nil {
			log.Fatalf("Failed to seed search backend: %v", err)
		}
	}

	// Discover plugins. A malformed plugin aborts boot: running with a
	// half-registered plugin is worse than not starting.
	registry := plugin.NewRegistry()
	plugins, err := registry.Discover(plugin.Builtins()...)
	if err != nil {
		log.Fatalf("Plugin discovery failed: %v", err)
	}
	metrics.PluginsRegistered.Set(float64(len(plugins)))

	if err := docsift.ValidatePluginPrefs(*cfg, registry.Preferences()); err != nil {
		log.Fatalf("Invalid plugin config: %v", err)
	}
	if err := configurePlugins(plugins, cfg.Plugins); err != nil {
		log.Fatalf("Failed to configure plugins: %v", err)
	}
	for _, p := range plugins {
		log.Printf("Plugin registered: %s", p.Name())
	}

	logWriter, err := openQueryLog(cfg.QueryLog)
	if err != nil {
		log.Fatalf("Failed to open query log: %v", err)
	}

	gw := docsift.New(be)
	r := newRouter(gw, registry, logWriter, disabledPlugins(cfg.Plugins), cfg.Server.CORSOrigins)

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Println("Shutting down gracefully…")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("docsift %s listening on %s (backend %s, %d plugin(s))", version.Short(), addr, be.Name(), len(plugins))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stop()
		log.Fatalf("Server error: %v", err) //nolint:gocritic
	}
	log.Println("Server stopped.")
}

// openBackend builds the configured search backend. All supported backends
// are registered so config can pick any of them by kind.
func openBackend(cfg docsift.BackendConfig) (backend.Backend, error) {
	kind := cfg.Kind
	if kind == "" {
		kind = docsift.BackendSQLite
	}

	reg := backend.NewRegistry()
	switch kind {
	case docsift.BackendSQLite:
		b, err := backend.NewSQLite(cfg.DSN, cfg.UniqueField)
		if err != nil {
			return nil, err
		}
		reg.Register(b)
	case docsift.BackendPostgres:
		b, err := backend.NewPostgres(cfg.DSN, cfg.UniqueField)
		if err != nil {
			return nil, err
		}
		reg.Register(b)
	}
	return reg.MustGet(string(kind)), nil
}

// indexer is implemented by backends that accept document writes.
type indexer interface {
	Index(ctx context.Context, docs ...backend.Document) error
}

// seedBackend loads a JSON array of documents from path into the backend.
func seedBackend(be backend.Backend, path string) error {
	ix, ok := be.(indexer)
	if !ok {
		log.Printf("Backend %s does not accept seed documents; skipping %s", be.Name(), path)
		return nil
	}
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return err
	}
	var docs []backend.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return err
	}
	if err := ix.Index(context.Background(), docs...); err != nil {
		return err
	}
	log.Printf("Seeded %d document(s) from %s", len(docs), path)
	return nil
}

func configurePlugins(plugins []plugin.Plugin, configs []docsift.PluginConfig) error {
	byName := make(map[string]docsift.PluginConfig, len(configs))
	for _, pc := range configs {
		byName[pc.Name] = pc
	}
	for _, p := range plugins {
		pc, ok := byName[p.Name()]
		if !ok || !pc.IsEnabled() || len(pc.Prefs) == 0 {
			continue
		}
		c, ok := p.(configurable)
		if !ok {
			continue
		}
		if err := c.Configure(pc.Prefs); err != nil {
			return err
		}
	}
	return nil
}

func disabledPlugins(configs []docsift.PluginConfig) map[string]bool {
	disabled := make(map[string]bool)
	for _, pc := range configs {
		if !pc.IsEnabled() {
			disabled[pc.Name] = true
		}
	}
	return disabled
}

func openQueryLog(cfg docsift.QueryLogConfig) (querylog.Writer, error) {
	switch cfg.Kind {
	case "":
		return querylog.NoopWriter{}, nil
	case "sqlite":
		return querylog.NewSQLiteWriter(cfg.DSN)
	case "postgres":
		return querylog.NewPostgresWriter(cfg.DSN)
	}
	return querylog.NoopWriter{}, nil
}

// newRouter builds the HTTP router.
func newRouter(gw *docsift.Gateway, registry *plugin.Registry, logWriter querylog.Writer, disabled map[string]bool, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware(corsOrigins...))
	r.Use(logging.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/query", queryHandler(gw, logWriter))

	r.Get("/api/v1/settings", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"preferences": registry.Preferences(),
		})
	})

	for _, p := range registry.Plugins() {
		if disabled[p.Name()] {
			log.Printf("Plugin disabled by config: %s", p.Name())
			continue
		}
		r.Mount("/api/v1/"+strings.ToLower(p.Name()), p.Routes())
	}

	return r
}
