package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/flattr-io/auth-svc/internal/cache"
	"github.com/flattr-io/auth-svc/internal/config"
	"github.com/flattr-io/auth-svc/internal/domain/repository"
	authctrl "github.com/flattr-io/auth-svc/internal/http/controllers/auth"
	healthctrl "github.com/flattr-io/auth-svc/internal/http/controllers/health"
	"github.com/flattr-io/auth-svc/internal/http/helpers"
	"github.com/flattr-io/auth-svc/internal/http/router"
	services "github.com/flattr-io/auth-svc/internal/http/services/auth"
	"github.com/flattr-io/auth-svc/internal/idempotency"
	"github.com/flattr-io/auth-svc/internal/identity"
	"github.com/flattr-io/auth-svc/internal/metrics"
	"github.com/flattr-io/auth-svc/internal/observability/logger"
	"github.com/flattr-io/auth-svc/internal/providers/linkedin"
	"github.com/flattr-io/auth-svc/internal/providers/phoneemail"
	"github.com/flattr-io/auth-svc/internal/providers/truecaller"
	"github.com/flattr-io/auth-svc/internal/store/memory"
	"github.com/flattr-io/auth-svc/internal/store/pg"
	"github.com/flattr-io/auth-svc/internal/token"
)

func main() {
	// .env es opcional: en prod las variables vienen del entorno.
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:           "auth-svc",
		Short:         "Servicio de login multi-provider (Truecaller, Phone.email, LinkedIn)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "Path al YAML de configuración")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	var migrationsDir string
	migrateCmd := &cobra.Command{
		Use:   "migrate [up|down]",
		Short: "Aplica las migraciones de Postgres",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = strings.ToLower(args[0])
			}
			return runMigrate(cmd.Context(), configPath, migrationsDir, action)
		},
	}
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "migrations/postgres", "Directorio con *_up.sql y *_down.sql")

	root.AddCommand(serveCmd, migrateCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       "info",
		ServiceName: "auth-svc",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.Named("main")

	// ───────── Storage ─────────
	profiles, err := buildStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer profiles.Close()

	if cfg.Flags.Migrate && cfg.Storage.Driver == "pg" {
		if err := runMigrate(ctx, configPath, "migrations/postgres", "up"); err != nil {
			return fmt.Errorf("migrate al arrancar: %w", err)
		}
	}

	// ───────── Cache + guard de idempotencia ─────────
	memTTL, _ := time.ParseDuration(cfg.Cache.Memory.DefaultTTL)
	cacheClient, err := cache.New(cache.Config{
		Kind:       cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: memTTL,
	})
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cacheClient.Close()

	guard := idempotency.New(cacheClient, cfg.Providers.CallbackDedupeTTL)

	// ───────── Sesión ─────────
	codec := token.NewCodec(cfg.Session.Secret, cfg.SessionTTL())
	cookies := helpers.CookiePolicy{
		Name:           cfg.Session.CookieName,
		TTL:            cfg.SessionTTL(),
		ApexDomain:     cfg.Session.ApexDomain,
		TunnelSuffixes: cfg.Session.TunnelSuffixes,
	}

	// ───────── Providers + services ─────────
	tc := truecaller.New(cfg.Providers.HTTPTimeout)
	pe := phoneemail.New(cfg.Providers.HTTPTimeout, cfg.Providers.PhoneEmail.AllowedHosts)
	li := linkedin.New(linkedin.Config{
		ClientID:     cfg.Providers.LinkedIn.ClientID,
		ClientSecret: cfg.Providers.LinkedIn.ClientSecret,
		RedirectURL:  cfg.Providers.LinkedIn.RedirectURL,
		TokenURL:     cfg.Providers.LinkedIn.TokenURL,
		UserinfoURL:  cfg.Providers.LinkedIn.UserinfoURL,
	}, cfg.Providers.HTTPTimeout)

	reconciler := identity.NewReconciler(profiles)
	loginSvc := services.NewLoginService(tc, pe, li, reconciler, codec, guard)
	profileSvc := services.NewProfileService(profiles)

	// ───────── HTTP ─────────
	metricsHandler, err := metrics.Register(nil)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	handler := router.New(router.Deps{
		Truecaller:     authctrl.NewTruecallerController(loginSvc, cookies, cfg.Server.FrontendURL),
		PhoneEmail:     authctrl.NewPhoneEmailController(loginSvc.PhoneEmail(), cookies),
		LinkedIn:       authctrl.NewLinkedInController(loginSvc.LinkedIn(), cookies),
		Profile:        authctrl.NewProfileController(profileSvc),
		Logout:         authctrl.NewLogoutController(cookies),
		Health:         healthctrl.New(profiles, cacheClient),
		TruecallerEnabled: cfg.Providers.Truecaller.Enabled,
		PhoneEmailEnabled: cfg.Providers.PhoneEmail.Enabled,
		LinkedInEnabled:   cfg.Providers.LinkedIn.Enabled,

		Codec:          codec,
		CookieName:     cfg.Session.CookieName,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		MetricsHandler: metricsHandler,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("servidor escuchando",
			logger.String("addr", cfg.Server.Addr),
			logger.String("storage", cfg.Storage.Driver),
			logger.String("cache", cfg.Cache.Kind),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("apagando servidor")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func buildStore(ctx context.Context, cfg *config.Config) (repository.ProfileRepository, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memory.New(), nil
	case "pg", "":
		var lifetime time.Duration
		if cfg.Storage.Postgres.ConnMaxLifetime != "" {
			lifetime, _ = time.ParseDuration(cfg.Storage.Postgres.ConnMaxLifetime)
		}
		return pg.New(ctx, pg.Config{
			DSN:             cfg.Storage.DSN,
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			ConnMaxLifetime: lifetime,
		})
	default:
		return nil, fmt.Errorf("storage driver desconocido: %q", cfg.Storage.Driver)
	}
}

// runMigrate aplica los *_up.sql (o *_down.sql en orden inverso) del
// directorio de migraciones contra el DSN configurado.
func runMigrate(ctx context.Context, configPath, dir, action string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		return errors.New("storage.dsn requerido para migrar")
	}

	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		return fmt.Errorf("pgxpool: %w", err)
	}
	defer pool.Close()

	var suffix string
	switch action {
	case "up":
		suffix = "_up.sql"
	case "down":
		suffix = "_down.sql"
	default:
		return fmt.Errorf("acción desconocida %q (up|down)", action)
	}

	files, err := listSQL(dir, suffix)
	if err != nil {
		return err
	}
	if action == "down" {
		reverseInPlace(files)
	}
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		fmt.Println("OK", filepath.Base(f))
	}
	return nil
}

func reverseInPlace(ss []string) {
	for i, j := 0, len(ss)-1; i < j; i, j = i+1, j-1 {
		ss[i], ss[j] = ss[j], ss[i]
	}
}

func listSQL(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}
