package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		// FrontendURL es el fallback para redirects cuando el request no trae
		// X-Forwarded-Host / Origin / Referer.
		FrontendURL string `yaml:"frontend_url"`
	} `yaml:"server"`

	Storage struct {
		// pg | memory
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Session struct {
		// Secret firma los tokens de sesión (HS256). Requerido para servir.
		Secret     string `yaml:"secret"`
		CookieName string `yaml:"cookie_name"`
		TTL        string `yaml:"ttl"`
		// ApexDomain es el dominio de producción: requests cuyo host termina en
		// él reciben cookie con Domain=.{apex} para compartir entre subdominios.
		ApexDomain string `yaml:"apex_domain"`
		// TunnelSuffixes: hosts de túneles/previews donde NUNCA se setea Domain.
		TunnelSuffixes []string `yaml:"tunnel_suffixes"`
	} `yaml:"session"`

	// ───────── Identity Providers ─────────
	Providers struct {
		// CallbackDedupeTTL es la ventana para ignorar callbacks duplicados
		// (requestId repetido) del flujo Truecaller.
		CallbackDedupeTTL time.Duration `yaml:"callback_dedupe_ttl"`

		Truecaller struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"truecaller"`

		PhoneEmail struct {
			Enabled bool `yaml:"enabled"`
			// AllowedHosts limita los user_json_url aceptados (guardia SSRF).
			AllowedHosts []string `yaml:"allowed_hosts"`
		} `yaml:"phone_email"`

		LinkedIn struct {
			Enabled      bool   `yaml:"enabled"`
			ClientID     string `yaml:"client_id"`
			ClientSecret string `yaml:"client_secret"`
			RedirectURL  string `yaml:"redirect_url"`
			// TokenURL/UserinfoURL tienen defaults de producción; overrideables
			// para tests.
			TokenURL    string `yaml:"token_url"`
			UserinfoURL string `yaml:"userinfo_url"`
		} `yaml:"linkedin"`

		// HTTPTimeout aplica a todos los fetch salientes a providers.
		HTTPTimeout time.Duration `yaml:"http_timeout"`
	} `yaml:"providers"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()
	c.applyEnvOverrides()

	// validate string durations
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return nil, err
		}
	}
	if _, err := time.ParseDuration(c.Session.TTL); err != nil {
		return nil, err
	}
	if _, err := time.ParseDuration(c.Cache.Memory.DefaultTTL); err != nil {
		return nil, err
	}

	return &c, nil
}

// applyDefaults deja la config utilizable en dev sin YAML completo.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.FrontendURL == "" {
		c.Server.FrontendURL = "http://localhost:3000"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "pg"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "auth-token"
	}
	if c.Session.TTL == "" {
		c.Session.TTL = "168h" // 7d
	}
	if c.Session.ApexDomain == "" {
		c.Session.ApexDomain = "flattr.io"
	}
	if len(c.Session.TunnelSuffixes) == 0 {
		c.Session.TunnelSuffixes = []string{
			"ngrok-free.app",
			"ngrok.io",
			".free.pinggy.link",
			"vercel.app",
			"trycloudflare.com",
		}
	}
	if c.Providers.CallbackDedupeTTL == 0 {
		c.Providers.CallbackDedupeTTL = 60 * time.Second
	}
	if len(c.Providers.PhoneEmail.AllowedHosts) == 0 {
		c.Providers.PhoneEmail.AllowedHosts = []string{"user.phone.email"}
	}
	if c.Providers.LinkedIn.TokenURL == "" {
		c.Providers.LinkedIn.TokenURL = "https://www.linkedin.com/oauth/v2/accessToken"
	}
	if c.Providers.LinkedIn.UserinfoURL == "" {
		c.Providers.LinkedIn.UserinfoURL = "https://api.linkedin.com/v2/userinfo"
	}
	if c.Providers.HTTPTimeout == 0 {
		c.Providers.HTTPTimeout = 10 * time.Second
	}
}

// SessionTTL retorna el TTL de sesión ya parseado.
func (c *Config) SessionTTL() time.Duration {
	d, _ := time.ParseDuration(c.Session.TTL)
	return d
}

// ValidateForServe valida lo que es fatal al arrancar el servidor.
// Config faltante es un error de startup, nunca un error por-request.
func (c *Config) ValidateForServe() error {
	var errs []error
	if strings.TrimSpace(c.Session.Secret) == "" {
		errs = append(errs, errors.New("session.secret requerido (env SESSION_SECRET)"))
	}
	if c.Providers.LinkedIn.Enabled {
		if c.Providers.LinkedIn.ClientID == "" || c.Providers.LinkedIn.ClientSecret == "" {
			errs = append(errs, errors.New("linkedin habilitado pero faltan client_id/client_secret"))
		}
		if c.Providers.LinkedIn.RedirectURL == "" {
			errs = append(errs, errors.New("linkedin habilitado pero falta redirect_url"))
		}
	}
	if c.Storage.Driver == "pg" && strings.TrimSpace(c.Storage.DSN) == "" {
		errs = append(errs, errors.New("storage.dsn requerido para driver pg"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config inválida: %w", errors.Join(errs...))
	}
	return nil
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		if strings.TrimSpace(s) == "" {
			return []string{}, true
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvStr("FRONTEND_URL"); ok {
		c.Server.FrontendURL = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_CONNS"); ok {
		c.Storage.Postgres.MaxConns = v
	}
	if v, ok := getEnvStr("POSTGRES_CONN_MAX_LIFETIME"); ok {
		c.Storage.Postgres.ConnMaxLifetime = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}

	// SESSION
	if v, ok := getEnvStr("SESSION_SECRET"); ok {
		c.Session.Secret = v
	}
	if v, ok := getEnvStr("SESSION_COOKIE_NAME"); ok {
		c.Session.CookieName = v
	}
	if v, ok := getEnvStr("SESSION_TTL"); ok {
		c.Session.TTL = v
	}
	if v, ok := getEnvStr("SESSION_APEX_DOMAIN"); ok {
		c.Session.ApexDomain = v
	}
	if v, ok := getEnvCSV("SESSION_TUNNEL_SUFFIXES"); ok {
		c.Session.TunnelSuffixes = v
	}

	// PROVIDERS
	if d, ok := getEnvDur("CALLBACK_DEDUPE_TTL"); ok {
		c.Providers.CallbackDedupeTTL = d
	}
	if d, ok := getEnvDur("PROVIDER_HTTP_TIMEOUT"); ok {
		c.Providers.HTTPTimeout = d
	}
	if v, ok := getEnvBool("TRUECALLER_ENABLED"); ok {
		c.Providers.Truecaller.Enabled = v
	}
	if v, ok := getEnvBool("PHONE_EMAIL_ENABLED"); ok {
		c.Providers.PhoneEmail.Enabled = v
	}
	if v, ok := getEnvCSV("PHONE_EMAIL_ALLOWED_HOSTS"); ok && len(v) > 0 {
		c.Providers.PhoneEmail.AllowedHosts = v
	}
	if v, ok := getEnvBool("LINKEDIN_ENABLED"); ok {
		c.Providers.LinkedIn.Enabled = v
	}
	if v, ok := getEnvStr("LINKEDIN_CLIENT_ID"); ok {
		c.Providers.LinkedIn.ClientID = v
	}
	if v, ok := getEnvStr("LINKEDIN_CLIENT_SECRET"); ok {
		c.Providers.LinkedIn.ClientSecret = v
	}
	if v, ok := getEnvStr("LINKEDIN_REDIRECT_URL"); ok {
		c.Providers.LinkedIn.RedirectURL = v
	}
	if v, ok := getEnvStr("LINKEDIN_TOKEN_URL"); ok {
		c.Providers.LinkedIn.TokenURL = v
	}
	if v, ok := getEnvStr("LINKEDIN_USERINFO_URL"); ok {
		c.Providers.LinkedIn.UserinfoURL = v
	}

	// FLAGS
	if v, ok := getEnvBool("FLAGS_MIGRATE"); ok {
		c.Flags.Migrate = v
	}
}
