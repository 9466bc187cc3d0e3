package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	domainerr "zazasite/internal/domain/errors"
)

type Config struct {
	Site      SiteConfig      `mapstructure:"site"`
	Log       LogConfig       `mapstructure:"log"`
	Build     BuildConfig     `mapstructure:"build"`
	Resources ResourcesConfig `mapstructure:"resources"`
	Trends    TrendsConfig    `mapstructure:"trends"`
	Downloads DownloadsConfig `mapstructure:"downloads"`
	Server    ServerConfig    `mapstructure:"server"`

	// Secrets never come from site.yaml, only from the environment or .env.
	Secrets Secrets `mapstructure:"-"`
}

type SiteConfig struct {
	Title         string `mapstructure:"title"`
	Company       string `mapstructure:"company"`
	SiteURL       string `mapstructure:"site_url"`
	DefaultAuthor string `mapstructure:"default_author"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
	Pretty bool   `mapstructure:"pretty"`
}

type BuildConfig struct {
	ContentDir  string `mapstructure:"content_dir"`
	PublicDir   string `mapstructure:"public_dir"`
	Output      string `mapstructure:"output"`
	IndexPath   string `mapstructure:"index_path"`
	CheckImages bool   `mapstructure:"check_images"`
}

type ResourcesConfig struct {
	SourceDir  string        `mapstructure:"source_dir"`
	OutDir     string        `mapstructure:"out_dir"`
	PublicBase string        `mapstructure:"public_base"`
	Stylesheet string        `mapstructure:"stylesheet"`
	Workers    int           `mapstructure:"workers"`
	ChromePath string        `mapstructure:"chrome_path"`
	PDFTimeout time.Duration `mapstructure:"pdf_timeout"`
	Publish    PublishConfig `mapstructure:"publish"`
}

// PublishConfig points at an S3 compatible bucket (AWS S3 or Cloudflare R2).
type PublishConfig struct {
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

type TrendsConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Feeds        []string      `mapstructure:"feeds"`
	Subreddits   []string      `mapstructure:"subreddits"`
	TwitterQuery string        `mapstructure:"twitter_query"`
	Keywords     int           `mapstructure:"keywords"`
	RedisURL     string        `mapstructure:"redis_url"`
	SeenTTL      time.Duration `mapstructure:"seen_ttl"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
	RunTimeout   time.Duration `mapstructure:"run_timeout"`
}

type DownloadsConfig struct {
	Root string `mapstructure:"root"`
}

type ServerConfig struct {
	Addr  string `mapstructure:"addr"`
	Watch bool   `mapstructure:"watch"`
}

type Secrets struct {
	CronSecret         string
	RedditClientID     string
	RedditClientSecret string
	TwitterBearer      string
	R2AccessKey        string
	R2SecretKey        string
}

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:         "Zaza Promptly",
			Company:       "Zaza Technologies",
			SiteURL:       "https://zazapromptly.com",
			DefaultAuthor: "Zaza Team",
		},
		Log: LogConfig{Level: "info", Output: "stderr"},
		Build: BuildConfig{
			ContentDir: "content/blog",
			PublicDir:  "public",
			Output:     "data/posts.json",
			IndexPath:  ".zaza/index.db",
		},
		Resources: ResourcesConfig{
			SourceDir:  "content/resources",
			OutDir:     "public/resources",
			PublicBase: "/resources",
			Workers:    2,
			PDFTimeout: time.Minute,
		},
		Trends: TrendsConfig{
			Keywords:   10,
			SeenTTL:    7 * 24 * time.Hour,
			LockTTL:    10 * time.Minute,
			RunTimeout: 5 * time.Minute,
		},
		Downloads: DownloadsConfig{Root: "public/brand"},
		Server:    ServerConfig{Addr: ":8080", Watch: true},
	}
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("site.title", d.Site.Title)
	v.SetDefault("site.company", d.Site.Company)
	v.SetDefault("site.site_url", d.Site.SiteURL)
	v.SetDefault("site.default_author", d.Site.DefaultAuthor)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.output", d.Log.Output)
	v.SetDefault("log.pretty", d.Log.Pretty)

	v.SetDefault("build.content_dir", d.Build.ContentDir)
	v.SetDefault("build.public_dir", d.Build.PublicDir)
	v.SetDefault("build.output", d.Build.Output)
	v.SetDefault("build.index_path", d.Build.IndexPath)
	v.SetDefault("build.check_images", d.Build.CheckImages)

	v.SetDefault("resources.source_dir", d.Resources.SourceDir)
	v.SetDefault("resources.out_dir", d.Resources.OutDir)
	v.SetDefault("resources.public_base", d.Resources.PublicBase)
	v.SetDefault("resources.stylesheet", d.Resources.Stylesheet)
	v.SetDefault("resources.workers", d.Resources.Workers)
	v.SetDefault("resources.chrome_path", d.Resources.ChromePath)
	v.SetDefault("resources.pdf_timeout", d.Resources.PDFTimeout)
	v.SetDefault("resources.publish.bucket", d.Resources.Publish.Bucket)
	v.SetDefault("resources.publish.prefix", d.Resources.Publish.Prefix)
	v.SetDefault("resources.publish.region", d.Resources.Publish.Region)
	v.SetDefault("resources.publish.endpoint", d.Resources.Publish.Endpoint)

	v.SetDefault("trends.enabled", d.Trends.Enabled)
	v.SetDefault("trends.feeds", d.Trends.Feeds)
	v.SetDefault("trends.subreddits", d.Trends.Subreddits)
	v.SetDefault("trends.twitter_query", d.Trends.TwitterQuery)
	v.SetDefault("trends.keywords", d.Trends.Keywords)
	v.SetDefault("trends.redis_url", d.Trends.RedisURL)
	v.SetDefault("trends.seen_ttl", d.Trends.SeenTTL)
	v.SetDefault("trends.lock_ttl", d.Trends.LockTTL)
	v.SetDefault("trends.run_timeout", d.Trends.RunTimeout)

	v.SetDefault("downloads.root", d.Downloads.Root)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.watch", d.Server.Watch)
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Title) == "" {
		ve.Add("site.title", "must not be empty")
	}
	if strings.TrimSpace(c.Site.Company) == "" {
		ve.Add("site.company", "must not be empty")
	}
	if strings.TrimSpace(c.Site.SiteURL) != "" && !isValidAbsURL(c.Site.SiteURL) {
		ve.Add("site.site_url", "must be a valid absolute URL")
	}
	if strings.TrimSpace(c.Build.ContentDir) == "" {
		ve.Add("build.content_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.Output) == "" {
		ve.Add("build.output", "must not be empty")
	}
	if strings.TrimSpace(c.Build.IndexPath) == "" {
		ve.Add("build.index_path", "must not be empty")
	}
	if pb := strings.TrimSpace(c.Resources.PublicBase); pb != "" {
		if !strings.HasPrefix(pb, "/") {
			ve.Add("resources.public_base", "must start with '/'")
		}
		if strings.HasSuffix(pb, "/") && pb != "/" {
			ve.Add("resources.public_base", "must not end with '/'")
		}
	}
	if c.Resources.Workers < 0 {
		ve.Add("resources.workers", "must not be negative")
	}
	if c.Trends.Keywords < 0 {
		ve.Add("trends.keywords", "must not be negative")
	}
	for _, f := range c.Trends.Feeds {
		if !isValidAbsURL(f) {
			ve.Add("trends.feeds", fmt.Sprintf("%q is not a valid absolute URL", f))
		}
	}

	if ve.HasAny() {
		return ve
	}
	return nil
}

// RequireCronSecret reports a validation error when trend ingestion is
// enabled without a shared secret for the cron endpoint.
func (c Config) RequireCronSecret() error {
	if c.Trends.Enabled && strings.TrimSpace(c.Secrets.CronSecret) == "" {
		var ve domainerr.ValidationError
		ve.Add("CRON_SECRET", "must be set when trends are enabled")
		return ve
	}
	return nil
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// Load reads site.yaml (or the given path), applies ZAZA_ prefixed
// environment overrides and secrets from the environment / .env file.
// A missing config file is only an error when path was given explicitly.
func Load(path string) (Config, error) {
	return LoadWith(path, nil)
}

// LoadWith is Load with a hook to bind command line flags before the
// values are decoded. Bound flags win over the file and the environment.
func LoadWith(path string, bind func(v *viper.Viper) error) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Default(), fmt.Errorf("config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("site")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("ZAZA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if bind != nil {
		if err := bind(v); err != nil {
			return Default(), fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return Default(), fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Default(), fmt.Errorf("decode config: %w", err)
	}
	cfg.Secrets = secretsFromEnv()
	if os.Getenv("APP_ENV") == "production" {
		cfg.Build.CheckImages = true
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func secretsFromEnv() Secrets {
	return Secrets{
		CronSecret:         os.Getenv("CRON_SECRET"),
		RedditClientID:     os.Getenv("REDDIT_CLIENT_ID"),
		RedditClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
		TwitterBearer:      os.Getenv("TWITTER_BEARER_TOKEN"),
		R2AccessKey:        os.Getenv("R2_ACCESS_KEY"),
		R2SecretKey:        os.Getenv("R2_SECRET_ACCESS_KEY"),
	}
}
