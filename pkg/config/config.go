package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT"`
		Host    string `env:"POSTGRES_HOST"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Telegram struct {
		Admin int64  `env:"TELEGRAM_ADMIN"`
		Token string `env:"TELEGRAM_TOKEN"`
	}
	Gemini struct {
		APIKey         string        `env:"GEMINI_API_KEY"`
		ChatModel      string        `env:"GEMINI_CHAT_MODEL" env-default:"gemini-2.0-flash"`
		EmbedModel     string        `env:"GEMINI_EMBED_MODEL" env-default:"gemini-embedding-001"`
		EmbedDimension int           `env:"GEMINI_EMBED_DIMENSION" env-default:"768"`
		Timeout        time.Duration `env:"GEMINI_TIMEOUT" env-default:"30s"`
	}
	Scheduler struct {
		Timezone         string        `env:"SCHEDULER_TIMEZONE" env-default:"Europe/Moscow"`
		WindowStartHour  int           `env:"SCHEDULER_WINDOW_START_HOUR" env-default:"6"`
		WindowEndHour    int           `env:"SCHEDULER_WINDOW_END_HOUR" env-default:"23"`
		DailyQuota       int           `env:"SCHEDULER_DAILY_QUOTA" env-default:"6"`
		Jitter           time.Duration `env:"SCHEDULER_JITTER" env-default:"15m"`
		FirstPostWindow  time.Duration `env:"SCHEDULER_FIRST_POST_WINDOW" env-default:"40m"`
		ProductionTick   time.Duration `env:"SCHEDULER_PRODUCTION_TICK" env-default:"4m"`
		ProductionTickTo time.Duration `env:"SCHEDULER_PRODUCTION_TICK_TO" env-default:"6m"`
		PublishTick      time.Duration `env:"SCHEDULER_PUBLISH_TICK" env-default:"2m"`
		ChannelDelay     time.Duration `env:"SCHEDULER_CHANNEL_DELAY" env-default:"10s"`
		ChannelTimeout   time.Duration `env:"SCHEDULER_CHANNEL_TIMEOUT" env-default:"2m"`
		RewriteTimeout   time.Duration `env:"SCHEDULER_REWRITE_TIMEOUT" env-default:"60s"`
		PublishTimeout   time.Duration `env:"SCHEDULER_PUBLISH_TIMEOUT" env-default:"30s"`
		NotifyTimeout    time.Duration `env:"SCHEDULER_NOTIFY_TIMEOUT" env-default:"15s"`
		ApprovalTTL      time.Duration `env:"SCHEDULER_APPROVAL_TTL" env-default:"24h"`
		ApprovalDelay    time.Duration `env:"SCHEDULER_APPROVAL_DELAY" env-default:"10m"`
	}
	Dedup struct {
		AdmissionThreshold float64 `env:"DEDUP_ADMISSION_THRESHOLD" env-default:"0.85"`
		CollapseThreshold  float64 `env:"DEDUP_COLLAPSE_THRESHOLD" env-default:"0.90"`
		CandidateLimit     int     `env:"DEDUP_CANDIDATE_LIMIT" env-default:"8"`
		MinContentLength   int     `env:"DEDUP_MIN_CONTENT_LENGTH" env-default:"80"`
	}
}

// GetDSN returns the postgres connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.Name, c.Postgres.SslMode)
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}
