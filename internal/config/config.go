package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Log
		Database
		Pool
		GoogleBooks
		Rakuten
		Mirror
		Tasks
		Reconcile
		Recommend
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Log struct {
		Level       string
		Development bool
	}
	Database struct {
		Path string
	}
	// Pool sizes the shared worker pool that runs every service operation.
	Pool struct {
		Workers       int
		QueueSize     int
		DrainTimeout  time.Duration
		StoreTimeout  time.Duration
		MirrorTimeout time.Duration
	}
	GoogleBooks struct {
		APIKey  string
		BaseURL string // Empty means the public endpoint
		RPS     float64
	}
	Rakuten struct {
		ApplicationID string // Empty disables ranking
		BaseURL       string
		RPS           float64
	}
	Mirror struct {
		Enabled    bool
		Region     string
		Endpoint   string // Override for DynamoDB Local
		Table      string
		UsersTable string
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Reconcile struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Recommend struct {
		Candidates int
		Limit      int
	}
)

func NewConfig() *Config {
	return load(viper.New())
}

func load(v *viper.Viper) *Config {
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_development", false)

	// Worker pool defaults
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("queue_size", DefaultQueueSize)
	v.SetDefault("drain_timeout", DefaultDrainTimeout.String())
	v.SetDefault("store_timeout", DefaultStoreTimeout.String())
	v.SetDefault("mirror_timeout", DefaultMirrorTimeout.String())

	// Provider defaults
	v.SetDefault("google_books_api_key", "")
	v.SetDefault("google_books_base_url", "")
	v.SetDefault("google_books_rps", 5)
	v.SetDefault("rakuten_application_id", "")
	v.SetDefault("rakuten_base_url", "")
	v.SetDefault("rakuten_rps", 1)

	// Mirror defaults
	v.SetDefault("mirror_enabled", false)
	v.SetDefault("aws_region", DefaultAWSRegion)
	v.SetDefault("dynamodb_endpoint", "")
	v.SetDefault("mirror_table", DefaultMirrorTable)
	v.SetDefault("users_table", DefaultUsersTable)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	// Reconcile defaults: no automatic retry unless opted in
	v.SetDefault("reconcile_enabled", false)
	v.SetDefault("reconcile_schedule", "0 3 * * *")

	// Recommendation defaults
	v.SetDefault("recommend_candidates", 30)
	v.SetDefault("recommend_limit", 10)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Log: Log{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Pool: Pool{
			Workers:       v.GetInt("WORKERS"),
			QueueSize:     v.GetInt("QUEUE_SIZE"),
			DrainTimeout:  v.GetDuration("DRAIN_TIMEOUT"),
			StoreTimeout:  v.GetDuration("STORE_TIMEOUT"),
			MirrorTimeout: v.GetDuration("MIRROR_TIMEOUT"),
		},
		GoogleBooks: GoogleBooks{
			APIKey:  v.GetString("GOOGLE_BOOKS_API_KEY"),
			BaseURL: v.GetString("GOOGLE_BOOKS_BASE_URL"),
			RPS:     v.GetFloat64("GOOGLE_BOOKS_RPS"),
		},
		Rakuten: Rakuten{
			ApplicationID: v.GetString("RAKUTEN_APPLICATION_ID"),
			BaseURL:       v.GetString("RAKUTEN_BASE_URL"),
			RPS:           v.GetFloat64("RAKUTEN_RPS"),
		},
		Mirror: Mirror{
			Enabled:    v.GetBool("MIRROR_ENABLED"),
			Region:     v.GetString("AWS_REGION"),
			Endpoint:   v.GetString("DYNAMODB_ENDPOINT"),
			Table:      v.GetString("MIRROR_TABLE"),
			UsersTable: v.GetString("USERS_TABLE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Reconcile: Reconcile{
			Enabled:  v.GetBool("RECONCILE_ENABLED"),
			Schedule: v.GetString("RECONCILE_SCHEDULE"),
		},
		Recommend: Recommend{
			Candidates: v.GetInt("RECOMMEND_CANDIDATES"),
			Limit:      v.GetInt("RECOMMEND_LIMIT"),
		},
	}
}
