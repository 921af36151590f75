package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/cv-screener/internal/pdftext"
	"github.com/spigell/cv-screener/internal/queue"
)

const (
	app       = "cv-screener"
	envPrefix = "CV_SCREENER"
)

const (
	DriverPostgres  = "postgres"
	DriverPostgREST = "postgrest"
	DriverMemory    = "memory"
)

type Config struct {
	Database   *DatabaseConfig  `mapstructure:"database"`
	Redis      *RedisConfig     `mapstructure:"redis"`
	AI         *AIConfig        `mapstructure:"ai"`
	Extraction pdftext.Config   `mapstructure:"extraction"`
	Queue      queue.Config     `mapstructure:"queue"`
	Server     *ServerConfig    `mapstructure:"server"`
	Scheduler  *SchedulerConfig `mapstructure:"scheduler"`
}

type DatabaseConfig struct {
	Driver    string           `mapstructure:"driver"`
	URL       string           `mapstructure:"url"`
	URLFile   string           `mapstructure:"url-file"`
	Migrate   bool             `mapstructure:"migrate"`
	PostgREST *PostgRESTConfig `mapstructure:"postgrest"`
}

type PostgRESTConfig struct {
	URL        string `mapstructure:"url"`
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type AIConfig struct {
	Language string        `mapstructure:"language"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	PublicURL string `mapstructure:"public-url"`
}

type SchedulerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "cv-screener ingests CVs, extracts their text and scores candidates against job postings",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is cv-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults()
}

// setDefaults registers every key so that environment variables are seen by
// viper.Unmarshal even without a config file.
func setDefaults() {
	viper.SetDefault("database.driver", DriverMemory)
	viper.SetDefault("database.url", "")
	viper.SetDefault("database.url-file", "")
	viper.SetDefault("database.migrate", false)
	viper.SetDefault("database.postgrest.url", "")
	viper.SetDefault("database.postgrest.api-key", "")
	viper.SetDefault("database.postgrest.api-key-file", "")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("ai.language", "Spanish")
	viper.SetDefault("ai.gemini.api-key", "")
	viper.SetDefault("ai.gemini.api-key-file", "")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("extraction.min-native-length", pdftext.DefaultMinNativeLength)
	viper.SetDefault("extraction.render-scale", pdftext.DefaultRenderScale)
	viper.SetDefault("extraction.ocr-language", pdftext.DefaultLanguage)
	viper.SetDefault("queue.concurrency", queue.DefaultConcurrency)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.public-url", "")
	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("scheduler.interval", "15m")
}

func initConfig() {
	// Values from .env never override the real environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The default config file is optional: everything can come from the environment.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		return nil, errors.New("config is empty")
	}
	if config.Database == nil || config.AI == nil || config.Server == nil || config.Scheduler == nil {
		return nil, errors.New("config is incomplete")
	}

	config.Database.Driver = strings.ToLower(strings.TrimSpace(config.Database.Driver))
	switch config.Database.Driver {
	case DriverPostgres, DriverPostgREST, DriverMemory:
	default:
		return nil, errors.New("database.driver must be one of postgres, postgrest or memory")
	}

	return config, nil
}
