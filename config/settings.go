package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings is the complete helpsync configuration
type Settings struct {
	Ada    AdaConfig    `mapstructure:"ada"`
	Source SourceConfig `mapstructure:"source"`
	Sync   SyncConfig   `mapstructure:"sync"`
	Server ServerConfig `mapstructure:"server"`
	Redis  RedisConfig  `mapstructure:"redis"`
	S3     S3Config     `mapstructure:"s3"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
}

// AdaConfig holds knowledge base credentials
type AdaConfig struct {
	InstanceName      string        `mapstructure:"instance_name"`
	APIKey            string        `mapstructure:"api_key"`
	KnowledgeSourceID string        `mapstructure:"knowledge_source_id"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// SourceConfig selects which help-center articles to fetch
type SourceConfig struct {
	URL      string        `mapstructure:"url"`
	UserType string        `mapstructure:"user_type"`
	Locale   string        `mapstructure:"locale"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SyncConfig controls payload construction and pacing
type SyncConfig struct {
	NamePrefix             string        `mapstructure:"name_prefix"`
	IDPrefix               string        `mapstructure:"id_prefix"`
	OverrideLanguage       string        `mapstructure:"override_language"`
	IncludeExternalUpdated bool          `mapstructure:"include_external_updated"`
	MaxPages               int           `mapstructure:"max_pages"`
	PageDelay              time.Duration `mapstructure:"page_delay"`
	ItemDelay              time.Duration `mapstructure:"item_delay"`
	CallLogSize            int           `mapstructure:"call_log_size"`
	AutoUpload             bool          `mapstructure:"auto_upload"`
}

// ServerConfig holds API server settings
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// Cron enables scheduled fetch+compare runs when set
	Cron string `mapstructure:"cron"`
	// API is the base URL the dashboard polls
	API string `mapstructure:"api"`
}

// RedisConfig enables the redis history store when Addr is set
type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	Key        string `mapstructure:"key"`
	MaxEntries int    `mapstructure:"max_entries"`
}

// S3Config enables report archiving when Bucket is set
type S3Config struct {
	Bucket       string `mapstructure:"bucket"`
	Prefix       string `mapstructure:"prefix"`
	Region       string `mapstructure:"region"`
	Profile      string `mapstructure:"profile"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// KafkaConfig enables the trigger consumer and report publisher when Brokers is set
type KafkaConfig struct {
	Brokers      []string `mapstructure:"brokers"`
	RequestTopic string   `mapstructure:"request_topic"`
	ReportTopic  string   `mapstructure:"report_topic"`
	GroupID      string   `mapstructure:"group_id"`
}

// Load reads .env, an optional config file and HELPSYNC_* environment variables
func Load(cfgFile string) (*Settings, error) {
	_ = godotenv.Load()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".helpsync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/helpsync")
	}

	v.SetEnvPrefix("HELPSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Comma separated broker lists arrive as one element from the environment
	if len(s.Kafka.Brokers) == 1 && strings.Contains(s.Kafka.Brokers[0], ",") {
		s.Kafka.Brokers = strings.Split(s.Kafka.Brokers[0], ",")
	}

	return &s, nil
}

// setDefaults registers every key so AutomaticEnv can bind it during Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("ada.instance_name", "")
	v.SetDefault("ada.api_key", "")
	v.SetDefault("ada.knowledge_source_id", "")
	v.SetDefault("ada.base_url", "")
	v.SetDefault("ada.timeout", AdaRequestTimeout)

	v.SetDefault("source.url", "")
	v.SetDefault("source.user_type", DefaultUserType)
	v.SetDefault("source.locale", DefaultLocale)
	v.SetDefault("source.timeout", SourceRequestTimeout)

	v.SetDefault("sync.name_prefix", "")
	v.SetDefault("sync.id_prefix", "")
	v.SetDefault("sync.override_language", "")
	v.SetDefault("sync.include_external_updated", false)
	v.SetDefault("sync.max_pages", MaxPages)
	v.SetDefault("sync.page_delay", PageDelay)
	v.SetDefault("sync.item_delay", ItemDelay)
	v.SetDefault("sync.call_log_size", CallLogSize)
	v.SetDefault("sync.auto_upload", false)

	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.cron", "")
	v.SetDefault("server.api", DefaultAPIURL)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", DefaultHistoryKey)
	v.SetDefault("redis.max_entries", HistorySize)

	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "helpsync")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.profile", "")
	v.SetDefault("s3.use_path_style", false)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.request_topic", DefaultRequestTopic)
	v.SetDefault("kafka.report_topic", DefaultReportTopic)
	v.SetDefault("kafka.group_id", DefaultConsumerGroup)
}

// AdaBaseURL returns the knowledge base API root without a trailing slash
func (a AdaConfig) AdaBaseURL() string {
	if a.BaseURL != "" {
		return strings.TrimRight(a.BaseURL, "/")
	}
	return fmt.Sprintf(AdaBaseURLTemplate, a.InstanceName)
}

// ValidateAda checks the credentials needed by every knowledge base call
func (s *Settings) ValidateAda() error {
	if s.Ada.BaseURL == "" && strings.TrimSpace(s.Ada.InstanceName) == "" {
		return &ConfigurationError{Field: "ada.instance_name"}
	}
	if strings.TrimSpace(s.Ada.APIKey) == "" {
		return &ConfigurationError{Field: "ada.api_key"}
	}
	return nil
}

// ValidateSource checks the settings needed to fetch help-center articles
func (s *Settings) ValidateSource() error {
	if strings.TrimSpace(s.Source.URL) == "" {
		return &ConfigurationError{Field: "source.url"}
	}
	if strings.TrimSpace(s.Source.UserType) == "" {
		return &ConfigurationError{Field: "source.user_type"}
	}
	if strings.TrimSpace(s.Source.Locale) == "" {
		return &ConfigurationError{Field: "source.locale"}
	}
	return nil
}

// ResolveKnowledgeSource returns id, or the configured default, and fails when both are empty
func (s *Settings) ResolveKnowledgeSource(id string) (string, error) {
	if id = strings.TrimSpace(id); id != "" {
		return id, nil
	}
	if id = strings.TrimSpace(s.Ada.KnowledgeSourceID); id != "" {
		return id, nil
	}
	return "", &ConfigurationError{Field: "ada.knowledge_source_id"}
}
