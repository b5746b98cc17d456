package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file read from the config directory.
const FileName = "medic_nui.cfg.json"

// MemoryConfig holds in-memory journal settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds settings for the in-memory SQLite journal.
type SQLiteConfig struct {
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
}

// RedisConfig holds settings for the redis journal.
type RedisConfig struct {
	Addr     string `json:"addr" mapstructure:"addr"`
	Password string `json:"password" mapstructure:"password"`
	DB       int    `json:"db" mapstructure:"db"`
	Key      string `json:"key" mapstructure:"key"`
	Channel  string `json:"channel" mapstructure:"channel"`
}

// StorageConfig selects and configures the journal backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
	Redis  RedisConfig  `json:"redis" mapstructure:"redis"`
}

// BridgeConfig configures the overlay bridge server.
type BridgeConfig struct {
	Listen         string
	AllowedOrigins []string
	Metrics        bool
}

// MockConfig configures the simulated backend.
type MockConfig struct {
	SuccessRate   float64
	Delay         time.Duration
	PushResponses bool
}

// GatewayConfig selects how host callbacks are delivered.
type GatewayConfig struct {
	Mode     string
	Resource string
	BaseURL  string
	Timeout  time.Duration
	Mock     MockConfig
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// InfluxConfig holds the treatment outcome series settings.
type InfluxConfig struct {
	Enabled bool
	URL     string
	Token   string
	Org     string
	Bucket  string
	Timeout time.Duration
	Backup  string
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetEnvPrefix("MEDIC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./medic_logs")

	viper.SetDefault("bridge.listen", "127.0.0.1:30120")
	viper.SetDefault("bridge.allowedOrigins", []string{"nui://game"})
	viper.SetDefault("bridge.metrics", true)

	viper.SetDefault("gateway.mode", "http")
	viper.SetDefault("gateway.resource", "qc-advancedmedic")
	viper.SetDefault("gateway.baseUrl", "")
	viper.SetDefault("gateway.timeout", "30s")
	viper.SetDefault("gateway.mock.successRate", 0.7)
	viper.SetDefault("gateway.mock.delay", "1500ms")
	viper.SetDefault("gateway.mock.pushResponses", false)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./journal")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.sqlite.dumpPath", "./journal/medic_journal.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "medic")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.key", "medic:journal:entries")
	viper.SetDefault("redis.channel", "medic:journal")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "medic-metrics")
	viper.SetDefault("influx.bucket", "medic_treatments")
	viper.SetDefault("influx.timeout", "2s")
	viper.SetDefault("influx.backup", "./journal/influx_backup.lp.gz")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "medic-nui")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("monitor.interval", "30s")
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetStorageConfig returns the journal storage settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			Key:      viper.GetString("redis.key"),
			Channel:  viper.GetString("redis.channel"),
		},
	}
}

// GetBridgeConfig returns the bridge server settings.
func GetBridgeConfig() BridgeConfig {
	return BridgeConfig{
		Listen:         viper.GetString("bridge.listen"),
		AllowedOrigins: viper.GetStringSlice("bridge.allowedOrigins"),
		Metrics:        viper.GetBool("bridge.metrics"),
	}
}

// GetGatewayConfig returns the host callback settings.
func GetGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Mode:     viper.GetString("gateway.mode"),
		Resource: viper.GetString("gateway.resource"),
		BaseURL:  viper.GetString("gateway.baseUrl"),
		Timeout:  viper.GetDuration("gateway.timeout"),
		Mock: MockConfig{
			SuccessRate:   viper.GetFloat64("gateway.mock.successRate"),
			Delay:         viper.GetDuration("gateway.mock.delay"),
			PushResponses: viper.GetBool("gateway.mock.pushResponses"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the influx settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled: viper.GetBool("influx.enabled"),
		URL: fmt.Sprintf("%s://%s:%s",
			viper.GetString("influx.protocol"),
			viper.GetString("influx.host"),
			viper.GetString("influx.port"),
		),
		Token:   viper.GetString("influx.token"),
		Org:     viper.GetString("influx.org"),
		Bucket:  viper.GetString("influx.bucket"),
		Timeout: viper.GetDuration("influx.timeout"),
		Backup:  viper.GetString("influx.backup"),
	}
}
