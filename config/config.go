package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Elastic  ElasticsearchConfig
	Restock  RestockConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	AppEnv   string
	HTTPPort string
	GRPCPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type DatabaseConfig struct {
	Driver     string // pgx or sqlite3
	SQLitePath string
	Postgres   PostgresConfig
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
	TasksTopic  string
	GroupID     string
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
}

type RestockConfig struct {
	Threshold int
	Increment int
	LockTTL   time.Duration
}

type JobsConfig struct {
	GraphQLURL     string
	HTTPTimeout    time.Duration
	HeartbeatLog   string
	LowStockLog    string
	RemindersLog   string
	ReportLog      string
	HeartbeatSpec  string
	LowStockSpec   string
	RemindersSpec  string
	ReportSpec     string
	ReminderWindow time.Duration
	ReportViaQueue bool
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			HTTPPort: getEnv("HTTP_PORT", ":8000"),
			GRPCPort: getEnv("GRPC_PORT", ":8083"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "pgx"),
			SQLitePath: getEnv("SQLITE_PATH", "crm.db"),
			Postgres: PostgresConfig{
				Host:            getEnv("POSTGRES_HOST", "localhost"),
				Port:            getEnv("POSTGRES_PORT", "5433"),
				User:            getEnv("POSTGRES_USER", "omnipos"),
				Password:        getEnv("POSTGRES_PASSWORD", "omnipos"),
				DBName:          getEnv("POSTGRES_DB", "omnipos_crm"),
				SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
				MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
				MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
				ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
				ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
			},
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:     getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			OrdersTopic: getEnv("KAFKA_TOPIC_ORDERS", "orders.events"),
			TasksTopic:  getEnv("KAFKA_TOPIC_TASKS", "crm.tasks"),
			GroupID:     getEnv("KAFKA_GROUP_WORKER", "crm-worker"),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		Restock: RestockConfig{
			Threshold: getEnvInt("RESTOCK_THRESHOLD", 10),
			Increment: getEnvInt("RESTOCK_INCREMENT", 10),
			LockTTL:   getEnvDuration("RESTOCK_LOCK_TTL", 30*time.Second),
		},
		Jobs: JobsConfig{
			GraphQLURL:     getEnv("JOBS_GRAPHQL_URL", "http://localhost:8000/graphql"),
			HTTPTimeout:    getEnvDuration("JOBS_HTTP_TIMEOUT", 10*time.Second),
			HeartbeatLog:   getEnv("HEARTBEAT_LOG", "/tmp/crm_heartbeat_log.txt"),
			LowStockLog:    getEnv("LOW_STOCK_LOG", "/tmp/low_stock_updates_log.txt"),
			RemindersLog:   getEnv("ORDER_REMINDERS_LOG", "/tmp/order_reminders_log.txt"),
			ReportLog:      getEnv("CRM_REPORT_LOG", "/tmp/crm_report_log.txt"),
			HeartbeatSpec:  getEnv("HEARTBEAT_SCHEDULE", "*/5 * * * *"),
			LowStockSpec:   getEnv("LOW_STOCK_SCHEDULE", "0 */12 * * *"),
			RemindersSpec:  getEnv("ORDER_REMINDERS_SCHEDULE", "0 8 * * *"),
			ReportSpec:     getEnv("CRM_REPORT_SCHEDULE", "0 6 * * 1"),
			ReminderWindow: getEnvDuration("ORDER_REMINDERS_WINDOW", 7*24*time.Hour),
			ReportViaQueue: getEnvBool("CRM_REPORT_VIA_QUEUE", true),
		},
	}
}

// IsDevelopment reports whether verbose console logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.AppEnv == "dev"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvSlice splits a comma-separated value. An empty value yields an empty slice.
func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
