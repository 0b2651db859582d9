package core

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf := &CoreConfig{}

	if err = toml.Unmarshal(raw, conf); err != nil {
		panic(err)
	}

	return *conf
}

func LoadBaseConfigFromENV() CoreConfig {
	var c CoreConfig
	c.FromENV()
	return c
}

type CoreConfig struct {
	Addr          string              `toml:"addr"`
	Log           Log                 `toml:"log"`
	Postgres      PGConfig            `toml:"postgres"`
	ObjectStorage ObjectStorageDriver `toml:"object_storage"`
	Attach        AttachConfig        `toml:"attach"`
	Recycle       RecycleConfig       `toml:"recycle"`
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("FILECAB_SERVICE_ADDRESS")
	c.Log = Log{
		Path:  os.Getenv("FILECAB_LOG_PATH"),
		Level: os.Getenv("FILECAB_LOG_LEVEL"),
	}
	c.Postgres.FromENV()
	c.ObjectStorage.FromENV()
	c.Attach.FromENV()
	c.Recycle.FromENV()
}

type Log struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type PGConfig struct {
	UserName string `toml:"user_name"`
	Password string `toml:"password"`
	Host     string `toml:"host"`
	DBName   string `toml:"db_name"`
	SSLMode  string `toml:"ssl_mode"`
}

func (c *PGConfig) FromENV() {
	c.UserName = os.Getenv("FILECAB_DB_USER_NAME")
	c.Password = os.Getenv("FILECAB_DB_PASSWORD")
	c.Host = os.Getenv("FILECAB_DB_HOST")
	c.DBName = os.Getenv("FILECAB_DB_NAME")
	c.SSLMode = os.Getenv("FILECAB_DB_SSL_MODE")
}

func (c PGConfig) FormatDSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s", c.UserName, c.Password, c.Host, c.DBName, sslMode)
}

type ObjectStorageDriver struct {
	StaticDomain string    `toml:"static_domain"`
	Driver       string    `toml:"driver"`
	S3           *S3Config `toml:"s3"`
}

func (c *ObjectStorageDriver) FromENV() {
	c.StaticDomain = os.Getenv("FILECAB_STATIC_DOMAIN")
	c.Driver = "s3"
	c.S3 = &S3Config{
		Bucket:    os.Getenv("FILECAB_S3_BUCKET"),
		Region:    os.Getenv("FILECAB_S3_REGION"),
		Endpoint:  os.Getenv("FILECAB_S3_ENDPOINT"),
		AccessKey: os.Getenv("FILECAB_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("FILECAB_S3_SECRET_KEY"),
	}
}

type S3Config struct {
	Bucket    string `toml:"bucket"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
}

// AttachConfig carries the static single-instance policy table. Entries are
// "recordType/category", e.g. "users/avatar".
type AttachConfig struct {
	SingleInstance []string `toml:"single_instance"`
	MaxFileSize    int64    `toml:"max_file_size"`
}

func (c *AttachConfig) FromENV() {
	if raw := os.Getenv("FILECAB_SINGLE_INSTANCE"); raw != "" {
		c.SingleInstance = strings.Split(raw, ",")
	}
	if raw := os.Getenv("FILECAB_MAX_FILE_SIZE"); raw != "" {
		c.MaxFileSize, _ = strconv.ParseInt(raw, 10, 64)
	}
}

type RecycleConfig struct {
	// RetentionDays is how long bin entries survive before the sweep purges
	// them. Zero disables expiration.
	RetentionDays int `toml:"retention_days"`
	// SweepSpec is the cron spec of the sweep process.
	SweepSpec string `toml:"sweep_spec"`
}

func (c *RecycleConfig) FromENV() {
	if raw := os.Getenv("FILECAB_RECYCLE_RETENTION_DAYS"); raw != "" {
		c.RetentionDays, _ = strconv.Atoi(raw)
	}
	c.SweepSpec = os.Getenv("FILECAB_RECYCLE_SWEEP_SPEC")
}
