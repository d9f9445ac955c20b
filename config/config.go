package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	// DBDriver ist "postgres" (Produktion) oder "sqlite" (lokal).
	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"data/companies.db"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"5000"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Quelle für den einmaligen Import. CSVS3Key hat Vorrang, wenn S3 konfiguriert ist.
	CSVPath       string `envconfig:"CSV_PATH" default:"attached_assets/yc_companies.csv"`
	CSVS3Key      string `envconfig:"CSV_S3_KEY"`
	OverridesFile string `envconfig:"OVERRIDES_FILE"`

	S3URL    string `envconfig:"S3_URL"`
	S3Region string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Key    string `envconfig:"S3_KEY"`
	S3Secret string `envconfig:"S3_SECRET"`
	S3Bucket string `envconfig:"S3_BUCKET"`

	// Snapshots der sortierten Liste; leerer Cron-Ausdruck deaktiviert den Job.
	SnapshotPrefix string `envconfig:"SNAPSHOT_PREFIX" default:"snapshots/"`
	SnapshotKeep   int    `envconfig:"SNAPSHOT_KEEP" default:"10"`
	SnapshotCron   string `envconfig:"SNAPSHOT_CRON"`

	BackupPrefix string `envconfig:"BACKUP_PREFIX" default:"backups/"`
	KeepBackups  int    `envconfig:"KEEP_BACKUPS" default:"4"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// S3Enabled meldet, ob ein Bucket samt Zugangsdaten gesetzt ist.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Key != "" && c.S3Secret != ""
}

// Validate prüft Kombinationen, die envconfig allein nicht abbilden kann.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
			return fmt.Errorf("DB_HOST, DB_USER and DB_NAME are required for driver %q", c.DBDriver)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for driver %q", c.DBDriver)
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.SnapshotKeep < 1 || c.KeepBackups < 1 {
		return fmt.Errorf("SNAPSHOT_KEEP and KEEP_BACKUPS must be at least 1")
	}
	return c.validatePrefixes()
}

// validatePrefixes stellt sicher, dass sich die Rotationsbereiche im Bucket nicht überschneiden.
func (c *Config) validatePrefixes() error {
	if c.SnapshotPrefix == "" || c.BackupPrefix == "" {
		return fmt.Errorf("SNAPSHOT_PREFIX and BACKUP_PREFIX must not be empty")
	}
	if strings.HasPrefix(c.SnapshotPrefix, c.BackupPrefix) || strings.HasPrefix(c.BackupPrefix, c.SnapshotPrefix) {
		return fmt.Errorf("SNAPSHOT_PREFIX %q and BACKUP_PREFIX %q overlap", c.SnapshotPrefix, c.BackupPrefix)
	}
	for _, prefix := range []string{c.SnapshotPrefix, c.BackupPrefix} {
		if c.CSVS3Key != "" && strings.HasPrefix(c.CSVS3Key, prefix) {
			return fmt.Errorf("CSV_S3_KEY %q lies under rotated prefix %q", c.CSVS3Key, prefix)
		}
	}
	return nil
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
