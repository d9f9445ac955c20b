package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSQLiteDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/companies.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.HTTPPort)
	assert.Equal(t, "snapshots/", cfg.SnapshotPrefix)
	assert.Equal(t, 10, cfg.SnapshotKeep)
	assert.False(t, cfg.S3Enabled())
}

func TestLoadPostgresRequiresHost(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsEmptyPrefixes(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/companies.db")
	t.Setenv("SNAPSHOT_PREFIX", "")
	t.Setenv("BACKUP_PREFIX", "")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"postgres ok", Config{DBDriver: "postgres", DBHost: "db", DBUser: "u", DBName: "n", SnapshotKeep: 1, KeepBackups: 1, SnapshotPrefix: "snapshots/", BackupPrefix: "backups/"}, false},
		{"sqlite ok", Config{DBDriver: "sqlite", SQLitePath: "x.db", SnapshotKeep: 1, KeepBackups: 1, SnapshotPrefix: "snapshots/", BackupPrefix: "backups/"}, false},
		{"unknown driver", Config{DBDriver: "mysql", SnapshotKeep: 1, KeepBackups: 1, SnapshotPrefix: "snapshots/", BackupPrefix: "backups/"}, true},
		{"keep zero", Config{DBDriver: "sqlite", SQLitePath: "x.db", SnapshotKeep: 0, KeepBackups: 1, SnapshotPrefix: "snapshots/", BackupPrefix: "backups/"}, true},
		{"empty snapshot prefix", Config{DBDriver: "sqlite", SQLitePath: "x.db", SnapshotKeep: 1, KeepBackups: 1, BackupPrefix: "backups/"}, true},
		{"empty backup prefix", Config{DBDriver: "sqlite", SQLitePath: "x.db", SnapshotKeep: 1, KeepBackups: 1, SnapshotPrefix: "snapshots/"}, true},
		{"equal prefixes", Config{DBDriver: "sqlite", SQLitePath: "x.db", SnapshotKeep: 1, KeepBackups: 1, SnapshotPrefix: "dumps/", BackupPrefix: "dumps/"}, true},
		{"nested prefixes", Config{DBDriver: "sqlite", SQLitePath: "x.db", SnapshotKeep: 1, KeepBackups: 1, SnapshotPrefix: "dumps/", BackupPrefix: "dumps/db/"}, true},
		{"csv under snapshot prefix", Config{DBDriver: "sqlite", SQLitePath: "x.db", SnapshotKeep: 1, KeepBackups: 1, SnapshotPrefix: "snapshots/", BackupPrefix: "backups/", CSVS3Key: "snapshots/batch.csv"}, true},
		{"csv elsewhere", Config{DBDriver: "sqlite", SQLitePath: "x.db", SnapshotKeep: 1, KeepBackups: 1, SnapshotPrefix: "snapshots/", BackupPrefix: "backups/", CSVS3Key: "imports/batch.csv"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := Config{DBHost: "db", DBUser: "yc", DBPassword: "pw", DBName: "companies", DBPort: 5433}
	assert.Equal(t, "host=db user=yc password=pw dbname=companies port=5433 sslmode=disable", cfg.DSN())
}

func TestS3Enabled(t *testing.T) {
	cfg := Config{S3Bucket: "b", S3Key: "k", S3Secret: "s"}
	assert.True(t, cfg.S3Enabled())
	cfg.S3Secret = ""
	assert.False(t, cfg.S3Enabled())
}
