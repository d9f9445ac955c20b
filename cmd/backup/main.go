package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/d3ming/ycx25-voter/config"
	"github.com/d3ming/ycx25-voter/storage"
)

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	logging.Info("Starte Backup-Prozess...")

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Fehler beim Laden der Konfiguration", zap.Error(err))
	}
	if !cfg.S3Enabled() {
		logging.Fatal("S3_BUCKET, S3_KEY und S3_SECRET müssen für Backups gesetzt sein")
	}

	ctx := context.Background()

	// 1. Datenbank-Dump erstellen
	dumpData, ext, err := createDump(cfg)
	if err != nil {
		logging.Fatal("Fehler beim Erstellen des DB-Dumps", zap.Error(err))
	}

	// 2. S3-Client erstellen
	s3Client, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		logging.Fatal("Fehler beim Erstellen des S3-Clients", zap.Error(err))
	}
	bucket := storage.NewBucket(s3Client, cfg)

	// 3. Backup nach S3 hochladen
	key := backupKey(cfg.BackupPrefix, ext, time.Now())
	link, err := bucket.Upload(ctx, key, "application/gzip", dumpData)
	if err != nil {
		logging.Fatal("Fehler beim Hochladen nach S3", zap.Error(err))
	}
	logging.Info("Backup erfolgreich hochgeladen", zap.String("link", link), zap.Int("bytes", len(dumpData)))

	// 4. Alte Backups rotieren
	deleted, err := bucket.Rotate(ctx, cfg.BackupPrefix, cfg.KeepBackups)
	if err != nil {
		logging.Fatal("Fehler bei der Rotation alter Backups", zap.Error(err))
	}
	if len(deleted) == 0 {
		logging.Info("Keine Rotation nötig.", zap.Int("keep", cfg.KeepBackups))
	} else {
		logging.Info("Alte Backups gelöscht", zap.Strings("keys", deleted))
	}

	logging.Info("Backup-Prozess erfolgreich abgeschlossen.")
}

func backupKey(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%sbackup-%s.%s.gz", prefix, now.UTC().Format("2006-01-02T15-04-05Z"), ext)
}

// createDump liefert den gzip-komprimierten Dump und die Dateiendung vor ".gz".
func createDump(cfg *config.Config) ([]byte, string, error) {
	switch cfg.DBDriver {
	case "postgres":
		data, err := pgDump(cfg)
		return data, "sql", err
	case "sqlite":
		f, err := os.Open(cfg.SQLitePath)
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		data, err := gzipStream(f)
		return data, "db", err
	default:
		return nil, "", fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

func pgDump(cfg *config.Config) ([]byte, error) {
	cmd := exec.Command("pg_dump",
		"-h", cfg.DBHost,
		"-p", fmt.Sprint(cfg.DBPort),
		"-U", cfg.DBUser,
		"-d", cfg.DBName,
		"-w", // Passwort wird über PGPASSWORD bereitgestellt
	)
	cmd.Env = append(os.Environ(), fmt.Sprintf("PGPASSWORD=%s", cfg.DBPassword))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	data, err := gzipStream(stdout)
	if err != nil {
		return nil, err
	}
	if err := cmd.Wait(); err != nil {
		return nil, errors.Join(err, errors.New(stderr.String()))
	}
	return data, nil
}

func gzipStream(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if _, err := io.Copy(gzipWriter, r); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
