package sources

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/d3ming/ycx25-voter/storage"
)

// Source ist das Interface, das jede Quelle für den CSV-Export implementieren muss.
type Source interface {
	// Open öffnet den Export zum Lesen. Der Aufrufer schließt den Reader.
	Open(ctx context.Context) (io.ReadCloser, error)

	// Name gibt eine lesbare Bezeichnung der Quelle zurück (z.B. "file:data/export.csv").
	Name() string
}

// FileSource liest den Export aus dem lokalen Dateisystem.
type FileSource struct {
	Path string
}

func (f FileSource) Name() string {
	return "file:" + f.Path
}

func (f FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("opening csv export: %w", err)
	}
	return file, nil
}

// S3Source liest den Export als Objekt aus dem konfigurierten Bucket.
type S3Source struct {
	Bucket *storage.Bucket
	Key    string
}

func (s S3Source) Name() string {
	return fmt.Sprintf("s3://%s/%s", s.Bucket.Name, s.Key)
}

func (s S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	return s.Bucket.Open(ctx, s.Key)
}
