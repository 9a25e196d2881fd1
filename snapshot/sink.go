package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"whosoever-apparel/logger"
)

var _ FileSink = (*LocalFileSink)(nil)
var _ FileSink = (*DriveFileSink)(nil)

// LocalFileSink writes exports into a directory, like a browser download
type LocalFileSink struct {
	dir string
}

func NewLocalFileSink(dir string) *LocalFileSink {
	return &LocalFileSink{dir: dir}
}

func (s *LocalFileSink) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(s.dir, sanitizeFilename(filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

// DriveFileSink uploads exports to a Google Drive folder
type DriveFileSink struct {
	client   *drive.Service
	folderID string
	log      *logger.Logger
}

// NewDriveFileSink authenticates with a Service Account JSON file
func NewDriveFileSink(ctx context.Context, credentialsPath, folderID string, log *logger.Logger) (*DriveFileSink, error) {
	if folderID == "" {
		return nil, fmt.Errorf("drive folder id is required")
	}
	client, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &DriveFileSink{client: client, folderID: folderID, log: log.With("service", "DriveFileSink")}, nil
}

func (s *DriveFileSink) Save(ctx context.Context, filename string, data []byte) (string, error) {
	file := &drive.File{
		Name:     sanitizeFilename(filename),
		Parents:  []string{s.folderID},
		MimeType: pngMime,
	}
	created, err := s.client.Files.Create(file).
		Media(bytes.NewReader(data)).
		Fields("id, name, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload to drive: %w", err)
	}
	s.log.Info("☁️  Snapshot uploaded to Drive", "fileId", created.Id, "name", created.Name)
	if created.WebViewLink != "" {
		return created.WebViewLink, nil
	}
	return fmt.Sprintf("https://drive.google.com/uc?id=%s", created.Id), nil
}

// sanitizeFilename keeps only the base name and drops characters that are unsafe in paths
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "snapshot.png"
	}
	return name
}
