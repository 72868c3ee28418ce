// Package drive imports bank statements stored in a Google Drive folder.
package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Source lists and downloads statement files.
type Source interface {
	ListFiles(ctx context.Context, folderID string) ([]*File, error)
	DownloadFile(ctx context.Context, fileID string, w io.Writer) error
	FindFolderByPath(ctx context.Context, path string) (string, error)
}

type Service struct {
	srv *drive.Service
}

// NewService authenticates with a service account key.
func NewService(ctx context.Context, credentialsJSON string) (*Service, error) {
	if strings.TrimSpace(credentialsJSON) == "" {
		return nil, fmt.Errorf("drive credentials are not configured")
	}

	jwt, err := google.JWTConfigFromJSON([]byte(credentialsJSON), drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse drive credentials: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}

	return &Service{srv: srv}, nil
}

type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mime_type"`
	ModifiedTime string `json:"modified_time,omitempty"`
	Size         int64  `json:"size,omitempty"`
}

func (s *Service) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	if folderID == "" {
		folderID = "root"
	}

	var files []*File
	call := s.srv.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(folderID))).
		Fields("nextPageToken, files(id, name, mimeType, modifiedTime, size)").
		Context(ctx)

	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			files = append(files, &File{
				ID:           f.Id,
				Name:         f.Name,
				MimeType:     f.MimeType,
				ModifiedTime: f.ModifiedTime,
				Size:         f.Size,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list drive folder %s: %w", folderID, err)
	}

	return files, nil
}

func (s *Service) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	resp, err := s.srv.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return fmt.Errorf("download drive file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	_, err = io.Copy(w, resp.Body)
	return err
}

// FindFolderByPath resolves a slash separated folder path from the drive root.
func (s *Service) FindFolderByPath(ctx context.Context, path string) (string, error) {
	currentID := "root"

	for _, folder := range strings.Split(path, "/") {
		if folder == "" {
			continue
		}

		result, err := s.srv.Files.List().
			Q(fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false",
				escapeQuery(currentID), escapeQuery(folder), folderMimeType)).
			Fields("files(id, name)").
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("find folder %s: %w", folder, err)
		}
		if len(result.Files) == 0 {
			return "", fmt.Errorf("folder %q: %w", folder, ErrFolderNotFound)
		}

		currentID = result.Files[0].Id
	}

	return currentID, nil
}

func escapeQuery(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `'`, `\'`)
}
