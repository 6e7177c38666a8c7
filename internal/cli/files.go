package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/filevault/internal/common"
	"github.com/dmitrijs2005/filevault/internal/filex"
	"github.com/dmitrijs2005/filevault/internal/models"
	"github.com/dmitrijs2005/filevault/internal/services"
)

// List prints the user's files with decrypted names, oldest first.
func (a *App) List(ctx context.Context) error {
	if !a.isLoggedIn() {
		log.Println("Not logged in")
		return common.ErrorUnauthorized
	}

	var items []models.DecryptedFile
	err := a.withRetry(ctx, func(ctx context.Context) error {
		var err error
		items, err = a.fileService.List(ctx, a.session)
		return err
	})
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	if len(items) == 0 {
		fmt.Println("The vault is empty")
		return nil
	}
	for _, item := range items {
		fmt.Printf("%s  %s  %-30s  %10d  %s\n",
			item.ID, item.CreatedAt.Format("2006-01-02 15:04"), item.Name, item.Size, item.Type)
	}
	return nil
}

// Put reads a local file, encrypts it, and stores it in the vault.
// The media type is guessed from the file extension.
func (a *App) Put(ctx context.Context, path string) error {
	if !a.isLoggedIn() {
		log.Println("Not logged in")
		return common.ErrorUnauthorized
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Error reading file: %s", err.Error())
		return err
	}

	name := filepath.Base(path)
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var id string
	err = a.withRetry(ctx, func(ctx context.Context) error {
		var err error
		id, err = a.fileService.Upload(ctx, a.session, name, contentType, data)
		return err
	})
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Printf("Stored %s as %s\n", name, id)
	return nil
}

// Get downloads a file, decrypts it, and writes it under the downloads
// directory with its original name.
func (a *App) Get(ctx context.Context, id string) error {
	if !a.isLoggedIn() {
		log.Println("Not logged in")
		return common.ErrorUnauthorized
	}

	var res *services.DownloadResult
	err := a.withRetry(ctx, func(ctx context.Context) error {
		var err error
		res, err = a.fileService.Download(ctx, a.session, id)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			log.Printf("No file with id %s", id)
		} else {
			log.Printf("Error: %s", err.Error())
		}
		return err
	}

	target, err := a.saveDownload(res.Name, res.Data)
	if err != nil {
		log.Printf("Error saving file: %s", err.Error())
		return err
	}
	fmt.Printf("Saved to %s\n", target)
	return nil
}

// Thumb downloads a file's preview image and writes it under the
// downloads directory as <id>_thumb.png.
func (a *App) Thumb(ctx context.Context, id string) error {
	if !a.isLoggedIn() {
		log.Println("Not logged in")
		return common.ErrorUnauthorized
	}

	var preview []byte
	err := a.withRetry(ctx, func(ctx context.Context) error {
		var err error
		preview, err = a.fileService.DownloadThumbnail(ctx, a.session, id)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			log.Printf("No preview available for %s", id)
		} else {
			log.Printf("Error: %s", err.Error())
		}
		return err
	}

	target, err := a.saveDownload(id+"_thumb.png", preview)
	if err != nil {
		log.Printf("Error saving file: %s", err.Error())
		return err
	}
	fmt.Printf("Saved to %s\n", target)
	return nil
}

// Remove deletes a file and its ciphertext blobs from the vault.
func (a *App) Remove(ctx context.Context, id string) error {
	if !a.isLoggedIn() {
		log.Println("Not logged in")
		return common.ErrorUnauthorized
	}

	err := a.withRetry(ctx, func(ctx context.Context) error {
		return a.fileService.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			log.Printf("No file with id %s", id)
		} else {
			log.Printf("Error: %s", err.Error())
		}
		return err
	}

	fmt.Printf("Removed %s\n", id)
	return nil
}

// saveDownload writes data into the downloads directory, creating it if
// needed. Files are written owner-only since the content was encrypted
// at rest.
func (a *App) saveDownload(name string, data []byte) (string, error) {
	dir, err := filex.EnsureSubDir(a.config.DownloadsDir)
	if err != nil {
		return "", err
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return "", err
	}
	return target, nil
}
