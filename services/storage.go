package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize caps one uploaded menu image.
const MaxImageSize = 5 << 20

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageStore keeps uploaded menu images and hands out their public URLs.
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// AllowedImage reports whether filename has an accepted image extension.
func AllowedImage(filename string) bool {
	return allowedImageExt[strings.ToLower(filepath.Ext(filename))]
}

// LocalImageStore writes images under Dir/menu_images and serves them from
// BaseURL/uploads/menu_images.
type LocalImageStore struct {
	Dir     string
	BaseURL string
}

func NewLocalImageStore(dir, baseURL string) *LocalImageStore {
	return &LocalImageStore{Dir: dir, BaseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *LocalImageStore) folder() string {
	return filepath.Join(s.Dir, "menu_images")
}

func (s *LocalImageStore) urlPrefix() string {
	return s.BaseURL + "/uploads/menu_images/"
}

// Save stores r under a fresh uuid name keeping the original extension.
func (s *LocalImageStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if !AllowedImage(filename) {
		return "", invalid("image", "Only jpg, jpeg, png, gif and webp images are allowed")
	}
	if err := os.MkdirAll(s.folder(), 0o755); err != nil {
		return "", fmt.Errorf("create upload folder: %w", err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.folder(), name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, MaxImageSize+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > MaxImageSize {
		err = invalid("image", "Image must be 5 MB or smaller")
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return s.urlPrefix() + name, nil
}

// Delete removes an image previously returned by Save. URLs pointing
// elsewhere are ignored.
func (s *LocalImageStore) Delete(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, s.urlPrefix()) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(url, s.urlPrefix()))
	err := os.Remove(filepath.Join(s.folder(), name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
