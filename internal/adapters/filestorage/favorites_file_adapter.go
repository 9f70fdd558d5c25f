package filestorage

import (
	"classifieds-browser/internal/contextkeys"
	"classifieds-browser/internal/contracts"
	"classifieds-browser/internal/core/domain"
	"classifieds-browser/internal/core/port"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	filePerm      = 0o600
	corruptSuffix = ".corrupt"
)

// FavoritesFileAdapter хранит избранное в одном JSON-файле.
// Файл перезаписывается целиком через временный файл в той же папке.
type FavoritesFileAdapter struct {
	path string
}

func NewFavoritesFileAdapter(path string) *FavoritesFileAdapter {
	return &FavoritesFileAdapter{path: path}
}

// Path - путь к файлу избранного.
func (a *FavoritesFileAdapter) Path() string {
	return a.path
}

// Load читает файл целиком. Отсутствующий файл дает ошибку, для которой
// errors.Is(err, fs.ErrNotExist) истинно. Поврежденный файл переименовывается
// в CorruptPath(), чтобы следующая запись его не затерла.
func (a *FavoritesFileAdapter) Load(ctx context.Context) ([]domain.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, a.storageErr(domain.StorageOpLoad, err)
	}

	body, err := os.ReadFile(a.path)
	if err != nil {
		return nil, a.storageErr(domain.StorageOpLoad, err)
	}

	if err := contracts.Validate(contracts.FavoritesV1, body); err != nil {
		return nil, a.storageErr(domain.StorageOpLoad, a.moveAside(err))
	}

	var favorites []domain.Listing
	if err := json.Unmarshal(body, &favorites); err != nil {
		return nil, a.storageErr(domain.StorageOpLoad, a.moveAside(err))
	}

	contextkeys.LoggerFromContext(ctx).Debug("Favorites file read", port.Fields{
		"path":  a.path,
		"count": len(favorites),
		"bytes": len(body),
	})
	return favorites, nil
}

// Save атомарно заменяет содержимое файла.
func (a *FavoritesFileAdapter) Save(ctx context.Context, favorites []domain.Listing) error {
	if err := ctx.Err(); err != nil {
		return a.storageErr(domain.StorageOpSave, err)
	}
	if favorites == nil {
		favorites = []domain.Listing{}
	}

	body, err := json.MarshalIndent(favorites, "", "  ")
	if err != nil {
		return a.storageErr(domain.StorageOpSave, err)
	}

	if err := writeFileAtomic(a.path, body); err != nil {
		return a.storageErr(domain.StorageOpSave, err)
	}

	contextkeys.LoggerFromContext(ctx).Debug("Favorites file written", port.Fields{
		"path":  a.path,
		"count": len(favorites),
	})
	return nil
}

// Purge удаляет файл.
func (a *FavoritesFileAdapter) Purge(ctx context.Context) error {
	if err := os.Remove(a.path); err != nil {
		return a.storageErr(domain.StorageOpPurge, err)
	}
	return nil
}

// CorruptPath - куда переносится файл, который не удалось разобрать.
func (a *FavoritesFileAdapter) CorruptPath() string {
	return a.path + corruptSuffix
}

func (a *FavoritesFileAdapter) moveAside(cause error) error {
	if err := os.Rename(a.path, a.CorruptPath()); err != nil {
		return fmt.Errorf("%w (could not move file aside: %v)", cause, err)
	}
	return fmt.Errorf("%w (file moved to %s)", cause, a.CorruptPath())
}

func (a *FavoritesFileAdapter) storageErr(op string, err error) error {
	return &domain.StorageError{Op: op, Path: a.path, Err: err}
}

// writeFileAtomic пишет во временный файл рядом с целевым и переименовывает его.
// Читатель видит либо старое, либо новое содержимое целиком.
func writeFileAtomic(path string, body []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpName, filePerm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
