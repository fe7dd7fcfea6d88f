// Package upload отвечает за хранение загруженных файлов на диске.
// Остальной код оперирует только строковой ссылкой-путём.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Storage сохраняет загруженные файлы в каталоге на локальном диске.
type Storage struct {
	dir string
}

// NewStorage создаёт хранилище файлов и каталог для него.
func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Save записывает содержимое файла под уникальным именем и возвращает
// относительный путь-ссылку для хранения в БД.
func (s *Storage) Save(src io.Reader, originalName string) (string, error) {
	name := uuid.NewString() + "-" + filepath.Base(originalName)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}

	return path, nil
}

// Remove освобождает файл по сохранённой ссылке. Отсутствие файла не ошибка:
// ссылка могла указывать на уже удалённый ресурс.
func (s *Storage) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// Dir возвращает корневой каталог хранилища для раздачи статики.
func (s *Storage) Dir() string {
	return s.dir
}
