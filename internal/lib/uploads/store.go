// Package uploads реализует локальное файловое хранилище квитанций об оплате.
// Файл сохраняется под случайным именем, возвращается относительный путь —
// он хранится в платёжной записи как ссылка на доказательство оплаты.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tahminci/tahminci-api/internal/models"
)

// Допустимые расширения файлов квитанций.
var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".pdf":  {},
}

// Store локальное файловое хранилище в заданной директории.
type Store struct {
	dir string
}

// New создает хранилище и директорию для него, если её ещё нет.
func New(dir string) (*Store, error) {
	const op = "uploads.New"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Store{dir: dir}, nil
}

// Save сохраняет файл под случайным именем, сохраняя расширение оригинала.
// Возвращает относительный путь к файлу внутри директории хранилища.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	const op = "uploads.Save"

	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%s: unsupported file extension %q: %w", op, ext, models.ErrValidation)
	}

	name := uuid.New().String() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return name, nil
}

// Remove удаляет файл по относительному пути. Отсутствующий файл не считается ошибкой:
// ссылка могла быть уже освобождена при замене квитанции.
func (s *Store) Remove(name string) error {
	const op = "uploads.Remove"
	if name == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
