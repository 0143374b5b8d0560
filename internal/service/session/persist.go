package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileStore сохраняет снимок сессии одним JSON‑документом по фиксированному
// пути. Персистентность строго best‑effort: ошибка чтения или записи
// логируется и никогда не доходит до пользователя.
type FileStore struct {
	path   string
	logger *zap.SugaredLogger
}

func NewFileStore(path string, logger *zap.SugaredLogger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Save записывает снимок атомарно: во временный файл рядом, затем rename.
func (f *FileStore) Save(st State) {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		f.logger.Warnw("Не удалось сериализовать снимок сессии", "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		f.logger.Warnw("Не удалось создать каталог снимка", "path", f.path, "error", err)
		return
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		f.logger.Warnw("Не удалось записать снимок сессии", "path", tmp, "error", err)
		return
	}
	if err := os.Rename(tmp, f.path); err != nil {
		f.logger.Warnw("Не удалось заменить снимок сессии", "path", f.path, "error", err)
	}
}

// Load читает снимок. Отсутствующий файл — нормальный первый запуск;
// повреждённый — предупреждение и пустой результат.
func (f *FileStore) Load() (State, bool) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warnw("Не удалось прочитать снимок сессии", "path", f.path, "error", err)
		}
		return State{}, false
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		f.logger.Warnw("Снимок сессии повреждён, игнорируем", "path", f.path, "error", err)
		return State{}, false
	}
	if len(st.Threads) == 0 {
		return State{}, false
	}
	return st, true
}
