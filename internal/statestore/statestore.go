// Package statestore реализует долговременное состояние клиента:
// токен доступа и имя последнего вошедшего пользователя,
// сохраняемые в JSON-файле между запусками.
//
// Отсутствие файла или токена в нём означает "не авторизован" —
// это штатное состояние, а не ошибка.
package statestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// State две персистентные пары ключ-значение клиента.
type State struct {
	AccessToken string `json:"access_token,omitempty"`
	Username    string `json:"username,omitempty"`
}

// Store файловое хранилище состояния клиента.
// Все операции потокобезопасны.
type Store struct {
	mu   sync.Mutex
	path string
}

// New создаёт Store поверх файла по указанному пути.
// Файл создаётся лениво при первом Save.
func New(path string) *Store {
	return &Store{path: path}
}

// Load читает сохранённое состояние.
// Отсутствующий файл возвращает пустое состояние без ошибки.
func (s *Store) Load() (State, error) {
	const op = "statestore.Load"

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("%s: %w", op, err)
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

// Save записывает состояние целиком, файл доступен только владельцу.
func (s *Store) Save(st State) error {
	const op = "statestore.Save"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Purge удаляет сохранённые учётные данные.
// Идемпотентна: отсутствие файла не является ошибкой.
func (s *Store) Purge() error {
	const op = "statestore.Purge"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
