package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	fileMode = 0o600
	dirMode  = 0o700
)

type fileRecord struct {
	Token string `json:"token"`
}

// FileStorage keeps the token in a JSON file readable by the owner only.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) FileStorage {
	return FileStorage{path: path}
}

func (f FileStorage) Load(context.Context) (string, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("os.ReadFile: %w", err)
	}

	var record fileRecord

	if err = json.Unmarshal(b, &record); err != nil {
		return "", fmt.Errorf("json.Unmarshal: %w", err)
	}

	return record.Token, nil
}

func (f FileStorage) Save(_ context.Context, token string) error {
	b, err := json.Marshal(fileRecord{Token: token})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(f.path), dirMode); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %w", err)
	}

	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err = tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("tmp.Write: %w", err)
	}

	if err = tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("tmp.Chmod: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close: %w", err)
	}

	if err = os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}

	return nil
}

func (f FileStorage) Clear(context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("os.Remove: %w", err)
	}

	return nil
}
