package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage keeps blobs on the local filesystem under a root
// directory. Locators are confined to the root.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	err := os.MkdirAll(root, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

func (s *LocalStorage) Save(path string, r io.Reader) error {
	full := s.resolve(path)

	err := os.MkdirAll(filepath.Dir(full), 0755)
	if err != nil {
		return err
	}

	f, err := os.Create(full)
	if err != nil {
		return err
	}

	_, err = io.Copy(f, r)
	if err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func (s *LocalStorage) Open(path string) (io.ReadCloser, error) {
	// os.Open reports missing files as fs.ErrNotExist already
	return os.Open(s.resolve(path))
}

func (s *LocalStorage) Delete(path string) error {
	return os.Remove(s.resolve(path))
}

// resolve joins the locator onto the root. Cleaning against "/" first
// neutralizes ".." segments so locators cannot escape the root.
func (s *LocalStorage) resolve(path string) string {
	return filepath.Join(s.root, filepath.Clean("/"+path))
}
