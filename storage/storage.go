package storage

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store guarda blobs em disco sob um diretório de upload. O banco
// referencia só o nome devolvido por Save, nunca o caminho completo.
type Store interface {
	Save(data []byte, originalName string) (string, error)
	Delete(storedName string) error
	Path(storedName string) string
	List() ([]string, error)
}

type DiskStore struct {
	Dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{Dir: dir}, nil
}

// Save grava o blob com nome único (uuid + extensão original) e
// devolve o nome armazenado.
func (s *DiskStore) Save(data []byte, originalName string) (string, error) {
	name := uuid.NewString() + filepath.Ext(originalName)
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// Delete remove o arquivo; arquivo já ausente não é erro.
func (s *DiskStore) Delete(storedName string) error {
	if storedName == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, storedName))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *DiskStore) Path(storedName string) string {
	return filepath.Join(s.Dir, storedName)
}

// List devolve os nomes armazenados no diretório (usado pela varredura
// de órfãos).
func (s *DiskStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
