package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/openmined/fileagent/internal/utils"
)

// Service performs list, download and upload operations under a configured
// root directory. Every requested path goes through Resolve first, so
// nothing the service touches can escape the root.
type Service struct {
	root string
}

func NewService(root string) (*Service, error) {
	absRoot, err := utils.ResolvePath(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root dir: %w", err)
	}
	if !utils.DirExists(absRoot) {
		return nil, fmt.Errorf("root dir %q is not a directory", absRoot)
	}
	return &Service{root: absRoot}, nil
}

func (s *Service) Root() string {
	return s.root
}

// List returns the immediate entry names of a directory. Listing a file
// returns that file's own absolute path as the single entry.
func (s *Service) List(requested string) ([]string, error) {
	full, err := Resolve(s.root, requested, KindAny)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", full, err)
	}
	if !info.IsDir() {
		return []string{full}, nil
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", full, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// Open resolves a download target. Directories cannot be downloaded.
func (s *Service) Open(requested string) (string, error) {
	return Resolve(s.root, requested, KindFile)
}

// Save writes an uploaded file into an existing directory under the root.
// Returns the absolute path the file was written to.
func (s *Service) Save(requested string, filename string, src io.Reader) (string, error) {
	dir, err := Resolve(s.root, requested, KindDir)
	if err != nil {
		return "", err
	}

	// the filename must not smuggle in extra path segments
	filename = filepath.Base(filename)
	if filename == "." || filename == string(filepath.Separator) {
		return "", fmt.Errorf("%w: invalid filename", ErrNotFound)
	}

	target := filepath.Join(dir, filename)
	dst, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", target, err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}

	slog.Info("file saved", "path", target, "size", humanize.Bytes(uint64(written)))
	return target, nil
}
