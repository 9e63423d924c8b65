package artifact

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by a Source when the named object does not exist.
var ErrNotFound = errors.New("not found")

// Source fetches raw artifact bytes by name.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	// Location describes where name is read from, for logs and errors.
	Location(name string) string
}

// DirSource reads artifacts from a local directory.
type DirSource struct {
	Dir string
}

func (s DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Location(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.Location(name), ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

func (s DirSource) Location(name string) string {
	return filepath.Join(s.Dir, name)
}

// gunzip decompresses data when the artifact name carries a .gz suffix.
func gunzip(name string, data []byte) ([]byte, error) {
	if !strings.HasSuffix(name, ".gz") {
		return data, nil
	}

	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}
