package exporter

import (
	"io"
	"os"
	"path/filepath"
)

// copyVerbatim copies src to dst byte-for-byte, creating intermediate
// directories as needed. os.MkdirAll is idempotent under concurrent
// callers creating the same directory, which is all the locking
// discipline two workers racing to create a shared parent directory need.
func copyVerbatim(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeFile(dst string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, content, 0o644)
}
