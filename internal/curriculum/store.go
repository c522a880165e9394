package curriculum

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Load reads the document at path, repairs trailing separators and decodes it.
// A document that still cannot be parsed yields a *jsondoc.MalformedInputError.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	for _, d := range doc.Duplicates {
		slog.Warn("duplicate key collapsed",
			"path", d.Path,
			"key", d.Key,
			"line", d.Line,
		)
	}
	slog.Info("document loaded",
		"path", path,
		"topics", doc.Topics(),
		"repaired_separators", doc.Repaired,
		"duplicate_keys", len(doc.Duplicates),
	)
	return doc, nil
}

// Save serializes doc and replaces path with it.
func Save(doc *Document, path string) error {
	data, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if err := WriteFile(path, data); err != nil {
		return err
	}

	slog.Info("document saved", "path", path, "bytes", len(data))
	return nil
}

// WriteFile replaces path with data. The bytes go to a temporary file in the
// same directory first, so a failed write leaves path untouched.
func WriteFile(path string, data []byte) (err error) {
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing document: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing document: %w", err)
	}
	if err = os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
