package registry

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"modelpicker/internal/core"

	"gopkg.in/yaml.v3"
)

//go:embed snapshots/*.yaml
var embeddedSnapshots embed.FS

var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	sub, err := fs.Sub(embeddedSnapshots, "snapshots")
	if err != nil {
		return nil, fmt.Errorf("open embedded snapshots: %w", err)
	}
	return Load(sub)
})

// Default returns the registry compiled into the binary. It is loaded on
// first use and shared by every caller afterwards.
func Default() (*Registry, error) {
	return defaultRegistry()
}

// snapshotFile is the on-disk layout of one snapshot.
type snapshotFile struct {
	Date       string                                   `yaml:"date"`
	Categories map[core.Category]core.CategorySelection `yaml:"categories"`
}

// Load reads every snapshot file at the root of fsys. Each file must be
// named <date>.yaml and pass the snapshot schema. All problems found are
// returned together.
func Load(fsys fs.FS) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read snapshot directory: %w", err)
	}

	snapshots := make(map[string]core.Snapshot)
	var problems []error
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != core.SnapshotFileExt {
			continue
		}

		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			problems = append(problems, fmt.Errorf("read %s: %w", entry.Name(), err))
			continue
		}

		date, snapshot, err := ParseSnapshot(entry.Name(), data)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		snapshots[date] = snapshot
	}

	if err := errors.Join(problems...); err != nil {
		return nil, err
	}
	return New(snapshots)
}

// ParseSnapshot validates and decodes one snapshot document. The date
// inside the document must match the file name.
func ParseSnapshot(fileName string, data []byte) (string, core.Snapshot, error) {
	if errs := ValidateSnapshotBytes(data); len(errs) > 0 {
		return "", nil, fmt.Errorf("%s: schema validation failed:\n  %s", fileName, strings.Join(errs, "\n  "))
	}

	var file snapshotFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return "", nil, fmt.Errorf("%s: decode: %w", fileName, err)
	}

	if want := strings.TrimSuffix(path.Base(fileName), core.SnapshotFileExt); file.Date != want {
		return "", nil, fmt.Errorf("%s: date %q does not match file name", fileName, file.Date)
	}

	return file.Date, core.Snapshot(file.Categories), nil
}
