package steering

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v3"

	"github.com/agentify-dev/agentify/internal/wizard"
)

// ConflictDecision is the user's answer when the steering directory
// already holds documents.
type ConflictDecision string

const (
	// DecisionOverwrite replaces existing documents in place.
	DecisionOverwrite ConflictDecision = "overwrite"
	// DecisionBackup copies the directory aside before writing.
	DecisionBackup ConflictDecision = "backup"
	// DecisionCancel aborts; nothing is generated or written.
	DecisionCancel ConflictDecision = "cancel"
)

// ConflictPrompter asks the user how to handle an existing steering
// directory. A dismissed or failed prompt is treated as cancel.
type ConflictPrompter interface {
	ResolveConflict(dir string) (ConflictDecision, error)
}

// Writer persists generated documents under the steering directory.
type Writer struct {
	fs  afero.Fs
	dir string

	// now is overridable in tests for a stable backup suffix.
	now func() time.Time
}

// NewWriter builds a writer rooted at the steering directory.
func NewWriter(fsys afero.Fs, dir string) *Writer {
	return &Writer{fs: fsys, dir: dir, now: time.Now}
}

// Dir returns the steering directory this writer targets.
func (w *Writer) Dir() string { return w.dir }

// HasExistingFiles reports whether the steering directory already holds at
// least one markdown document.
func (w *Writer) HasExistingFiles() (bool, error) {
	entries, err := afero.ReadDir(w.fs, w.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read steering directory: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			return true, nil
		}
	}
	return false, nil
}

// Backup copies the steering directory to a timestamped sibling and
// returns the backup path. Colons are kept out of the suffix so the name
// is valid on every filesystem.
func (w *Writer) Backup() (string, error) {
	stamp := w.now().UTC().Format("2006-01-02T15-04-05")
	backupDir := w.dir + ".backup-" + stamp

	err := afero.Walk(w.fs, w.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(w.dir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(backupDir, rel)
		if info.IsDir() {
			return w.fs.MkdirAll(target, info.Mode().Perm())
		}
		data, err := afero.ReadFile(w.fs, path)
		if err != nil {
			return err
		}
		return afero.WriteFile(w.fs, target, data, info.Mode().Perm())
	})
	if err != nil {
		return "", fmt.Errorf("backup steering directory: %w", err)
	}
	return backupDir, nil
}

// frontmatter is the YAML header prepended to every steering document.
type frontmatter struct {
	Inclusion Inclusion `yaml:"inclusion"`
}

// render wraps a generated body with its frontmatter and title heading.
func render(spec FileSpec, body string) (string, error) {
	header, err := yaml.Marshal(frontmatter{Inclusion: spec.Inclusion})
	if err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(header)
	sb.WriteString("---\n\n")
	fmt.Fprintf(&sb, "# %s\n\n", spec.Title)
	sb.WriteString(strings.TrimSpace(body))
	sb.WriteString("\n")
	return sb.String(), nil
}

// WriteFiles persists the generated documents and returns the written
// paths in deterministic name order. Unknown names are skipped; the
// generator only produces catalog names.
func (w *Writer) WriteFiles(files map[string]string) ([]string, error) {
	if err := w.fs.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create steering directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var written []string
	for _, name := range names {
		spec, ok := SpecByName(name)
		if !ok {
			continue
		}
		doc, err := render(spec, files[name])
		if err != nil {
			return written, err
		}
		path := filepath.Join(w.dir, name+".md")
		if err := afero.WriteFile(w.fs, path, []byte(doc), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		written = append(written, abs)
	}
	return written, nil
}

// RunResult is the outcome of a full generate-and-write pass.
type RunResult struct {
	Generation *GenerationResult
	// WrittenPaths are absolute paths of the documents written, including
	// partial output when some documents failed.
	WrittenPaths []string
	// BackupPath is set when the user chose to back up first.
	BackupPath string
}

// Run is the end-to-end flow: conflict check, user decision, generation,
// write. A cancel decision returns before any AI call is made. Partial
// generation still writes the successful documents so a retry only needs
// the failures.
func Run(ctx context.Context, g *Generator, w *Writer, prompter ConflictPrompter, state *wizard.WizardState) (*RunResult, error) {
	result := &RunResult{}

	existing, err := w.HasExistingFiles()
	if err != nil {
		return nil, err
	}
	if existing {
		decision, err := prompter.ResolveConflict(w.Dir())
		if err != nil || decision == DecisionCancel {
			result.Generation = &GenerationResult{
				Files:     map[string]string{},
				Errors:    map[string]error{},
				Cancelled: true,
			}
			return result, nil
		}
		if decision == DecisionBackup {
			backupPath, err := w.Backup()
			if err != nil {
				return nil, err
			}
			result.BackupPath = backupPath
		}
	}

	result.Generation = g.Generate(ctx, state)
	if len(result.Generation.Files) > 0 {
		written, err := w.WriteFiles(result.Generation.Files)
		result.WrittenPaths = written
		if err != nil {
			return result, err
		}
	}
	return result, nil
}
