package steering

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func newTestWriter(t *testing.T) (*Writer, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	w := NewWriter(fsys, "/workspace/.agentify/steering")
	w.now = func() time.Time {
		return time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	}
	return w, fsys
}

type fixedPrompter struct {
	decision ConflictDecision
	err      error
	asked    int
}

func (p *fixedPrompter) ResolveConflict(dir string) (ConflictDecision, error) {
	p.asked++
	return p.decision, p.err
}

func TestWriteFilesRendersFrontmatterAndTitle(t *testing.T) {
	w, fsys := newTestWriter(t)

	paths, err := w.WriteFiles(map[string]string{
		"product":              "The workflow reconciles orders.",
		"agentify-integration": "How to consume these documents.",
	})
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("wrote %d files, want 2", len(paths))
	}
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			t.Errorf("path %q is not absolute", p)
		}
	}

	product, err := afero.ReadFile(fsys, "/workspace/.agentify/steering/product.md")
	if err != nil {
		t.Fatalf("read product.md: %v", err)
	}
	text := string(product)
	if !strings.HasPrefix(text, "---\ninclusion: always\n---\n\n# Product Overview\n") {
		t.Errorf("product.md header wrong:\n%s", text)
	}
	if !strings.Contains(text, "The workflow reconciles orders.") {
		t.Errorf("product.md missing body:\n%s", text)
	}

	integ, _ := afero.ReadFile(fsys, "/workspace/.agentify/steering/agentify-integration.md")
	if !strings.Contains(string(integ), "inclusion: manual") {
		t.Errorf("agentify-integration.md must be manual inclusion:\n%s", integ)
	}
}

func TestHasExistingFiles(t *testing.T) {
	w, fsys := newTestWriter(t)

	if ok, err := w.HasExistingFiles(); err != nil || ok {
		t.Errorf("missing dir: got %v, %v", ok, err)
	}

	if err := fsys.MkdirAll(w.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if ok, _ := w.HasExistingFiles(); ok {
		t.Error("empty dir reported as having files")
	}

	if err := afero.WriteFile(fsys, filepath.Join(w.Dir(), "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, _ := w.HasExistingFiles(); ok {
		t.Error("non-markdown file counted as existing document")
	}

	if err := afero.WriteFile(fsys, filepath.Join(w.Dir(), "product.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, _ := w.HasExistingFiles(); !ok {
		t.Error("markdown file not detected")
	}
}

func TestBackupCopiesDirectory(t *testing.T) {
	w, fsys := newTestWriter(t)
	if err := afero.WriteFile(fsys, filepath.Join(w.Dir(), "product.md"), []byte("old product"), 0o644); err != nil {
		t.Fatal(err)
	}

	backupDir, err := w.Backup()
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if want := w.Dir() + ".backup-2026-08-29T10-30-00"; backupDir != want {
		t.Errorf("backup dir = %q, want %q", backupDir, want)
	}
	if strings.Contains(filepath.Base(backupDir), ":") {
		t.Errorf("backup dir name contains a colon: %q", backupDir)
	}

	data, err := afero.ReadFile(fsys, filepath.Join(backupDir, "product.md"))
	if err != nil {
		t.Fatalf("read backup copy: %v", err)
	}
	if string(data) != "old product" {
		t.Errorf("backup content = %q", data)
	}
	// Original remains in place for the subsequent overwrite.
	if ok, _ := afero.Exists(fsys, filepath.Join(w.Dir(), "product.md")); !ok {
		t.Error("original file removed by backup")
	}
}

func TestRunCancelMakesNoAICalls(t *testing.T) {
	w, fsys := newTestWriter(t)
	if err := afero.WriteFile(fsys, filepath.Join(w.Dir(), "product.md"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	calls := 0
	factory := func(ctx context.Context, systemPrompt string) (Sender, error) {
		calls++
		return nil, errors.New("should not be called")
	}
	g := NewGenerator(factory, "")
	g.retryBase = time.Millisecond

	prompter := &fixedPrompter{decision: DecisionCancel}
	res, err := Run(context.Background(), g, w, prompter, completedState())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if prompter.asked != 1 {
		t.Errorf("prompter asked %d times, want 1", prompter.asked)
	}
	if !res.Generation.Cancelled {
		t.Error("result not marked cancelled")
	}
	if calls != 0 {
		t.Errorf("AI client factory invoked %d times after cancel, want 0", calls)
	}

	// Existing content untouched.
	data, _ := afero.ReadFile(fsys, filepath.Join(w.Dir(), "product.md"))
	if string(data) != "existing" {
		t.Errorf("existing document modified: %q", data)
	}
}

func TestRunPromptErrorTreatedAsCancel(t *testing.T) {
	w, fsys := newTestWriter(t)
	if err := afero.WriteFile(fsys, filepath.Join(w.Dir(), "product.md"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	calls := newCallCounter()
	g := testGenerator(t, nil, nil, calls)
	prompter := &fixedPrompter{decision: DecisionOverwrite, err: errors.New("prompt dismissed")}

	res, err := Run(context.Background(), g, w, prompter, completedState())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Generation.Cancelled || calls.total() != 0 {
		t.Errorf("dismissed prompt must cancel: cancelled=%v calls=%d", res.Generation.Cancelled, calls.total())
	}
}

func TestRunBackupThenWrite(t *testing.T) {
	w, fsys := newTestWriter(t)
	if err := afero.WriteFile(fsys, filepath.Join(w.Dir(), "product.md"), []byte("old product"), 0o644); err != nil {
		t.Fatal(err)
	}

	calls := newCallCounter()
	g := testGenerator(t, nil, nil, calls)
	prompter := &fixedPrompter{decision: DecisionBackup}

	res, err := Run(context.Background(), g, w, prompter, completedState())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.BackupPath == "" {
		t.Fatal("no backup path recorded")
	}
	backup, err := afero.ReadFile(fsys, filepath.Join(res.BackupPath, "product.md"))
	if err != nil || string(backup) != "old product" {
		t.Errorf("backup copy = %q, %v", backup, err)
	}

	fresh, _ := afero.ReadFile(fsys, filepath.Join(w.Dir(), "product.md"))
	if !strings.Contains(string(fresh), "Generated body for product") {
		t.Errorf("product.md not overwritten with new content:\n%s", fresh)
	}
	if len(res.WrittenPaths) != len(res.Generation.Files) {
		t.Errorf("wrote %d paths for %d documents", len(res.WrittenPaths), len(res.Generation.Files))
	}
}

func TestRunWritesPartialOutput(t *testing.T) {
	w, fsys := newTestWriter(t)

	calls := newCallCounter()
	g := testGenerator(t, nil, map[string]bool{"tech": true}, calls)

	res, err := Run(context.Background(), g, w, &fixedPrompter{decision: DecisionOverwrite}, completedState())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Generation.Success {
		t.Fatal("expected a failing document")
	}
	if ok, _ := afero.Exists(fsys, filepath.Join(w.Dir(), "product.md")); !ok {
		t.Error("successful document not written alongside a failure")
	}
	if ok, _ := afero.Exists(fsys, filepath.Join(w.Dir(), "tech.md")); ok {
		t.Error("failed document written")
	}
}
