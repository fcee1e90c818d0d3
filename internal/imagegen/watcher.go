package imagegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const idleControl = "False,False"

// Watcher generates images whenever a control file of the form
// "<prompt>,True" is written, then resets it to "False,False".
type Watcher struct {
	gen    *Generator
	path   string
	logger *zap.Logger
}

func NewWatcher(gen *Generator, controlPath string, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{gen: gen, path: controlPath, logger: logger}
}

// ParseControl returns the prompt when the control line requests generation.
func ParseControl(content string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(content), ",")
	if len(parts) != 2 {
		return "", false
	}
	prompt := strings.TrimSpace(parts[0])
	if prompt == "" || !strings.EqualFold(strings.TrimSpace(parts[1]), "true") {
		return "", false
	}
	return prompt, true
}

// Run blocks until ctx is done. The directory is watched rather than the
// file so editors that replace the file are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure control dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("monitoring image control file", zap.String("path", w.path))

	// A request may already be pending from before we started.
	w.process(ctx)

	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			w.process(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) process(ctx context.Context) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return
	}
	prompt, ok := ParseControl(string(data))
	if !ok {
		return
	}
	w.logger.Info("generating images from control file", zap.String("prompt", prompt))
	if _, err := w.gen.Generate(ctx, prompt); err != nil {
		w.logger.Error("image generation failed", zap.String("prompt", prompt), zap.Error(err))
	}
	if err := os.WriteFile(w.path, []byte(idleControl), 0o644); err != nil {
		w.logger.Error("failed to reset control file", zap.Error(err))
	}
}
