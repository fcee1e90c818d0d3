// Package vision answers questions about a user-selected image.
package vision

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"belle/internal/provider"
)

const DefaultPrompt = "Describe this image in detail."

var (
	ErrNoSelection      = errors.New("no file selected")
	ErrUnsupportedImage = errors.New("unsupported image type (want .jpg, .jpeg or .png)")
	ErrCameraCapture    = errors.New("camera capture is not supported")
)

// Selector picks the image to analyze. It may block on user interaction.
type Selector interface {
	Select(ctx context.Context) (string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

type Vision struct {
	selector Selector
	analyzer Analyzer
	logger   *zap.Logger
}

func New(selector Selector, analyzer Analyzer, logger *zap.Logger) *Vision {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Vision{selector: selector, analyzer: analyzer, logger: logger}
}

// Invoke receives the whole utterance as the analysis prompt.
func (v *Vision) Invoke(ctx context.Context, utterance string) (string, error) {
	prompt := strings.TrimSpace(utterance)
	if prompt == "" {
		prompt = DefaultPrompt
	}

	path, err := v.selector.Select(ctx)
	if err != nil {
		return "", provider.Wrap(provider.CapabilityImageAnalysis, err)
	}
	mimeType, err := ImageMIME(path)
	if err != nil {
		return "", provider.Wrap(provider.CapabilityImageAnalysis, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", provider.Wrap(provider.CapabilityImageAnalysis, fmt.Errorf("read image: %w", err))
	}

	v.logger.Info("analyzing image", zap.String("path", path), zap.String("mime", mimeType), zap.Int("bytes", len(data)))
	out, err := v.analyzer.Analyze(ctx, prompt, data, mimeType)
	if err != nil {
		return "", provider.Wrap(provider.CapabilityImageAnalysis, err)
	}
	return strings.TrimSpace(out), nil
}

// ImageMIME resolves the content type from the file extension.
func ImageMIME(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".jpg", ".jpeg", ".png":
		if t := mime.TypeByExtension(ext); t != "" {
			return t, nil
		}
		if ext == ".png" {
			return "image/png", nil
		}
		return "image/jpeg", nil
	default:
		return "", ErrUnsupportedImage
	}
}
