// Package imagegen turns a prompt into several image variants on disk.
//
// Variants are requested in parallel and joined before Invoke returns; the
// caller only sees the textual confirmation.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"belle/internal/provider"
)

const DefaultVariants = 4

type ImageClient interface {
	TextToImage(ctx context.Context, modelURL, prompt string) ([]byte, error)
}

// Opener shows a generated file to the user.
type Opener interface {
	Open(path string) error
}

type Generator struct {
	client   ImageClient
	modelURL string
	dir      string
	variants int
	opener   Opener
	seed     func() int
	logger   *zap.Logger
}

// New builds a generator writing into dir. opener may be nil.
func New(client ImageClient, modelURL, dir string, opener Opener, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		client:   client,
		modelURL: modelURL,
		dir:      dir,
		variants: DefaultVariants,
		opener:   opener,
		seed:     func() int { return rand.IntN(1_000_001) },
		logger:   logger,
	}
}

func (g *Generator) Invoke(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", provider.Wrap(provider.CapabilityImageGeneration, errors.New("empty image prompt"))
	}
	paths, err := g.Generate(ctx, prompt)
	if err != nil {
		return "", provider.Wrap(provider.CapabilityImageGeneration, err)
	}
	if len(paths) < g.variants {
		return fmt.Sprintf("I've generated %d of %d images for '%s'. 🎨", len(paths), g.variants, prompt), nil
	}
	return fmt.Sprintf("I've generated the images for '%s'. 🎨", prompt), nil
}

// Generate requests every variant concurrently, saves the ones that succeed
// and returns their paths in variant order. It fails only if none succeed.
func (g *Generator) Generate(ctx context.Context, prompt string) ([]string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure image dir: %w", err)
	}

	images := make([][]byte, g.variants)
	errs := make([]error, g.variants)
	var eg errgroup.Group
	for i := 0; i < g.variants; i++ {
		payload := fmt.Sprintf("%s, quality=4K, sharpness=maximum, Ultra High details, high resolution, seed=%d", prompt, g.seed())
		eg.Go(func() error {
			images[i], errs[i] = g.client.TextToImage(ctx, g.modelURL, payload)
			return nil
		})
	}
	_ = eg.Wait()

	var paths []string
	base := FileStem(prompt)
	for i, img := range images {
		if errs[i] != nil {
			g.logger.Warn("image variant failed", zap.Int("variant", i+1), zap.Error(errs[i]))
			continue
		}
		p := filepath.Join(g.dir, fmt.Sprintf("%s_%d.jpg", base, i+1))
		if err := os.WriteFile(p, img, 0o644); err != nil {
			errs[i] = fmt.Errorf("save %s: %w", p, err)
			g.logger.Warn("image save failed", zap.String("path", p), zap.Error(err))
			continue
		}
		g.logger.Info("image saved", zap.String("path", p))
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("all %d image variants failed: %w", g.variants, errors.Join(errs...))
	}

	if g.opener != nil {
		for _, p := range paths {
			if err := g.opener.Open(p); err != nil {
				g.logger.Warn("failed to open image", zap.String("path", p), zap.Error(err))
			}
		}
	}
	return paths, nil
}

// FileStem is the file name prefix used for a prompt's variants.
func FileStem(prompt string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_")
	return r.Replace(strings.TrimSpace(prompt))
}
