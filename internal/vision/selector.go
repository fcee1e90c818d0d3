package vision

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Asker reads one answer from the user, typically the console.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// PromptSelector asks the user for an image path on the console.
type PromptSelector struct {
	asker Asker
}

func NewPromptSelector(asker Asker) *PromptSelector {
	return &PromptSelector{asker: asker}
}

func (s *PromptSelector) Select(ctx context.Context) (string, error) {
	answer, err := s.asker.Ask(ctx, "Image path to analyze ('cam' for camera, empty to cancel): ")
	if err != nil {
		return "", err
	}
	path := strings.Trim(strings.TrimSpace(answer), `"'`)
	switch {
	case path == "":
		return "", ErrNoSelection
	case strings.EqualFold(path, "cam"):
		return "", ErrCameraCapture
	}
	if home, err := os.UserHomeDir(); err == nil && strings.HasPrefix(path, "~/") {
		path = home + path[1:]
	}
	st, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("selected image: %w", err)
	}
	if st.IsDir() {
		return "", fmt.Errorf("selected image %s is a directory", path)
	}
	return path, nil
}
