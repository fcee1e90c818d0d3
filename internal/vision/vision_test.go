package vision

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"belle/internal/provider"
)

type fakeAsker struct{ answer string }

func (f fakeAsker) Ask(context.Context, string) (string, error) { return f.answer, nil }

type fakeAnalyzer struct {
	out    string
	err    error
	prompt string
	mime   string
	data   []byte
}

func (f *fakeAnalyzer) Analyze(_ context.Context, prompt string, image []byte, mimeType string) (string, error) {
	f.prompt, f.data, f.mime = prompt, image, mimeType
	return f.out, f.err
}

func writeImage(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("png-bytes"), 0o644))
	return p
}

func TestInvoke_SendsWholeUtterance(t *testing.T) {
	p := writeImage(t, "photo.png")
	an := &fakeAnalyzer{out: " A dog on a beach. "}
	v := New(NewPromptSelector(fakeAsker{answer: `"` + p + `"`}), an, nil)

	out, err := v.Invoke(context.Background(), "what is in this image?")
	require.NoError(t, err)
	assert.Equal(t, "A dog on a beach.", out)
	assert.Equal(t, "what is in this image?", an.prompt)
	assert.Equal(t, "image/png", an.mime)
	assert.Equal(t, []byte("png-bytes"), an.data)
}

func TestInvoke_DefaultPrompt(t *testing.T) {
	p := writeImage(t, "photo.jpg")
	an := &fakeAnalyzer{out: "ok"}
	v := New(NewPromptSelector(fakeAsker{answer: p}), an, nil)

	_, err := v.Invoke(context.Background(), "  ")
	require.NoError(t, err)
	assert.Equal(t, DefaultPrompt, an.prompt)
}

func TestInvoke_SelectionErrors(t *testing.T) {
	cases := map[string]struct {
		answer string
		want   error
	}{
		"cancelled": {answer: "", want: ErrNoSelection},
		"camera":    {answer: "CAM", want: ErrCameraCapture},
		"missing":   {answer: "/definitely/not/here.png", want: os.ErrNotExist},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			v := New(NewPromptSelector(fakeAsker{answer: tc.answer}), &fakeAnalyzer{}, nil)
			_, err := v.Invoke(context.Background(), "analyze image")
			var pe *provider.Error
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, provider.CapabilityImageAnalysis, pe.Capability)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestInvoke_UnsupportedType(t *testing.T) {
	p := writeImage(t, "notes.txt")
	v := New(NewPromptSelector(fakeAsker{answer: p}), &fakeAnalyzer{}, nil)
	_, err := v.Invoke(context.Background(), "analyze image")
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestInvoke_AnalyzerFailure(t *testing.T) {
	p := writeImage(t, "photo.jpeg")
	v := New(NewPromptSelector(fakeAsker{answer: p}), &fakeAnalyzer{err: errors.New("quota")}, nil)
	_, err := v.Invoke(context.Background(), "analyze image")
	require.ErrorContains(t, err, "quota")
}
