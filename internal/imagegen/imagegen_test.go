package imagegen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"belle/internal/provider"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeImages struct {
	mu       sync.Mutex
	prompts  []string
	failOn   map[int]bool
	calls    atomic.Int32
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeImages) TextToImage(_ context.Context, _ string, prompt string) ([]byte, error) {
	n := int(f.calls.Add(1))
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if cur <= p || f.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)

	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.failOn[n] {
		return nil, errors.New("503 model loading")
	}
	return []byte("jpeg"), nil
}

type recordingOpener struct{ opened []string }

func (r *recordingOpener) Open(path string) error {
	r.opened = append(r.opened, path)
	return nil
}

func TestInvoke_AllVariants(t *testing.T) {
	dir := t.TempDir()
	imgs := &fakeImages{}
	op := &recordingOpener{}
	g := New(imgs, "http://model", dir, op, nil)

	out, err := g.Invoke(context.Background(), "a cat")
	require.NoError(t, err)
	assert.Equal(t, "I've generated the images for 'a cat'. 🎨", out)

	for i := 1; i <= DefaultVariants; i++ {
		_, err := os.Stat(filepath.Join(dir, "a_cat_"+string(rune('0'+i))+".jpg"))
		assert.NoError(t, err)
	}
	assert.Len(t, op.opened, DefaultVariants)
	assert.Greater(t, imgs.peak.Load(), int32(1), "variants should be requested concurrently")
	for _, p := range imgs.prompts {
		assert.True(t, strings.HasPrefix(p, "a cat, quality=4K"), p)
		assert.Contains(t, p, "seed=")
	}
}

func TestInvoke_PartialFailure(t *testing.T) {
	imgs := &fakeImages{failOn: map[int]bool{2: true}}
	g := New(imgs, "http://model", t.TempDir(), nil, nil)

	out, err := g.Invoke(context.Background(), "sunset")
	require.NoError(t, err)
	assert.Equal(t, "I've generated 3 of 4 images for 'sunset'. 🎨", out)
}

func TestInvoke_AllFail(t *testing.T) {
	imgs := &fakeImages{failOn: map[int]bool{1: true, 2: true, 3: true, 4: true}}
	g := New(imgs, "http://model", t.TempDir(), nil, nil)

	_, err := g.Invoke(context.Background(), "sunset")
	var pe *provider.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, provider.CapabilityImageGeneration, pe.Capability)
	assert.ErrorContains(t, err, "503 model loading")
}

func TestInvoke_EmptyPrompt(t *testing.T) {
	g := New(&fakeImages{}, "http://model", t.TempDir(), nil, nil)
	_, err := g.Invoke(context.Background(), "  ")
	require.Error(t, err)
}

func TestFileStem(t *testing.T) {
	assert.Equal(t, "a_red_blue_car", FileStem("a red/blue car"))
	assert.Equal(t, "cat_on_mars", FileStem(" cat on mars "))
}

func TestParseControl(t *testing.T) {
	p, ok := ParseControl("a cat in space, True\n")
	assert.True(t, ok)
	assert.Equal(t, "a cat in space", p)

	_, ok = ParseControl("False,False")
	assert.False(t, ok)
	_, ok = ParseControl("garbage")
	assert.False(t, ok)
}

func TestWatcher_ProcessesPendingRequest(t *testing.T) {
	dir := t.TempDir()
	control := filepath.Join(dir, "ImageGeneration.data")
	require.NoError(t, os.WriteFile(control, []byte("a cat,True"), 0o644))

	imgDir := filepath.Join(dir, "images")
	w := NewWatcher(New(&fakeImages{}, "http://model", imgDir, nil, nil), control, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(control)
		return err == nil && string(data) == idleControl
	}, 2*time.Second, 20*time.Millisecond)
	_, err := os.Stat(filepath.Join(imgDir, "a_cat_1.jpg"))
	assert.NoError(t, err)

	cancel()
	require.NoError(t, <-done)
}
