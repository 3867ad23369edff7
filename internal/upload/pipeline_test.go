package upload

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/siteledger/internal/files"
	"github.com/nhle/siteledger/internal/model"
	"github.com/nhle/siteledger/internal/quota"
	"github.com/nhle/siteledger/internal/testutil"
)

func newPipeline(t *testing.T, capacity int64, delay time.Duration) *Pipeline {
	t.Helper()
	reg, err := files.New(context.Background(), testutil.NewTestKV(t), nil)
	require.NoError(t, err)
	return New(reg, quota.New(capacity), model.UploadConfig{
		MaxWidth: 1920, MaxHeight: 1080, JPEGQuality: 85,
		SimulatedDelay: delay, ProgressSteps: 4,
	}, nil)
}

func textFile(name string, size int) Request {
	return Request{Name: name, Type: "text/plain", Data: []byte(strings.Repeat("x", size))}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadQuotaThresholds(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, 1000, 0)

	_, err := p.Upload(ctx, textFile("a.txt", 850))
	require.NoError(t, err)
	u := p.Usage()
	assert.True(t, u.IsWarning)
	assert.False(t, u.IsCritical)
	assert.InDelta(t, 85.0, u.Percent(), 0.001)

	_, err = p.Upload(ctx, textFile("b.txt", 100))
	require.NoError(t, err)
	u = p.Usage()
	assert.True(t, u.IsCritical)
	assert.Equal(t, int64(950), u.Used)

	before := p.files.Files()
	_, err = p.Upload(ctx, textFile("c.txt", 100))
	assert.ErrorIs(t, err, model.ErrQuotaExceeded)
	assert.Equal(t, before, p.files.Files())
	assert.Equal(t, u, p.Usage())
}

func TestUploadCancel(t *testing.T) {
	p := newPipeline(t, 1000, 10*time.Second)

	task := p.Start(context.Background(), textFile("slow.txt", 10))
	task.Cancel()
	_, err := task.Wait()

	assert.ErrorIs(t, err, model.ErrUploadAborted)
	assert.Empty(t, p.files.Files())
}

func TestUploadContextCancel(t *testing.T) {
	p := newPipeline(t, 1000, 10*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.Upload(ctx, textFile("slow.txt", 10))

	assert.ErrorIs(t, err, model.ErrUploadAborted)
	assert.Empty(t, p.files.Files())
}

func TestUploadReportsProgress(t *testing.T) {
	p := newPipeline(t, 1000, 8*time.Millisecond)

	task := p.Start(context.Background(), textFile("a.txt", 10))
	var seen []int
	for pct := range task.Progress() {
		seen = append(seen, pct)
	}
	_, err := task.Wait()
	require.NoError(t, err)

	require.NotEmpty(t, seen)
	assert.Equal(t, 0, seen[0])
	assert.Equal(t, 100, seen[len(seen)-1])
	assert.IsIncreasing(t, seen)
}

func TestUploadCompressesImages(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, 1<<30, 0)

	stored, err := p.Upload(ctx, Request{
		Name:     "site.png",
		Data:     pngBytes(t, 4000, 2000),
		LinkedTo: &model.FileLink{Type: model.EntityProject, ID: "p1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", stored.Type)
	require.True(t, strings.HasPrefix(stored.URL, "data:image/jpeg;base64,"))
	assert.Equal(t, model.EntityProject, stored.LinkedTo.Type)

	raw := decodeDataURI(t, stored.URL)
	assert.Equal(t, int64(len(raw)), stored.Size)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 1920, cfg.Width)
	assert.Equal(t, 960, cfg.Height)
}

func TestUploadRejectsCorruptImage(t *testing.T) {
	p := newPipeline(t, 1000, 0)

	_, err := p.Upload(context.Background(), Request{Name: "bad.png", Type: "image/png", Data: []byte("not a png")})
	assert.ErrorIs(t, err, model.ErrCompressionFailed)
	assert.True(t, IsUploadFailure(err))
	assert.Empty(t, p.files.Files())
}

func TestConcurrentUploadsNeverOvershoot(t *testing.T) {
	p := newPipeline(t, 1000, time.Millisecond)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Upload(context.Background(), textFile("f.txt", 100)); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, int64(1000), p.Usage().Used)
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{800, 600, 1920, 1080, 800, 600},
		{3840, 2160, 1920, 1080, 1920, 1080},
		{1080, 4000, 1920, 1080, 292, 1080},
		{5000, 1, 1920, 1080, 1920, 1},
		{100, 100, 0, 0, 100, 100},
	}
	for _, tt := range tests {
		w, h := fit(tt.w, tt.h, tt.maxW, tt.maxH)
		assert.Equal(t, [2]int{tt.wantW, tt.wantH}, [2]int{w, h}, "%dx%d", tt.w, tt.h)
	}
}
