package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xwebp "golang.org/x/image/webp"

	"wildcard/internal/kv"
	"wildcard/internal/models"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPutAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := kv.NewMemory()
	store := NewStore(backend, 0)

	key, err := store.Put(ctx, "elena", KindPicture, encodePNG(t, 64, 48))
	require.NoError(t, err)
	assert.Equal(t, "wild-card-asset:elena:picture", key)

	payload, ok := store.Get(ctx, key)
	require.True(t, ok)

	// stored payloads are WebP regardless of the input format
	decoded, err := xwebp.Decode(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, 64, decoded.Bounds().Dx())
	assert.Equal(t, 48, decoded.Bounds().Dy())
}

func TestPutDownscalesOversizedImages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(kv.NewMemory(), 100)

	key, err := store.Put(ctx, "elena", KindBanner, encodePNG(t, 400, 200))
	require.NoError(t, err)

	payload, ok := store.Get(ctx, key)
	require.True(t, ok)
	decoded, err := xwebp.Decode(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, 100, decoded.Bounds().Dx(), "longest edge is bounded")
	assert.Equal(t, 50, decoded.Bounds().Dy(), "aspect ratio is preserved")
}

func TestPutKeepsSmallImages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(kv.NewMemory(), 100)

	key, err := store.Put(ctx, "elena", KindMedia, encodePNG(t, 80, 60))
	require.NoError(t, err)

	payload, ok := store.Get(ctx, key)
	require.True(t, ok)
	decoded, err := xwebp.Decode(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, 80, decoded.Bounds().Dx())
	assert.Equal(t, 60, decoded.Bounds().Dy())
}

func TestPutRejectsBadInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(kv.NewMemory(), 0)

	tests := []struct {
		name    string
		kind    string
		payload []byte
	}{
		{name: "bad kind", kind: "avatar", payload: encodePNG(t, 8, 8)},
		{name: "empty payload", kind: KindPicture, payload: nil},
		{name: "not an image", kind: KindPicture, payload: []byte("plain text, definitely not pixels")},
		{name: "truncated image", kind: KindPicture, payload: encodePNG(t, 8, 8)[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Put(ctx, "elena", tt.kind, tt.payload)
			assert.True(t, models.IsCode(err, models.CodeValidation), "got %v", err)
		})
	}
}

func TestGetDegradesGracefully(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(kv.NewMemory(), 0)

	_, ok := store.Get(ctx, "")
	assert.False(t, ok)

	_, ok = store.Get(ctx, Key("nobody", KindPicture))
	assert.False(t, ok)
}

func TestPutOverwritesPerOwnerAndKind(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := kv.NewMemory()
	store := NewStore(backend, 0)

	first, err := store.Put(ctx, "elena", KindPicture, encodePNG(t, 10, 10))
	require.NoError(t, err)
	second, err := store.Put(ctx, "elena", KindPicture, encodePNG(t, 20, 20))
	require.NoError(t, err)
	assert.Equal(t, first, second, "one slot per owner and kind")

	payload, ok := store.Get(ctx, second)
	require.True(t, ok)
	decoded, err := xwebp.Decode(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, 20, decoded.Bounds().Dx())
}
