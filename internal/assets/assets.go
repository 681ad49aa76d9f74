// Package assets stores binary image payloads (profile pictures, banners,
// post media) separately from the JSON entity blobs, behind the same
// key-value collaborator.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"wildcard/internal/kv"
	"wildcard/internal/models"
	"wildcard/internal/observability"
)

// Image kinds accepted by Put.
const (
	KindPicture = "picture"
	KindBanner  = "banner"
	KindMedia   = "media"
)

const (
	// DefaultMaxDimension bounds the longest edge of stored images.
	DefaultMaxDimension = 2048
	webpQuality         = 70
	maxPayloadBytes     = 10 * 1024 * 1024
)

// Store reads and writes image payloads keyed by owner and kind. Every
// accepted image is decoded, downscaled when oversized, and re-encoded as
// WebP before it is persisted.
type Store struct {
	backend kv.Store
	log     *observability.OpLogger
	maxDim  int
}

// NewStore creates an asset store over the given backend. maxDim <= 0
// selects the default bound.
func NewStore(backend kv.Store, maxDim int) *Store {
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}
	return &Store{
		backend: backend,
		log:     observability.NewOpLogger("assets"),
		maxDim:  maxDim,
	}
}

// Key builds the storage key for an owner's image of the given kind.
func Key(owner, kind string) string {
	return fmt.Sprintf("wild-card-asset:%s:%s", owner, kind)
}

// Put validates, normalizes, and stores an image payload. It returns the
// storage key recorded on the owning entity.
func (s *Store) Put(ctx context.Context, owner, kind string, payload []byte) (string, error) {
	switch kind {
	case KindPicture, KindBanner, KindMedia:
	default:
		return "", models.NewValidationError("Invalid image kind")
	}
	if len(payload) == 0 {
		return "", models.NewValidationError("No image data")
	}
	if len(payload) > maxPayloadBytes {
		return "", models.NewValidationError("Image too large (max 10MB)")
	}
	if contentType := http.DetectContentType(payload); !isAllowedImageMIME(contentType) {
		return "", models.NewValidationError("Invalid image type")
	}

	decoded, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	normalized := downscale(decoded, s.maxDim)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, normalized, &webp.Options{Quality: webpQuality}); err != nil {
		return "", models.NewInternalError(err)
	}

	key := Key(owner, kind)
	if err := s.backend.Set(ctx, key, buf.Bytes()); err != nil {
		return "", models.NewInternalError(err)
	}
	s.log.Log(ctx, "put", map[string]any{"key": key, "bytes": buf.Len()})
	return key, nil
}

// Get returns the stored payload for key. A failed or empty read degrades
// to (nil, false) with a log line; the feature renders as an unset image
// rather than interrupting the session.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	if key == "" {
		return nil, false
	}
	payload, err := s.backend.Get(ctx, key)
	if err != nil {
		s.log.Warn(ctx, "get", err)
		return nil, false
	}
	if payload == nil {
		return nil, false
	}
	return payload, true
}

// downscale bounds the longest edge of img to maxDim, preserving aspect
// ratio. Images already within bounds are returned untouched.
func downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(w)
	if h > w {
		scale = float64(maxDim) / float64(h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

func isAllowedImageMIME(contentType string) bool {
	switch contentType {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
		return true
	}
	return false
}
