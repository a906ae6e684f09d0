// Package material resolves texture references into renderable materials,
// with last-issued-wins cancellation and a flat-color fallback so a texture
// failure is never fatal to rendering.
package material

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"strings"

	// Texture formats beyond the stdlib set; registered for image.Decode.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anthonynsimon/bild/transform"

	"product-studio/internal/assets"
)

// maxTextureDim caps decoded texture size; larger images are downscaled
// before upload so a phone photo does not become a 50 MB GPU texture.
const maxTextureDim = 1024

// maxTextureBytes caps how much we will read from a remote texture URL.
const maxTextureBytes = 32 << 20

// ImageLoader fetches and decodes one texture reference. Implementations
// must honor ctx; the resolver drops stale results but a canceled load may
// also just return ctx.Err().
type ImageLoader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// Loader is the production ImageLoader: data URIs, http(s) URLs, and local
// file paths, decoded through image.Decode and downscaled when oversized.
type Loader struct {
	Client *http.Client
}

// NewLoader returns a Loader using http.DefaultClient for remote textures.
func NewLoader() *Loader {
	return &Loader{Client: http.DefaultClient}
}

// Load fetches ref, decodes it, and clamps it to maxTextureDim.
func (l *Loader) Load(ctx context.Context, ref string) (image.Image, error) {
	data, err := l.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("material: decode texture: %w", err)
	}
	return clamp(img), nil
}

func (l *Loader) fetch(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		_, data, err := assets.ParseDataURI(ref)
		return data, err
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, err
		}
		client := l.Client
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("material: fetch texture: %s", resp.Status)
		}
		return io.ReadAll(io.LimitReader(resp.Body, maxTextureBytes))
	default:
		return os.ReadFile(ref)
	}
}

// clamp downscales img so its longest side is at most maxTextureDim,
// preserving aspect ratio.
func clamp(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxTextureDim && h <= maxTextureDim {
		return img
	}
	if w >= h {
		h = h * maxTextureDim / w
		w = maxTextureDim
	} else {
		w = w * maxTextureDim / h
		h = maxTextureDim
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return transform.Resize(img, w, h, transform.Linear)
}
