// Package covers resolves book cover images and computes BlurHash placeholders
// so clients can degrade gracefully when a cover file does not exist.
package covers

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/bbrks/go-blurhash"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// blurHashSize is the target thumbnail size for BlurHash computation.
// BlurHash is a low-resolution placeholder; a small thumbnail produces
// nearly identical hashes at a fraction of the cost.
const blurHashSize = 64

// Resolver locates cover files under a base directory.
// Cover references in the catalog are relative paths and may not resolve;
// a missing file is a normal condition, not an error.
type Resolver struct {
	baseDir string
}

// NewResolver creates a resolver rooted at baseDir.
// An empty baseDir disables resolution: every lookup reports not found.
func NewResolver(baseDir string) *Resolver {
	return &Resolver{baseDir: baseDir}
}

// Resolve returns the absolute path for a cover reference, or ok=false when
// the reference is empty, escapes the base directory, or the file is absent.
func (r *Resolver) Resolve(ref string) (string, bool) {
	if r.baseDir == "" || ref == "" {
		return "", false
	}

	// Cover references historically carry a leading directory component
	// ("covers/book_1.png"); only the file name is meaningful here.
	path := filepath.Join(r.baseDir, filepath.Base(filepath.Clean(ref)))
	if !strings.HasPrefix(path, filepath.Clean(r.baseDir)+string(os.PathSeparator)) {
		return "", false
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// BlurHash computes the placeholder hash for a cover reference.
// Returns "" when the cover does not resolve or cannot be decoded.
func (r *Resolver) BlurHash(ref string) string {
	path, ok := r.Resolve(ref)
	if !ok {
		return ""
	}
	hash, err := ComputeBlurHash(path)
	if err != nil {
		return ""
	}
	return hash
}

// ComputeBlurHash generates a BlurHash string from an image file.
// Uses 4x3 components, a good balance of size (~20-30 chars) and detail
// for portrait book covers.
func ComputeBlurHash(imagePath string) (string, error) {
	file, err := os.Open(imagePath) //#nosec G304 -- path comes from the resolver, rooted at baseDir
	if err != nil {
		return "", fmt.Errorf("open cover: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode cover: %w", err)
	}

	hash, err := blurhash.Encode(4, 3, resizeForBlurHash(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// resizeForBlurHash produces a small thumbnail via nearest-neighbor scaling.
// Fast and sufficient for BlurHash quality.
func resizeForBlurHash(img image.Image) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth <= blurHashSize && srcHeight <= blurHashSize {
		return img
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = blurHashSize
		dstHeight = max(1, (srcHeight*blurHashSize)/srcWidth)
	} else {
		dstHeight = blurHashSize
		dstWidth = max(1, (srcWidth*blurHashSize)/srcHeight)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for y := 0; y < dstHeight; y++ {
		for x := 0; x < dstWidth; x++ {
			srcX := int(float64(x) * xRatio)
			srcY := int(float64(y) * yRatio)
			dst.Set(x, y, img.At(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	}
	return dst
}
