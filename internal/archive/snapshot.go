package archive

import (
	"fmt"
	goimage "image"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // camera exports arrive as TIFF
)

// maxThumbnailEdge bounds the longer edge of archived snapshots. Full
// camera frames stay with the detection rig; the archive keeps thumbnails.
const maxThumbnailEdge = 256

// SaveSnapshot writes a scaled-down PNG of a defect frame into dir and
// returns the written path, for storing on the annotation row.
func SaveSnapshot(dir, annotationID string, frame goimage.Image) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("snapshot dir: %w", err)
	}

	path := filepath.Join(dir, annotationID+".png")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, Thumbnail(frame)); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return path, nil
}

// LoadFrame reads a camera frame or archived snapshot from disk. The rig's
// export tooling writes TIFF; archived snapshots are PNG. Both decode
// through the registered formats.
func LoadFrame(path string) (goimage.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	img, _, err := goimage.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Thumbnail scales an image down so its longer edge is at most
// maxThumbnailEdge pixels. Smaller images pass through unscaled.
func Thumbnail(src goimage.Image) goimage.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxThumbnailEdge && h <= maxThumbnailEdge {
		return src
	}

	scale := float64(maxThumbnailEdge) / float64(w)
	if h > w {
		scale = float64(maxThumbnailEdge) / float64(h)
	}
	dst := goimage.NewRGBA(goimage.Rect(0, 0, int(float64(w)*scale+0.5), int(float64(h)*scale+0.5)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
