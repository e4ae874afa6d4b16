package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const jpegQuality = 85

func isImagePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}

// downscaleImage resizes the image at path in place to maxWidth pixels wide
// (proportional height) when it is wider. It must run before the content
// hash is computed so the hash always matches the bytes that get uploaded.
func downscaleImage(path string, maxWidth int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("assets: open image %s: %w", path, err)
	}
	img, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("assets: decode image %s: %w", path, err)
	}

	b := img.Bounds()
	if b.Dx() <= maxWidth {
		return nil
	}
	height := int(float64(b.Dy()) * float64(maxWidth) / float64(b.Dx()))
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	case "png":
		err = png.Encode(&buf, dst)
	case "gif":
		err = gif.Encode(&buf, dst, nil)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("assets: encode image %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("assets: rewrite image %s: %w", path, err)
	}
	return nil
}
