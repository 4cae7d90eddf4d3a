package sitekit

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/xpertai/sitekit/listman"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
)

// processImage decodes an image, resizes it to maxImageWidth if wider, and
// re-encodes it as JPEG. Uploaded images are normalized here before being
// forwarded to the backend, so oversized marketing assets never leave the
// building.
func processImage(src io.Reader, originalName string) (string, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return "", nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", nil, fmt.Errorf("encode jpeg: %w", err)
	}

	filename := slugifyFilename(originalName) + ".jpg"
	return filename, buf.Bytes(), nil
}

func slugifyFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if s := Slugify(base); s != "" {
		return s
	}
	return "upload"
}

func isImageFilename(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}

// formUploads collects the file parts for the given field descriptors from
// the submitted form. Image uploads are resized and re-encoded; other files
// (PDFs, resumes) pass through untouched. Missing files are simply absent
// from the result; an edit that keeps the stored file submits no part.
func formUploads(c echo.Context, fields []listman.Field) (map[string]listman.Upload, error) {
	uploads := make(map[string]listman.Upload)
	for _, f := range fields {
		if f.Kind != listman.File {
			continue
		}
		fh, err := c.FormFile(f.Name)
		if err != nil || fh.Filename == "" {
			continue
		}
		if fh.Size > maxUploadSize {
			return nil, fmt.Errorf("file %q too large (max 10MB)", fh.Filename)
		}
		src, err := fh.Open()
		if err != nil {
			return nil, err
		}
		if isImageFilename(fh.Filename) {
			name, data, perr := processImage(src, fh.Filename)
			src.Close()
			if perr != nil {
				return nil, perr
			}
			uploads[f.Name] = listman.Upload{Filename: name, Reader: bytes.NewReader(data)}
			continue
		}
		raw, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return nil, err
		}
		uploads[f.Name] = listman.Upload{Filename: fh.Filename, Reader: bytes.NewReader(raw)}
	}
	return uploads, nil
}
