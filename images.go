package site

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"

	"github.com/pulsodigital/site/content"
)

const (
	maxImageWidth = 1200
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
)

// Image is an uploaded blog/case image as reported to the admin UI. Uploads
// live in the uploads dir and are served under /blog/, which is why post
// image urls carry that prefix.
type Image struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// processImage decodes an image, resizes it down to maxImageWidth if needed,
// and re-encodes it as JPEG.
func processImage(src io.Reader, originalName string) (Image, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Image{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	filename := slugifyFilename(originalName) + ".jpg"
	return Image{
		Filename: filename,
		URL:      "/blog/" + filename,
		Size:     int64(buf.Len()),
		Width:    w,
		Height:   h,
	}, buf.Bytes(), nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if slug := content.NormalizeSlug(base); slug != "" {
		return slug
	}
	return "image"
}

// ensureUniqueFilename appends a counter while the filename collides with an
// existing upload.
func (a *App) ensureUniqueFilename(img *Image) {
	base := strings.TrimSuffix(img.Filename, ".jpg")
	candidate := img.Filename
	counter := 1
	for {
		if _, err := os.Stat(filepath.Join(a.Config.UploadsDir, candidate)); err != nil {
			break
		}
		counter++
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
	img.Filename = candidate
	img.URL = "/blog/" + candidate
}

func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No image file provided"})
	}
	if file.Size > maxUploadSize {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "File too large (max 10MB)"})
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, data, err := processImage(src, file.Filename)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid image: " + err.Error()})
	}
	a.ensureUniqueFilename(&img)

	if err := os.MkdirAll(a.Config.UploadsDir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(a.Config.UploadsDir, img.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return c.JSON(http.StatusCreated, img)
}

func (a *App) handleImageDelete(c echo.Context) error {
	filename := filepath.Base(c.Param("filename"))
	if filename == "" || filename == "." {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Filename required"})
	}
	if err := os.Remove(filepath.Join(a.Config.UploadsDir, filename)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) handleImageList(c echo.Context) error {
	entries, err := os.ReadDir(a.Config.UploadsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return c.JSON(http.StatusOK, []Image{})
		}
		return err
	}
	images := make([]Image, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		images = append(images, Image{
			Filename: e.Name(),
			URL:      "/blog/" + e.Name(),
			Size:     info.Size(),
		})
	}
	return c.JSON(http.StatusOK, images)
}
