package reviewengine

import (
	"bytes"
	"errors"
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

	"github.com/eringen/reviewengine/content"
)

const (
	maxImageWidth = 1200
	jpegQuality   = 82
	maxUploadSize = 10 << 20 // 10MB
)

// UploadedImage describes a stored image, ready to be used as a cover or
// avatar URL.
type UploadedImage struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int    `json:"size"`
}

// processImage decodes src, scales it down to maxImageWidth when wider and
// re-encodes it as JPEG.
func processImage(src io.Reader) (width, height int, data []byte, err error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := max(h*maxImageWidth/w, 1)
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = maxImageWidth, newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return 0, 0, nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return w, h, buf.Bytes(), nil
}

// imageBaseName slugifies a client file name without its extension.
func imageBaseName(name string) string {
	base := content.Slugify(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	if base == "" {
		base = "image"
	}
	return base
}

// writeUnique writes data as <base>.jpg in dir, appending -2, -3, ... until
// the name is free. O_EXCL makes concurrent uploads pick distinct names.
func writeUnique(dir, base string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	name := base + ".jpg"
	for n := 2; ; n++ {
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			name = fmt.Sprintf("%s-%d.jpg", base, n)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create image: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", fmt.Errorf("write image: %w", err)
		}
		return name, f.Close()
	}
}

func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusBadRequest, "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	w, h, data, err := processImage(io.LimitReader(src, maxUploadSize))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid image: "+err.Error())
	}

	name, err := writeUnique(a.Config.UploadDir, imageBaseName(file.Filename), data)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, UploadedImage{
		URL:      "/uploads/" + name,
		Filename: name,
		Width:    w,
		Height:   h,
		Size:     len(data),
	})
}
