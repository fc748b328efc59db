// Package imaging normalizes uploaded images to WebP. Every asset the site
// serves goes through here once: decode, fit inside the profile's bounding
// box without enlarging, re-encode at the profile's quality.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"

	// register the webp decoder so webp originals can be re-encoded
	_ "golang.org/x/image/webp"
)

// Options controls a single conversion
type Options struct {
	Quality   int
	MaxWidth  int
	MaxHeight int
}

const (
	defaultQuality   = 85
	defaultMaxWidth  = 2000
	defaultMaxHeight = 2000
)

func (o Options) withDefaults() Options {
	if o.Quality <= 0 {
		o.Quality = defaultQuality
	}
	if o.MaxWidth <= 0 {
		o.MaxWidth = defaultMaxWidth
	}
	if o.MaxHeight <= 0 {
		o.MaxHeight = defaultMaxHeight
	}
	return o
}

// TranscodeError reports a failed decode or encode
type TranscodeError struct {
	Path string
	Err  error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcode %s: %v", e.Path, e.Err)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// ConvertToWebP converts the image at inputPath to WebP at outputPath.
// The original file is deleted after a successful conversion unless it is
// already a .webp or the same path, so this must be called at most once per
// source file.
func ConvertToWebP(inputPath, outputPath string, opts Options) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return &TranscodeError{Path: inputPath, Err: err}
	}

	if err := ConvertBufferToWebP(data, outputPath, opts); err != nil {
		return err
	}

	if inputPath != outputPath && !strings.HasSuffix(strings.ToLower(inputPath), ".webp") {
		if err := os.Remove(inputPath); err != nil {
			log.Warn().Err(err).Str("path", inputPath).Msg("failed to delete original after conversion")
		}
	}

	return nil
}

// ConvertBufferToWebP decodes buf, resizes it to fit within the bounding box
// (never upscaling), and writes a WebP file at outputPath. No output file is
// left behind when the conversion fails.
func ConvertBufferToWebP(buf []byte, outputPath string, opts Options) error {
	opts = opts.withDefaults()

	img, format, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return &TranscodeError{Path: outputPath, Err: fmt.Errorf("decode: %w", err)}
	}

	bounds := img.Bounds()
	if bounds.Dx() > opts.MaxWidth || bounds.Dy() > opts.MaxHeight {
		img = imaging.Fit(img, opts.MaxWidth, opts.MaxHeight, imaging.Lanczos)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return &TranscodeError{Path: outputPath, Err: fmt.Errorf("create output directory: %w", err)}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return &TranscodeError{Path: outputPath, Err: err}
	}

	if err := webp.Encode(out, img, &webp.Options{Quality: float32(opts.Quality)}); err != nil {
		out.Close()
		os.Remove(outputPath)
		return &TranscodeError{Path: outputPath, Err: fmt.Errorf("encode: %w", err)}
	}

	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return &TranscodeError{Path: outputPath, Err: err}
	}

	final := img.Bounds()
	log.Debug().
		Str("path", outputPath).
		Str("source_format", format).
		Int("width", final.Dx()).
		Int("height", final.Dy()).
		Int("quality", opts.Quality).
		Msg("image converted to webp")

	return nil
}
