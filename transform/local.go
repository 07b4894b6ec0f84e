package transform

import (
	"bytes"
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"

	"github.com/okunev/stylebot/core/logger"
)

type filterFunc func(image.Image) *image.NRGBA

// localGateway applies deterministic pixel filters, one pipeline per
// style id. No network involved.
type localGateway struct {
	filters map[string]filterFunc
}

// NewLocalGateway builds the offline gateway with the built-in pipelines.
func NewLocalGateway() Gateway {
	return &localGateway{filters: map[string]filterFunc{
		"candy":         candyFilter,
		"mosaic":        mosaicFilter,
		"rain_princess": rainPrincessFilter,
		"udnie":         udnieFilter,
	}}
}

func (g *localGateway) Transform(ctx context.Context, img []byte, style string) ([]byte, error) {
	start := time.Now()

	filter, ok := g.filters[style]
	if !ok {
		return nil, &Error{Style: style, Reason: "no local filter for style"}
	}

	src, err := imaging.Decode(bytes.NewReader(img), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &Error{Style: style, Reason: "undecodable image", Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, &Error{Style: style, Err: err}
	}

	out := filter(src)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, &Error{Style: style, Err: err}
	}

	logger.Debug(ctx, "gateway", "transform.done",
		slog.String("style", style),
		slog.String("mode", "local"),
		slog.Int("bytes", buf.Len()),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	)
	return buf.Bytes(), nil
}

func candyFilter(src image.Image) *image.NRGBA {
	out := imaging.AdjustSaturation(src, 60)
	out = imaging.AdjustContrast(out, 15)
	return imaging.AdjustGamma(out, 1.1)
}

// mosaicFilter pixelates by bouncing through a small intermediate frame.
func mosaicFilter(src image.Image) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	cellW, cellH := w/24, h/24
	if cellW < 1 {
		cellW = 1
	}
	if cellH < 1 {
		cellH = 1
	}
	small := imaging.Resize(src, cellW, cellH, imaging.Box)
	return imaging.Resize(small, w, h, imaging.NearestNeighbor)
}

func rainPrincessFilter(src image.Image) *image.NRGBA {
	out := imaging.Blur(src, 2.5)
	out = imaging.AdjustSaturation(out, 30)
	return imaging.AdjustBrightness(out, -5)
}

func udnieFilter(src image.Image) *image.NRGBA {
	out := imaging.Grayscale(src)
	out = imaging.AdjustContrast(out, 30)
	return imaging.Sharpen(out, 1.5)
}
