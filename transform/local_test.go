package transform

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImageJPEG(t *testing.T) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 5), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func TestLocalTransformAllStyles(t *testing.T) {
	g := NewLocalGateway()
	src := testImageJPEG(t)

	for _, style := range []string{"candy", "mosaic", "rain_princess", "udnie"} {
		t.Run(style, func(t *testing.T) {
			out, err := g.Transform(context.Background(), src, style)
			require.NoError(t, err)
			require.NotEmpty(t, out)

			decoded, err := imaging.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, 64, decoded.Bounds().Dx())
			assert.Equal(t, 48, decoded.Bounds().Dy())
		})
	}
}

func TestLocalTransformDeterministic(t *testing.T) {
	g := NewLocalGateway()
	src := testImageJPEG(t)

	first, err := g.Transform(context.Background(), src, "mosaic")
	require.NoError(t, err)
	second, err := g.Transform(context.Background(), src, "mosaic")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLocalTransformUnknownStyle(t *testing.T) {
	g := NewLocalGateway()

	_, err := g.Transform(context.Background(), testImageJPEG(t), "vaporwave")
	require.Error(t, err)

	var terr *Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "vaporwave", terr.Style)
}

func TestLocalTransformBadImage(t *testing.T) {
	g := NewLocalGateway()

	_, err := g.Transform(context.Background(), []byte("not an image"), "candy")
	require.Error(t, err)

	var terr *Error
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "undecodable image", terr.Reason)
}
