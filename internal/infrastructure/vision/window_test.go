package vision

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWindow_IdentityIsPixelIdentical(t *testing.T) {
	src := gradientImage(32, 4)

	out := Window(src, 1.0, 1.0)
	require.Equal(t, src.Pix, out.Pix)
	require.NotSame(t, src, out)
}

func TestWindow_DoesNotMutateSource(t *testing.T) {
	src := gradientImage(32, 4)
	before := append([]uint8(nil), src.Pix...)

	_ = Window(src, 2.5, 1.7)
	require.Equal(t, before, src.Pix)
}

func TestWindow_Brightness(t *testing.T) {
	src := solidImage(2, 2, color.NRGBA{R: 100, G: 50, B: 200, A: 255})

	out := Window(src, 1.0, 1.5)
	require.Equal(t, color.NRGBA{R: 150, G: 75, B: 255, A: 255}, out.NRGBAAt(0, 0))

	out = Window(src, 1.0, 0.5)
	require.Equal(t, color.NRGBA{R: 50, G: 25, B: 100, A: 255}, out.NRGBAAt(1, 1))
}

func TestWindow_ContrastAroundMean(t *testing.T) {
	// половина пикселей 100, половина 200: средняя яркость 150
	src := solidImage(2, 1, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 200, B: 200, A: 255})

	out := Window(src, 2.0, 1.0)
	require.Equal(t, uint8(50), out.NRGBAAt(0, 0).R)
	require.Equal(t, uint8(250), out.NRGBAAt(1, 0).R)

	out = Window(src, 0.5, 1.0)
	require.Equal(t, uint8(125), out.NRGBAAt(0, 0).R)
	require.Equal(t, uint8(175), out.NRGBAAt(1, 0).R)
}

func TestWindow_ContrastThenBrightness(t *testing.T) {
	src := solidImage(2, 1, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 200, B: 200, A: 255})

	// контраст 2: 50 и 250, затем яркость 0.5: 25 и 125
	out := Window(src, 2.0, 0.5)
	require.Equal(t, uint8(25), out.NRGBAAt(0, 0).R)
	require.Equal(t, uint8(125), out.NRGBAAt(1, 0).R)
}

func TestWindow_ClipsToByteRange(t *testing.T) {
	src := solidImage(1, 1, color.NRGBA{R: 240, G: 240, B: 240, A: 255})
	out := Window(src, 1.0, 3.0)
	require.Equal(t, uint8(255), out.NRGBAAt(0, 0).R)
}

func TestMeanLuma(t *testing.T) {
	require.Equal(t, 0, meanLuma(solidImage(3, 3, color.NRGBA{A: 255})))
	require.Equal(t, 255, meanLuma(solidImage(3, 3, color.NRGBA{R: 255, G: 255, B: 255, A: 255})))
	require.Equal(t, 76, meanLuma(solidImage(1, 1, color.NRGBA{R: 255, A: 255})))
}
