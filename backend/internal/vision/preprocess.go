// Package vision classifies food photos. It only prepares the input tensor
// and ranks the scores; inference is delegated to a model server or an LLM.
package vision

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	apperrors "recipe-graph/backend/pkg/errors"
)

// Tensor is a batch of one RGB image, indexed [batch][y][x][channel]
type Tensor [][][][]float32

// Decode reads a JPEG, PNG, GIF or WebP image
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, apperrors.NewInvalidArgument("image", fmt.Sprintf("cannot decode: %v", err))
	}
	return img, nil
}

// Resize scales img to a size x size square with bilinear interpolation
func Resize(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Preprocess resizes img to size x size, scales channels to [0,1] and adds
// the batch dimension
func Preprocess(img image.Image, size int) Tensor {
	rgba := Resize(img, size)

	rows := make([][][]float32, size)
	for y := 0; y < size; y++ {
		row := make([][]float32, size)
		for x := 0; x < size; x++ {
			offset := rgba.PixOffset(x, y)
			row[x] = []float32{
				float32(rgba.Pix[offset]) / 255,
				float32(rgba.Pix[offset+1]) / 255,
				float32(rgba.Pix[offset+2]) / 255,
			}
		}
		rows[y] = row
	}
	return Tensor{rows}
}
