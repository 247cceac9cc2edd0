package media

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"

	_ "image/gif"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrNotImage = errors.New("not a decodable image")

type Transform struct {
	MaxWidth    int
	MaxHeight   int
	JPEGQuality int
}

// Apply 等比缩放到 MaxWidth x MaxHeight 以内并重新编码
// png 保持 png（保留透明通道），其余统一为 jpeg
func (t Transform) Apply(data []byte) (out []byte, contentType, ext string, err error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", "", ErrNotImage
	}

	img := src
	b := src.Bounds()
	if w, h := fit(b.Dx(), b.Dy(), t.MaxWidth, t.MaxHeight); w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if format == "png" {
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, "", "", err
		}
		return buf.Bytes(), "image/png", ".png", nil
	}
	q := t.JPEGQuality
	if q <= 0 || q > 100 {
		q = jpeg.DefaultQuality
	}
	if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: q}); err != nil {
		return nil, "", "", err
	}
	return buf.Bytes(), "image/jpeg", ".jpg", nil
}

// fit 只缩小不放大
func fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	if maxW <= 0 {
		maxW = w
	}
	if maxH <= 0 {
		maxH = h
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw, nh := int(float64(w)*scale+0.5), int(float64(h)*scale+0.5)
	return max(nw, 1), max(nh, 1)
}

// flatten jpeg 无透明通道，铺白底
func flatten(img image.Image) image.Image {
	if _, ok := img.(*image.YCbCr); ok {
		return img
	}
	dst := image.NewRGBA(img.Bounds())
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Over)
	return dst
}
