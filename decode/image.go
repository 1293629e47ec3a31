package decode

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"iter"

	"github.com/mrjoshuak/go-jpeg2000"

	"github.com/squallwx/grib2/data"
)

// Image decodes the image-codec Data Representation Templates (5.40
// JPEG2000, 5.41 PNG, 5.42 CCSDS). Section 7 holds a single-plane encoded
// image whose pixel values, once decoded, are run back through the same
// (R + X*2^E)/10^D simple-packing scaling formula every other template
// uses — only the bit-unpacking step differs.
func Image(t *data.ImageTemplate, packed []byte) (iter.Seq[float32], error) {
	switch t.TemplateNumber() {
	case 40:
		return decodeJPEG2000(t, packed)
	case 41:
		return decodePNG(t, packed)
	case 42:
		return nil, &NotSupportedError{Codec: "ccsds", Detail: "no CCSDS/AEC decoder is available"}
	default:
		return nil, fmt.Errorf("image decode: unexpected template 5.%d", t.TemplateNumber())
	}
}

func decodeJPEG2000(t *data.ImageTemplate, packed []byte) (iter.Seq[float32], error) {
	img, err := jpeg2000.Decode(bytes.NewReader(packed))
	if err != nil {
		return nil, fmt.Errorf("jpeg2000 decode: %w", err)
	}
	// Multi-component (color) JPEG2000 streams are not supported: only a
	// single grayscale plane maps onto the simple-packing reconstruction.
	switch img.(type) {
	case *image.Gray, *image.Gray16:
	default:
		return nil, &NotSupportedError{Codec: "jpeg2000", Detail: "multi-component (numcomps > 1) streams are not supported"}
	}
	bounds := img.Bounds()
	if bounds.Dx()*bounds.Dy() == 0 {
		return nil, fmt.Errorf("jpeg2000 decode: empty image")
	}
	_, is16 := img.(*image.Gray16)

	return func(yield func(float32) bool) {
		n := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				if uint32(n) >= t.NumberOfDataValues {
					return
				}
				gray, _, _, _ := img.At(x, y).RGBA()
				if !is16 {
					gray >>= 8
				}
				v := applyScaling(t.ReferenceValue, t.BinaryScaleFactor, t.DecimalScaleFactor, gray)
				if !yield(v) {
					return
				}
				n++
			}
		}
	}, nil
}

func decodePNG(t *data.ImageTemplate, packed []byte) (iter.Seq[float32], error) {
	img, err := png.Decode(bytes.NewReader(packed))
	if err != nil {
		return nil, fmt.Errorf("png decode: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx()*bounds.Dy() == 0 {
		return nil, fmt.Errorf("png decode: empty image")
	}
	_, is16 := img.(*image.Gray16)

	return func(yield func(float32) bool) {
		n := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				if uint32(n) >= t.NumberOfDataValues {
					return
				}
				gray, _, _, _ := img.At(x, y).RGBA()
				if !is16 {
					gray >>= 8
				}
				v := applyScaling(t.ReferenceValue, t.BinaryScaleFactor, t.DecimalScaleFactor, gray)
				if !yield(v) {
					return
				}
				n++
			}
		}
	}, nil
}

// NotSupportedError reports a Data Representation Template, or a variant of
// one, that this module recognizes but cannot decode: Template 5.42 (CCSDS),
// multi-component JPEG2000 streams, and complex-packing parameters outside
// the supported set (group splitting method, missing value management,
// spatial differencing order).
type NotSupportedError struct {
	Codec  string
	Detail string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("decode: %s not supported: %s", e.Codec, e.Detail)
}
