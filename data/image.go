package data

import (
	"fmt"

	"github.com/squallwx/grib2/internal"
)

// ImageTemplate is the common preamble shared by the image-codec Data
// Representation Templates (5.40 JPEG2000, 5.41 PNG, 5.42 CCSDS): a simple-
// packing-shaped scaling preamble followed by a codec-specific type byte,
// with the encoded image bytes following in Section 7.
type ImageTemplate struct {
	templateNumber     int
	ReferenceValue     float32
	BinaryScaleFactor  int16
	DecimalScaleFactor int16
	NumBitsPerValue    uint8
	OriginalFieldType  uint8
	CompressionType    uint8 // Template 5.40 only: JPEG2000 compression type (Table 5.40)
	CompressionRatio   uint8 // Template 5.40 only: target compression ratio
	NumberOfDataValues uint32
}

// parseImagePreamble parses the 10-byte simple-packing-shaped preamble
// shared by templates 5.40/5.41/5.42.
func parseImagePreamble(templateNumber int, numDataValues uint32, data []byte) (*ImageTemplate, error) {
	if len(data) < 10 {
		return nil, fmt.Errorf("template 5.%d requires at least 10 bytes, got %d", templateNumber, len(data))
	}
	r := internal.NewReader(data)
	referenceValue, _ := r.Float32()
	binaryScaleFactor, _ := r.Int16()
	decimalScaleFactor, _ := r.Int16()
	bitsPerValue, _ := r.Uint8()
	originalFieldType, _ := r.Uint8()

	t := &ImageTemplate{
		templateNumber:     templateNumber,
		ReferenceValue:     referenceValue,
		BinaryScaleFactor:  binaryScaleFactor,
		DecimalScaleFactor: decimalScaleFactor,
		NumBitsPerValue:    bitsPerValue,
		OriginalFieldType:  originalFieldType,
		NumberOfDataValues: numDataValues,
	}

	if templateNumber == 40 && len(data) >= 12 {
		compressionType, _ := r.Uint8()
		compressionRatio, _ := r.Uint8()
		t.CompressionType = compressionType
		t.CompressionRatio = compressionRatio
	}

	return t, nil
}

// ParseTemplate40Image parses Data Representation Template 5.40: JPEG2000
// compression.
func ParseTemplate40Image(numDataValues uint32, data []byte) (*ImageTemplate, error) {
	return parseImagePreamble(40, numDataValues, data)
}

// ParseTemplate41Image parses Data Representation Template 5.41: PNG
// compression.
func ParseTemplate41Image(numDataValues uint32, data []byte) (*ImageTemplate, error) {
	return parseImagePreamble(41, numDataValues, data)
}

// ParseTemplate42Image parses Data Representation Template 5.42: CCSDS
// (AEC) compression. The preamble is parsed for inspection, but no pure-Go
// CCSDS decoder is wired in; decoding this template returns NotSupported.
func ParseTemplate42Image(numDataValues uint32, data []byte) (*ImageTemplate, error) {
	return parseImagePreamble(42, numDataValues, data)
}

// TemplateNumber returns 40, 41, or 42 depending on which codec this
// preamble was parsed as.
func (t *ImageTemplate) TemplateNumber() int { return t.templateNumber }

// NumDataValues returns the number of data values.
func (t *ImageTemplate) NumDataValues() uint32 { return t.NumberOfDataValues }

// BitsPerValue returns the number of bits per value used by the original
// (pre-compression) field.
func (t *ImageTemplate) BitsPerValue() uint8 { return t.NumBitsPerValue }

// String returns a human-readable description.
func (t *ImageTemplate) String() string {
	return fmt.Sprintf("Template 5.%d: Image Codec, %d values, R=%g, E=%d, D=%d",
		t.templateNumber, t.NumberOfDataValues, t.ReferenceValue, t.BinaryScaleFactor, t.DecimalScaleFactor)
}
