package data

import (
	"encoding/binary"
	"math"
	"testing"
)

func imagePreambleBytes(bitsPerValue uint8, withCompression bool) []byte {
	n := 10
	if withCompression {
		n = 12
	}
	buf := make([]byte, n)
	binary.BigEndian.PutUint32(buf[0:4], math.Float32bits(0))
	bs := signMagnitude16(0)
	buf[4], buf[5] = bs[0], bs[1]
	ds := signMagnitude16(0)
	buf[6], buf[7] = ds[0], ds[1]
	buf[8] = bitsPerValue
	buf[9] = 0
	if withCompression {
		buf[10] = 1  // CompressionType
		buf[11] = 50 // CompressionRatio
	}
	return buf
}

func TestParseTemplate40ImageWithCompressionFields(t *testing.T) {
	buf := imagePreambleBytes(8, true)

	tmpl, err := ParseTemplate40Image(900, buf)
	if err != nil {
		t.Fatalf("ParseTemplate40Image failed: %v", err)
	}
	if tmpl.TemplateNumber() != 40 {
		t.Errorf("TemplateNumber() = %d, want 40", tmpl.TemplateNumber())
	}
	if tmpl.CompressionType != 1 || tmpl.CompressionRatio != 50 {
		t.Errorf("compression fields not parsed: %+v", tmpl)
	}
	if tmpl.NumDataValues() != 900 {
		t.Errorf("NumDataValues() = %d, want 900", tmpl.NumDataValues())
	}
}

func TestParseTemplate40ImageWithoutCompressionFields(t *testing.T) {
	// Only the 10-byte base preamble: compression fields stay zero-valued
	// rather than being read out of bounds.
	buf := imagePreambleBytes(8, false)

	tmpl, err := ParseTemplate40Image(1, buf)
	if err != nil {
		t.Fatalf("ParseTemplate40Image failed: %v", err)
	}
	if tmpl.CompressionType != 0 || tmpl.CompressionRatio != 0 {
		t.Errorf("expected zero-valued compression fields, got %+v", tmpl)
	}
}

func TestParseTemplate41Image(t *testing.T) {
	buf := imagePreambleBytes(8, false)

	tmpl, err := ParseTemplate41Image(4, buf)
	if err != nil {
		t.Fatalf("ParseTemplate41Image failed: %v", err)
	}
	if tmpl.TemplateNumber() != 41 {
		t.Errorf("TemplateNumber() = %d, want 41", tmpl.TemplateNumber())
	}
	if tmpl.BitsPerValue() != 8 {
		t.Errorf("BitsPerValue() = %d, want 8", tmpl.BitsPerValue())
	}
	if tmpl.String() == "" {
		t.Error("String() should not be empty")
	}
}

func TestParseTemplate42Image(t *testing.T) {
	buf := imagePreambleBytes(8, false)

	tmpl, err := ParseTemplate42Image(4, buf)
	if err != nil {
		t.Fatalf("ParseTemplate42Image failed: %v", err)
	}
	if tmpl.TemplateNumber() != 42 {
		t.Errorf("TemplateNumber() = %d, want 42", tmpl.TemplateNumber())
	}
}

func TestParseImagePreambleTooShort(t *testing.T) {
	_, err := ParseTemplate41Image(1, make([]byte, 9))
	if err == nil {
		t.Error("expected error for undersized image preamble")
	}
}
