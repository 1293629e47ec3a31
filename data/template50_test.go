package data

import (
	"math"
	"testing"
)

// signMagnitude16 encodes v as GRIB2's 16-bit sign-magnitude integer: bit 15
// is the sign, bits 0-14 the magnitude.
func signMagnitude16(v int16) [2]byte {
	var u uint16
	if v < 0 {
		u = 0x8000 | uint16(-v)
	} else {
		u = uint16(v)
	}
	return [2]byte{byte(u >> 8), byte(u)}
}

func template50Bytes(reference float32, binaryScale, decimalScale int16, bitsPerValue, originalFieldType uint8) []byte {
	buf := make([]byte, 10)
	bits := math.Float32bits(reference)
	buf[0] = byte(bits >> 24)
	buf[1] = byte(bits >> 16)
	buf[2] = byte(bits >> 8)
	buf[3] = byte(bits)
	bs := signMagnitude16(binaryScale)
	buf[4], buf[5] = bs[0], bs[1]
	ds := signMagnitude16(decimalScale)
	buf[6], buf[7] = ds[0], ds[1]
	buf[8] = bitsPerValue
	buf[9] = originalFieldType
	return buf
}

func TestParseTemplate50(t *testing.T) {
	buf := template50Bytes(1.5, -26, 3, 16, 0)

	tmpl, err := ParseTemplate50(100, buf)
	if err != nil {
		t.Fatalf("ParseTemplate50 failed: %v", err)
	}
	if tmpl.ReferenceValue != 1.5 {
		t.Errorf("ReferenceValue = %v, want 1.5", tmpl.ReferenceValue)
	}
	if tmpl.BinaryScaleFactor != -26 {
		t.Errorf("BinaryScaleFactor = %d, want -26", tmpl.BinaryScaleFactor)
	}
	if tmpl.DecimalScaleFactor != 3 {
		t.Errorf("DecimalScaleFactor = %d, want 3", tmpl.DecimalScaleFactor)
	}
	if tmpl.NumBitsPerValue != 16 {
		t.Errorf("NumBitsPerValue = %d, want 16", tmpl.NumBitsPerValue)
	}
	if tmpl.NumberOfDataValues != 100 {
		t.Errorf("NumberOfDataValues = %d, want 100", tmpl.NumberOfDataValues)
	}
	if tmpl.TemplateNumber() != 0 {
		t.Errorf("TemplateNumber() = %d, want 0", tmpl.TemplateNumber())
	}
	if tmpl.NumDataValues() != 100 {
		t.Errorf("NumDataValues() = %d, want 100", tmpl.NumDataValues())
	}
	if tmpl.BitsPerValue() != 16 {
		t.Errorf("BitsPerValue() = %d, want 16", tmpl.BitsPerValue())
	}
	if tmpl.String() == "" {
		t.Error("String() should not be empty")
	}
}

func TestParseTemplate50NegativeDecimalScale(t *testing.T) {
	buf := template50Bytes(0, 0, -2, 8, 0)

	tmpl, err := ParseTemplate50(1, buf)
	if err != nil {
		t.Fatalf("ParseTemplate50 failed: %v", err)
	}
	if tmpl.DecimalScaleFactor != -2 {
		t.Errorf("DecimalScaleFactor = %d, want -2", tmpl.DecimalScaleFactor)
	}
}

func TestParseTemplate50TooShort(t *testing.T) {
	_, err := ParseTemplate50(1, make([]byte, 9))
	if err == nil {
		t.Error("expected error for undersized Template 5.0 payload")
	}
}
