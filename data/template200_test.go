package data

import (
	"encoding/binary"
	"testing"
)

func template200Bytes(levels []uint16) []byte {
	buf := make([]byte, 7+len(levels)*2)
	buf[0] = 8 // NumBitsPerValue
	binary.BigEndian.PutUint16(buf[1:3], uint16(len(levels)-1)) // MaxLevelValue
	binary.BigEndian.PutUint16(buf[3:5], uint16(len(levels)))   // NumberOfLevels
	ds := signMagnitude16(1)
	buf[5], buf[6] = ds[0], ds[1]
	for i, lv := range levels {
		binary.BigEndian.PutUint16(buf[7+i*2:9+i*2], lv)
	}
	return buf
}

func TestParseTemplate200(t *testing.T) {
	levels := []uint16{0, 10, 20, 30}
	buf := template200Bytes(levels)

	tmpl, err := ParseTemplate200(500, buf)
	if err != nil {
		t.Fatalf("ParseTemplate200 failed: %v", err)
	}
	if tmpl.NumberOfLevels != 4 {
		t.Errorf("NumberOfLevels = %d, want 4", tmpl.NumberOfLevels)
	}
	if len(tmpl.LevelValues) != 4 || tmpl.LevelValues[2] != 20 {
		t.Errorf("LevelValues = %v, want [0 10 20 30]", tmpl.LevelValues)
	}
	if tmpl.DecimalScaleFactor != 1 {
		t.Errorf("DecimalScaleFactor = %d, want 1", tmpl.DecimalScaleFactor)
	}
	if tmpl.NumberOfDataValues != 500 {
		t.Errorf("NumberOfDataValues = %d, want 500", tmpl.NumberOfDataValues)
	}
	if tmpl.TemplateNumber() != 200 {
		t.Errorf("TemplateNumber() = %d, want 200", tmpl.TemplateNumber())
	}
	if tmpl.String() == "" {
		t.Error("String() should not be empty")
	}
}

func TestParseTemplate200TooShortForBase(t *testing.T) {
	_, err := ParseTemplate200(1, make([]byte, 6))
	if err == nil {
		t.Error("expected error for undersized Template 5.200 base payload")
	}
}

func TestParseTemplate200TooShortForLevels(t *testing.T) {
	buf := template200Bytes([]uint16{0, 10, 20})
	buf = buf[:len(buf)-1]

	_, err := ParseTemplate200(1, buf)
	if err == nil {
		t.Error("expected error when declared levels exceed available bytes")
	}
}
