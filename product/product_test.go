package product

import (
	"encoding/binary"
	"math"
	"testing"
)

func template40Bytes(firstSurfaceScale uint8, firstSurfaceValue uint32, secondSurfaceScale uint8, secondSurfaceValue uint32) []byte {
	buf := make([]byte, 25)
	buf[0] = 1  // ParameterCategory
	buf[1] = 2  // ParameterNumber
	buf[2] = 3  // GeneratingProcess
	buf[3] = 4  // BackgroundProcess
	buf[4] = 5  // ForecastProcess
	binary.BigEndian.PutUint16(buf[5:7], 6) // HoursAfterCutoff
	buf[7] = 7                              // MinutesAfterCutoff
	buf[8] = 1                              // TimeRangeUnit
	binary.BigEndian.PutUint32(buf[9:13], 12) // ForecastTime
	buf[13] = 100                           // FirstSurfaceType
	buf[14] = firstSurfaceScale
	binary.BigEndian.PutUint32(buf[15:19], firstSurfaceValue)
	buf[19] = 101 // SecondSurfaceType
	buf[20] = secondSurfaceScale
	binary.BigEndian.PutUint32(buf[21:25], secondSurfaceValue)
	return buf
}

func TestParseTemplate40(t *testing.T) {
	buf := template40Bytes(1, 500, 0, 42)

	tmpl, err := ParseTemplate40(buf)
	if err != nil {
		t.Fatalf("ParseTemplate40 failed: %v", err)
	}
	if tmpl.ParameterCategory != 1 || tmpl.ParameterNumber != 2 {
		t.Errorf("unexpected parameter category/number: %+v", tmpl)
	}
	if tmpl.FirstSurfaceType != 100 || tmpl.SecondSurfaceType != 101 {
		t.Errorf("unexpected surface types: %+v", tmpl)
	}
	if tmpl.TemplateNumber() != 0 {
		t.Errorf("TemplateNumber() = %d, want 0", tmpl.TemplateNumber())
	}
	if tmpl.GetParameterCategory() != 1 || tmpl.GetParameterNumber() != 2 {
		t.Errorf("accessor mismatch: %+v", tmpl)
	}
	if tmpl.String() == "" {
		t.Error("String() should not be empty")
	}
}

func TestParseTemplate40TooShort(t *testing.T) {
	_, err := ParseTemplate40(make([]byte, 24))
	if err == nil {
		t.Error("expected error for undersized Template 4.0 payload")
	}
}

func TestTemplate40ScaledValues(t *testing.T) {
	buf := template40Bytes(1, 500, 0, 42)
	tmpl, err := ParseTemplate40(buf)
	if err != nil {
		t.Fatalf("ParseTemplate40 failed: %v", err)
	}

	if got := tmpl.FirstSurfaceValueScaled(); math.Abs(got-50) > 1e-9 {
		t.Errorf("FirstSurfaceValueScaled() = %v, want 50", got)
	}
	if got := tmpl.SecondSurfaceValueScaled(); got != 42 {
		t.Errorf("SecondSurfaceValueScaled() = %v, want 42", got)
	}
}

func TestTemplate40ScaledValueMissingSentinel(t *testing.T) {
	buf := template40Bytes(0xFF, 0xFFFFFFFF, 0xFF, 0xFFFFFFFF)
	tmpl, err := ParseTemplate40(buf)
	if err != nil {
		t.Fatalf("ParseTemplate40 failed: %v", err)
	}

	if got := tmpl.FirstSurfaceValueScaled(); !math.IsNaN(got) {
		t.Errorf("FirstSurfaceValueScaled() = %v, want NaN", got)
	}
	if got := tmpl.SecondSurfaceValueScaled(); !math.IsNaN(got) {
		t.Errorf("SecondSurfaceValueScaled() = %v, want NaN", got)
	}
}

func TestTemplate40ScaledValueNegativeScaleFactor(t *testing.T) {
	// 0x81 is GRIB sign-magnitude for -1 (sign bit set, magnitude 1): a
	// scale factor of -1 means multiply by 10, not divide.
	buf := template40Bytes(0x81, 500, 0, 42)
	tmpl, err := ParseTemplate40(buf)
	if err != nil {
		t.Fatalf("ParseTemplate40 failed: %v", err)
	}

	if got := tmpl.FirstSurfaceValueScaled(); math.Abs(got-5000) > 1e-9 {
		t.Errorf("FirstSurfaceValueScaled() = %v, want 5000", got)
	}
}

func TestTemplate40ScaledValueSingleFieldSentinel(t *testing.T) {
	// Only the scaled value carries the all-ones sentinel; the scale
	// factor is an ordinary value. spec.md says either field's sentinel is
	// independently sufficient to mark the surface as not set.
	buf := template40Bytes(0, 0xFFFFFFFF, 0xFF, 7)
	tmpl, err := ParseTemplate40(buf)
	if err != nil {
		t.Fatalf("ParseTemplate40 failed: %v", err)
	}

	if got := tmpl.FirstSurfaceValueScaled(); !math.IsNaN(got) {
		t.Errorf("FirstSurfaceValueScaled() = %v, want NaN (value-only sentinel)", got)
	}
	if got := tmpl.SecondSurfaceValueScaled(); !math.IsNaN(got) {
		t.Errorf("SecondSurfaceValueScaled() = %v, want NaN (scale-factor-only sentinel)", got)
	}
}

func template48Bytes(numTimeRanges uint8) []byte {
	buf := make([]byte, 37+int(numTimeRanges)*12)
	buf[0] = 1 // ParameterCategory
	buf[1] = 2 // ParameterNumber
	buf[13] = 100
	buf[14] = 0
	binary.BigEndian.PutUint32(buf[15:19], 500)
	buf[19] = 101
	buf[20] = 0
	binary.BigEndian.PutUint32(buf[21:25], 42)
	binary.BigEndian.PutUint16(buf[25:27], 2026) // EndYear
	buf[27] = 7                                  // EndMonth
	buf[28] = 31                                 // EndDay
	buf[32] = numTimeRanges
	binary.BigEndian.PutUint32(buf[33:37], 0) // NumberMissingInStatProcess
	for i := 0; i < int(numTimeRanges); i++ {
		off := 37 + i*12
		buf[off] = 1 // StatisticalProcess
		buf[off+1] = 2
		buf[off+2] = 1
		binary.BigEndian.PutUint32(buf[off+3:off+7], 24)
		buf[off+7] = 1
		binary.BigEndian.PutUint32(buf[off+8:off+12], 6)
	}
	return buf
}

func TestParseTemplate48(t *testing.T) {
	buf := template48Bytes(2)

	tmpl, err := ParseTemplate48(buf)
	if err != nil {
		t.Fatalf("ParseTemplate48 failed: %v", err)
	}
	if tmpl.TemplateNumber() != 8 {
		t.Errorf("TemplateNumber() = %d, want 8", tmpl.TemplateNumber())
	}
	if tmpl.GetParameterCategory() != 1 || tmpl.GetParameterNumber() != 2 {
		t.Errorf("accessor mismatch: %+v", tmpl)
	}
	if tmpl.NumberOfTimeRanges != 2 || len(tmpl.TimeRanges) != 2 {
		t.Fatalf("expected 2 time ranges, got %d (%d parsed)", tmpl.NumberOfTimeRanges, len(tmpl.TimeRanges))
	}
	if tmpl.TimeRanges[0].TimeRangeLength != 24 || tmpl.TimeRanges[1].TimeIncrement != 6 {
		t.Errorf("time range fields not parsed correctly: %+v", tmpl.TimeRanges)
	}
	if tmpl.String() == "" {
		t.Error("String() should not be empty")
	}
}

func TestParseTemplate48TooShortForBase(t *testing.T) {
	_, err := ParseTemplate48(make([]byte, 36))
	if err == nil {
		t.Error("expected error for undersized Template 4.8 base payload")
	}
}

func TestParseTemplate48TooShortForTimeRanges(t *testing.T) {
	buf := template48Bytes(1)
	buf = buf[:len(buf)-1] // truncate the last time-range entry by one byte

	_, err := ParseTemplate48(buf)
	if err == nil {
		t.Error("expected error when declared time ranges exceed available bytes")
	}
}

func TestTemplate48ScaledValueMissingSentinel(t *testing.T) {
	buf := template48Bytes(0)
	buf[14] = 0xFF
	binary.BigEndian.PutUint32(buf[15:19], 0xFFFFFFFF)

	tmpl, err := ParseTemplate48(buf)
	if err != nil {
		t.Fatalf("ParseTemplate48 failed: %v", err)
	}
	if got := tmpl.FirstSurfaceValueScaled(); !math.IsNaN(got) {
		t.Errorf("FirstSurfaceValueScaled() = %v, want NaN", got)
	}
}

func TestProductInterfaceDispatch(t *testing.T) {
	t40, err := ParseTemplate40(template40Bytes(0, 1, 0, 1))
	if err != nil {
		t.Fatalf("ParseTemplate40 failed: %v", err)
	}
	t48, err := ParseTemplate48(template48Bytes(0))
	if err != nil {
		t.Fatalf("ParseTemplate48 failed: %v", err)
	}

	var products []Product = []Product{t40, t48}
	wantTemplateNumbers := []int{0, 8}
	for i, p := range products {
		if p.TemplateNumber() != wantTemplateNumbers[i] {
			t.Errorf("product %d: TemplateNumber() = %d, want %d", i, p.TemplateNumber(), wantTemplateNumbers[i])
		}
		if p.String() == "" {
			t.Errorf("product %d: String() should not be empty", i)
		}
	}
}
