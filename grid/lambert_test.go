package grid

import (
	"errors"
	"testing"
)

func TestLambertConformalGridCoordinatesNotSupported(t *testing.T) {
	// HRRR CONUS Lambert Conformal grid: coordinate derivation for conic
	// projections is an external collaborator (spec.md §1), so Coordinates
	// must fail rather than silently return an empty/zero result.
	g := &LambertConformalGrid{
		Nx:           1799,
		Ny:           1059,
		La1:          21138123,
		Lo1:          237280472,
		LoV:          262500000,
		Latin1:       38500000,
		Latin2:       38500000,
		Dx:           3000000,
		Dy:           3000000,
		ScanningMode: 0x40,
	}

	lats, lons, err := g.Coordinates()
	if err == nil {
		t.Fatal("expected Coordinates() to fail for a Lambert Conformal grid")
	}
	var nse *NotSupportedError
	if !errors.As(err, &nse) {
		t.Errorf("expected *NotSupportedError, got %T: %v", err, err)
	}
	if lats != nil || lons != nil {
		t.Errorf("expected nil lats/lons on error, got %v / %v", lats, lons)
	}
}

func TestLambertConformalGridNumPoints(t *testing.T) {
	g := &LambertConformalGrid{
		Nx: 184,
		Ny: 123,
	}

	expected := 184 * 123
	if g.NumPoints() != expected {
		t.Errorf("NumPoints() = %d, want %d", g.NumPoints(), expected)
	}
}

func TestLambertConformalGridTemplateNumber(t *testing.T) {
	g := &LambertConformalGrid{}
	if g.TemplateNumber() != 30 {
		t.Errorf("TemplateNumber() = %d, want 30", g.TemplateNumber())
	}
}

func TestLambertConformalGridString(t *testing.T) {
	g := &LambertConformalGrid{
		Nx:  184,
		Ny:  123,
		La1: 40409178,
		Lo1: 263379162,
		LoV: 262500000,
	}
	s := g.String()
	if s == "" {
		t.Fatal("expected non-empty String()")
	}
}

func TestParseLambertConformalGridTooShort(t *testing.T) {
	_, err := ParseLambertConformalGrid(make([]byte, 10))
	if err == nil {
		t.Fatal("expected error for short template 3.30 payload")
	}
}

func TestParseLambertConformalGrid(t *testing.T) {
	// Build a 69-byte template 3.30 payload with known offsets (template
	// data starts at offset 14 within the payload per ParseLambertConformalGrid).
	data := make([]byte, 69)
	// shape-of-earth family occupies offset 0..13 (unused here)
	w := func(off int, v uint32) {
		data[off] = byte(v >> 24)
		data[off+1] = byte(v >> 16)
		data[off+2] = byte(v >> 8)
		data[off+3] = byte(v)
	}
	w(14, 184)        // Nx
	w(18, 123)        // Ny
	w(22, 40409178)   // La1
	w(26, 263379162)  // Lo1
	data[30] = 0x48   // resolution flags
	w(31, 38500000)   // LaD
	w(35, 262500000)  // LoV
	w(39, 3000000)    // Dx
	w(43, 3000000)    // Dy
	data[47] = 0      // projection center
	data[48] = 0x40   // scanning mode
	w(49, 38500000)   // Latin1
	w(53, 38500000)   // Latin2
	w(57, 0)          // LatSouthPole
	w(61, 0)          // LonSouthPole

	g, err := ParseLambertConformalGrid(data)
	if err != nil {
		t.Fatalf("ParseLambertConformalGrid failed: %v", err)
	}
	if g.Nx != 184 || g.Ny != 123 {
		t.Errorf("Nx/Ny = %d/%d, want 184/123", g.Nx, g.Ny)
	}
	if g.ScanningMode != 0x40 {
		t.Errorf("ScanningMode = %#x, want 0x40", g.ScanningMode)
	}
}
