package grid

import (
	"fmt"
	"iter"

	"github.com/squallwx/grib2/internal"
)

// microdegree is the scaling unit GRIB2 Template 3.0 coordinates are
// stored in: signed integer degrees * 1e6.
const microdegree = 1e6

// LatLonGrid represents a GRIB2 Latitude/Longitude grid (Template 3.0).
//
// This is the most common grid type, consisting of a regular grid with
// constant spacing in latitude and longitude.
type LatLonGrid struct {
	Ni           uint32 // Number of points along a parallel (longitude)
	Nj           uint32 // Number of points along a meridian (latitude)
	La1          int32  // Latitude of first grid point (microdegrees)
	Lo1          int32  // Longitude of first grid point (microdegrees)
	ResFlags     uint8  // Resolution and component flags
	La2          int32  // Latitude of last grid point (microdegrees)
	Lo2          int32  // Longitude of last grid point (microdegrees)
	Di           uint32 // i direction increment (microdegrees)
	Dj           uint32 // j direction increment (microdegrees)
	ScanningMode uint8  // Scanning mode (Table 3.4)
}

// ParseLatLonGrid parses a Lat/Lon grid from template data (Template 3.0).
//
// The template data should be 72 bytes for Template 3.0.
func ParseLatLonGrid(data []byte) (*LatLonGrid, error) {
	if len(data) < 72 {
		return nil, fmt.Errorf("template 3.0 requires at least 72 bytes, got %d", len(data))
	}

	r := internal.NewReader(data)

	// Skip shape of earth (1 byte) and related parameters (15 bytes)
	r.Skip(16)

	// Read grid dimensions
	ni, _ := r.Uint32()
	nj, _ := r.Uint32()

	// Skip basic angle and subdivisions (8 bytes)
	r.Skip(8)

	// Read grid points
	la1, _ := r.Int32()
	lo1, _ := r.Int32()
	resFlags, _ := r.Uint8()
	la2, _ := r.Int32()
	lo2, _ := r.Int32()
	di, _ := r.Uint32()
	dj, _ := r.Uint32()
	scanningMode, _ := r.Uint8()

	return &LatLonGrid{
		Ni:           ni,
		Nj:           nj,
		La1:          la1,
		Lo1:          lo1,
		ResFlags:     resFlags,
		La2:          la2,
		Lo2:          lo2,
		Di:           di,
		Dj:           dj,
		ScanningMode: scanningMode,
	}, nil
}

// TemplateNumber returns 0 for Lat/Lon grids.
func (g *LatLonGrid) TemplateNumber() int {
	return 0
}

// NumPoints returns the total number of grid points.
func (g *LatLonGrid) NumPoints() int {
	return int(g.Ni * g.Nj)
}

// String returns a human-readable description of the grid.
func (g *LatLonGrid) String() string {
	return fmt.Sprintf("Lat/Lon grid: %d x %d points (%.4f°, %.4f°) to (%.4f°, %.4f°)",
		g.Ni, g.Nj,
		float64(g.La1)/microdegree, float64(g.Lo1)/microdegree,
		float64(g.La2)/microdegree, float64(g.Lo2)/microdegree)
}

// FirstGridPoint returns the latitude and longitude of the first grid point in degrees.
func (g *LatLonGrid) FirstGridPoint() (lat, lon float64) {
	return float64(g.La1) / microdegree, float64(g.Lo1) / microdegree
}

// LastGridPoint returns the latitude and longitude of the last grid point in degrees.
func (g *LatLonGrid) LastGridPoint() (lat, lon float64) {
	return float64(g.La2) / microdegree, float64(g.Lo2) / microdegree
}

// Increment returns the i and j direction increments in degrees.
func (g *LatLonGrid) Increment() (di, dj float64) {
	return float64(g.Di) / microdegree, float64(g.Dj) / microdegree
}

// ScanningFlags returns the scanning mode flags as individual booleans.
//
//   - iNegative: true if points scan in -i direction (east to west)
//   - jPositive: true if points scan in +j direction (south to north)
//   - consecutive: true if adjacent points in the array are consecutive in i
//     (row-major); false means adjacent points are consecutive in j (column-major)
//   - boustrophedon: true if successive rows (or columns) alternate scan direction
func (g *LatLonGrid) ScanningFlags() (iNegative, jPositive, consecutive, boustrophedon bool) {
	iNegative = (g.ScanningMode & 0x80) != 0
	jPositive = (g.ScanningMode & 0x40) != 0
	consecutive = (g.ScanningMode & 0x20) == 0
	boustrophedon = (g.ScanningMode & 0x10) != 0
	return
}

// LatLon is one grid point's coordinates, in degrees.
type LatLon struct {
	Lat float64
	Lon float64
}

// IJ returns the (i, j) grid-point indices in the exact order Section 7's
// packed values are stored in, honoring the row/column-major order bit and
// the row-to-row boustrophedon bit. Indices count from the first grid point,
// so the i and j direction bits do not change them; LatLons() applies those
// two bits when it builds its coordinate sequence over this index order.
func (g *LatLonGrid) IJ() iter.Seq2[int, int] {
	_, _, consecutive, boustrophedon := g.ScanningFlags()
	ni, nj := int(g.Ni), int(g.Nj)

	return func(yield func(int, int) bool) {
		// outer/inner model the two nested loop axes in storage order;
		// when consecutive is true the fast-varying axis is i, else j.
		outerCount, innerCount := nj, ni
		if !consecutive {
			outerCount, innerCount = ni, nj
		}

		for outer := 0; outer < outerCount; outer++ {
			reverse := boustrophedon && outer%2 == 1
			for inner := 0; inner < innerCount; inner++ {
				effInner := inner
				if reverse {
					effInner = innerCount - 1 - inner
				}

				var iIdx, jIdx int
				if consecutive {
					jIdx, iIdx = outer, effInner
				} else {
					iIdx, jIdx = outer, effInner
				}

				if !yield(iIdx, jIdx) {
					return
				}
			}
		}
	}
}

// LatLons returns a lazy sequence of every grid point's coordinates, in the
// exact order Section 7's packed values are stored in.
func (g *LatLonGrid) LatLons() iter.Seq[LatLon] {
	iNeg, jPos, _, _ := g.ScanningFlags()

	di := float64(g.Di) / microdegree
	dj := float64(g.Dj) / microdegree
	if iNeg {
		di = -di
	}
	if !jPos {
		dj = -dj
	}
	lat1 := float64(g.La1) / microdegree
	lon1 := float64(g.Lo1) / microdegree

	return func(yield func(LatLon) bool) {
		for iIdx, jIdx := range g.IJ() {
			pt := LatLon{
				Lat: lat1 + float64(jIdx)*dj,
				Lon: lon1 + float64(iIdx)*di,
			}
			if !yield(pt) {
				return
			}
		}
	}
}
