package grid

import (
	"fmt"

	"github.com/squallwx/grib2/internal"
)

// LambertConformalGrid represents Grid Definition Template 3.30:
// Lambert Conformal projection.
//
// This projection is commonly used for regional models like HRRR and NAM.
type LambertConformalGrid struct {
	Nx               uint32 // Number of points along x-axis
	Ny               uint32 // Number of points along y-axis
	La1              int32  // Latitude of first grid point (micro-degrees)
	Lo1              int32  // Longitude of first grid point (micro-degrees)
	ResolutionFlags  uint8  // Resolution and component flags
	LaD              int32  // Latitude where Dx and Dy are specified (micro-degrees)
	LoV              int32  // Longitude of meridian parallel to y-axis (micro-degrees)
	Dx               uint32 // X-direction grid length (meters)
	Dy               uint32 // Y-direction grid length (meters)
	ProjectionCenter uint8  // Projection center flag
	ScanningMode     uint8  // Scanning mode flags
	Latin1           int32  // First latitude from pole at which secant cone cuts sphere (micro-degrees)
	Latin2           int32  // Second latitude from pole (micro-degrees)
	LatSouthPole     int32  // Latitude of southern pole (micro-degrees)
	LonSouthPole     int32  // Longitude of southern pole (micro-degrees)
}

// ParseLambertConformalGrid parses Grid Definition Template 3.30.
func ParseLambertConformalGrid(data []byte) (*LambertConformalGrid, error) {
	if len(data) < 69 {
		return nil, fmt.Errorf("template 3.30 requires at least 69 bytes, got %d", len(data))
	}

	r := internal.NewReader(data[14:]) // Skip to template-specific data

	nx, _ := r.Uint32()
	ny, _ := r.Uint32()
	la1, _ := r.Int32()
	lo1, _ := r.Int32()
	resFlags, _ := r.Uint8()
	laD, _ := r.Int32()
	loV, _ := r.Int32()
	dx, _ := r.Uint32()
	dy, _ := r.Uint32()
	projCenter, _ := r.Uint8()
	scanMode, _ := r.Uint8()
	latin1, _ := r.Int32()
	latin2, _ := r.Int32()
	latSP, _ := r.Int32()
	lonSP, _ := r.Int32()

	return &LambertConformalGrid{
		Nx:               nx,
		Ny:               ny,
		La1:              la1,
		Lo1:              lo1,
		ResolutionFlags:  resFlags,
		LaD:              laD,
		LoV:              loV,
		Dx:               dx,
		Dy:               dy,
		ProjectionCenter: projCenter,
		ScanningMode:     scanMode,
		Latin1:           latin1,
		Latin2:           latin2,
		LatSouthPole:     latSP,
		LonSouthPole:     lonSP,
	}, nil
}

// TemplateNumber returns 30 for Lambert Conformal.
func (g *LambertConformalGrid) TemplateNumber() int {
	return 30
}

// GridType returns "Lambert Conformal".
func (g *LambertConformalGrid) GridType() string {
	return "Lambert Conformal"
}

// NumPoints returns the total number of grid points.
func (g *LambertConformalGrid) NumPoints() int {
	return int(g.Nx * g.Ny)
}

// Coordinates is not implemented: deriving geographic coordinates for a
// conic projection requires the secant-cone inverse projection math (cone
// constant n, conformal latitude series, false-easting/northing handling),
// which is projection-specific numerical work beyond what this package
// takes on. Callers needing Lambert Conformal lat/lon should reproject
// using Nx/Ny/Dx/Dy/LoV/Latin1/Latin2 with a dedicated GIS library.
func (g *LambertConformalGrid) Coordinates() (lats, lons []float64, err error) {
	return nil, nil, &NotSupportedError{Projection: "Lambert Conformal (3.30)"}
}

// String returns a human-readable description.
func (g *LambertConformalGrid) String() string {
	return fmt.Sprintf("Lambert Conformal: %dx%d grid, La1=%.3f, Lo1=%.3f, LoV=%.3f",
		g.Nx, g.Ny,
		float64(g.La1)/1e6, float64(g.Lo1)/1e6, float64(g.LoV)/1e6)
}
