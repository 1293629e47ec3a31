package grib2

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/squallwx/grib2/grid"
	"github.com/squallwx/grib2/product"
	"github.com/squallwx/grib2/tables"
)

// GRIB2 represents a single meteorological field from a GRIB2 message.
//
// This is the main public type returned by the Read function. It contains
// all the information needed to work with GRIB2 data: values, coordinates,
// and metadata.
type GRIB2 struct {
	// Data values in grid scan order. Missing/bitmap-absent points are NaN.
	Data []float32

	// Latitudes for each grid point (same length as Data), degrees.
	// Empty if the grid's projection does not support coordinate derivation.
	Latitudes []float64

	// Longitudes for each grid point (same length as Data), degrees.
	Longitudes []float64

	// Metadata from the message
	Discipline       string    // Meteorological, Hydrological, etc.
	Center           string    // Originating center (NCEP, ECMWF, etc.)
	ReferenceTime    time.Time // Reference time of the data
	ProductionStatus string    // Operational, Test, etc.
	DataType         string    // Forecast, Analysis, etc.

	// Parameter information
	Parameter ParameterID // WMO standard parameter identifier (D.C.P)

	// Level/surface information
	Level      string  // Type of level (isobaric, surface, etc.)
	LevelValue float32 // Value of the level in its own unit (e.g., 50000 Pa for 500 hPa)

	// Grid information
	GridType  string // Grid definition template, as "Template N" (Table 3.1)
	GridNi    int    // Number of points in i direction
	GridNj    int    // Number of points in j direction
	NumPoints int    // Total number of grid points

	// Raw message for advanced users
	message *Message
}

// Read parses GRIB2 messages from an io.ReadSeeker.
//
// This is the main entry point for the library. It parses all GRIB2 messages
// in the input stream and returns them as GRIB2 structs with decoded data and
// coordinates.
//
// Messages are parsed in parallel for performance. Each message is read from
// the stream on its own, so bytes outside messages are skipped, but every
// message is read into memory before parsing starts.
// Use ReadWithOptions to control parallelism or apply filters.
//
// Example:
//
//	file, _ := os.Open("forecast.grib2")
//	defer file.Close()
//	fields, err := grib2.Read(file)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, field := range fields {
//	    fmt.Printf("%s at %s: %d points\n",
//	        field.Parameter, field.Level, field.NumPoints)
//	}
func Read(r io.ReadSeeker) ([]*GRIB2, error) {
	return ReadWithOptions(r)
}

// gridKey uniquely identifies a Lat/Lon grid configuration for coordinate caching.
type gridKey struct {
	numDataPoints uint32
	ni, nj        uint32
}

// createGridKey creates a unique key for a message's grid, if it is one
// whose coordinates this library can derive (currently only Lat/Lon).
func createGridKey(msg *Message) (gridKey, bool) {
	if msg.Section3 == nil || msg.Section3.Grid == nil {
		return gridKey{}, false
	}

	ll, ok := msg.Section3.Grid.(*grid.LatLonGrid)
	if !ok {
		return gridKey{}, false
	}

	return gridKey{
		numDataPoints: msg.Section3.NumDataPoints,
		ni:            ll.Ni,
		nj:            ll.Nj,
	}, true
}

// coordinateCache stores pre-computed coordinates for unique grids
type coordinateCache struct {
	latitudes  []float64
	longitudes []float64
}

// ReadWithOptions parses GRIB2 messages with configuration options.
//
// Options can control parallelism, apply filters, or configure other
// behavior. See ReadOption for available options.
//
// Example:
//
//	file, _ := os.Open("forecast.grib2")
//	defer file.Close()
//	fields, err := grib2.ReadWithOptions(file,
//	    WithWorkers(4),
//	    WithParameterCategory(0),
//	)
func ReadWithOptions(r io.ReadSeeker, opts ...ReadOption) ([]*GRIB2, error) {
	config := defaultReadConfig()
	for _, opt := range opts {
		opt(&config)
	}

	var messages []*Message
	var err error

	if config.sequential || config.skipErrors {
		if config.skipErrors {
			messages, err = ParseMessagesFromStreamSequentialSkipErrors(r)
		} else {
			messages, err = ParseMessagesFromStreamSequential(r)
		}
	} else if config.ctx != nil {
		messages, err = ParseMessagesFromStreamWithContext(config.ctx, r, config.workers)
	} else {
		messages, err = ParseMessagesFromStreamWithWorkers(r, config.workers)
	}

	if err != nil && !config.skipErrors {
		return nil, err
	}

	// Phase 1: Identify unique grids
	gridToMessages := make(map[gridKey][]*Message)
	uniqueGrids := make(map[gridKey]*Message)

	for _, msg := range messages {
		if !config.filter(msg) {
			continue
		}

		key, ok := createGridKey(msg)
		if !ok {
			// No coordinate cache key (unsupported projection); still
			// decode the field below, just without lat/lon pairs.
			gridToMessages[gridKey{}] = append(gridToMessages[gridKey{}], msg)
			continue
		}

		gridToMessages[key] = append(gridToMessages[key], msg)
		if _, exists := uniqueGrids[key]; !exists {
			uniqueGrids[key] = msg
		}
	}

	// Phase 2: Compute coordinates for unique grids in parallel
	coordCache := make(map[gridKey]*coordinateCache)
	var cacheMutex sync.Mutex
	var wg sync.WaitGroup

	for key, exampleMsg := range uniqueGrids {
		wg.Add(1)
		go func(k gridKey, msg *Message) {
			defer wg.Done()

			coords, err := msg.Coordinates()
			if err != nil {
				return
			}

			lats := make([]float64, 0, msg.Section3.NumDataPoints)
			lons := make([]float64, 0, msg.Section3.NumDataPoints)
			for pt := range coords {
				lats = append(lats, pt.Lat)
				lons = append(lons, pt.Lon)
			}

			cacheMutex.Lock()
			coordCache[k] = &coordinateCache{
				latitudes:  lats,
				longitudes: lons,
			}
			cacheMutex.Unlock()
		}(key, exampleMsg)
	}
	wg.Wait()

	// Phase 3: Convert messages to GRIB2 structs using cached coordinates (in parallel)
	type result struct {
		field *GRIB2
		err   error
		index int
	}

	totalMessages := 0
	for _, msgs := range gridToMessages {
		totalMessages += len(msgs)
	}

	resultChan := make(chan result, totalMessages)
	var decodeWg sync.WaitGroup

	maxWorkers := runtime.NumCPU() * 2
	semaphore := make(chan struct{}, maxWorkers)

	messageIndex := 0
	for key, msgs := range gridToMessages {
		cache := coordCache[key] // nil is fine: field will have no coordinates

		for _, msg := range msgs {
			decodeWg.Add(1)
			idx := messageIndex
			messageIndex++

			semaphore <- struct{}{}

			go func(m *Message, cache *coordinateCache, i int) {
				defer decodeWg.Done()
				defer func() { <-semaphore }()
				field, err := messageToGRIB2WithCoords(m, cache)
				resultChan <- result{field: field, err: err, index: i}
			}(msg, cache, idx)
		}
	}

	go func() {
		decodeWg.Wait()
		close(resultChan)
	}()

	results := make([]*result, totalMessages)
	for res := range resultChan {
		if res.err != nil {
			if !config.skipErrors {
				return nil, fmt.Errorf("failed to convert message: %w", res.err)
			}
			continue
		}
		results[res.index] = &res
	}

	fields := make([]*GRIB2, 0, totalMessages)
	for _, res := range results {
		if res != nil && res.field != nil {
			fields = append(fields, res.field)
		}
	}

	return fields, nil
}

// messageToGRIB2WithCoords converts a Message to GRIB2 using pre-computed coordinates.
func messageToGRIB2WithCoords(msg *Message, cache *coordinateCache) (*GRIB2, error) {
	values, err := msg.DecodeData()
	if err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}

	data := make([]float32, 0, msg.Section3.NumDataPoints)
	for v := range values {
		data = append(data, v)
	}

	g2 := &GRIB2{
		Data:      data,
		NumPoints: len(data),
		message:   msg,
	}
	if cache != nil {
		g2.Latitudes = cache.latitudes
		g2.Longitudes = cache.longitudes
	}

	return populateMetadata(g2, msg), nil
}

// populateMetadata extracts metadata from a Message into a GRIB2 struct
func populateMetadata(g2 *GRIB2, msg *Message) *GRIB2 {
	if msg.Section0 != nil {
		g2.Discipline = msg.Section0.DisciplineName()
	}

	if msg.Section1 != nil {
		g2.Center = msg.Section1.CenterName()
		g2.ReferenceTime = msg.Section1.ReferenceTime
		g2.ProductionStatus = msg.Section1.ProductionStatusName()
		g2.DataType = msg.Section1.DataTypeName()
	}

	if msg.Section3 != nil && msg.Section3.Grid != nil {
		g2.GridType = fmt.Sprintf("Template %d", msg.Section3.Grid.TemplateNumber())
		switch g := msg.Section3.Grid.(type) {
		case *grid.LatLonGrid:
			g2.GridNi, g2.GridNj = int(g.Ni), int(g.Nj)
		case *grid.MercatorGrid:
			g2.GridNi, g2.GridNj = int(g.Ni), int(g.Nj)
		case *grid.LambertConformalGrid:
			g2.GridNi, g2.GridNj = int(g.Nx), int(g.Ny)
		case *grid.PolarStereographicGrid:
			g2.GridNi, g2.GridNj = int(g.Nx), int(g.Ny)
		default:
			// No per-axis dimensions known: one row of all points.
			g2.GridNi, g2.GridNj = int(msg.Section3.NumDataPoints), 1
		}
	}

	if msg.Section4 != nil && msg.Section4.Product != nil {
		discipline := msg.Section0.Discipline
		category := msg.Section4.Product.GetParameterCategory()
		number := msg.Section4.Product.GetParameterNumber()

		g2.Parameter = ParameterID{
			Discipline: discipline,
			Category:   category,
			Number:     number,
		}

		if template, ok := msg.Section4.Product.(*product.Template40); ok {
			levelType := int(template.FirstSurfaceType)
			g2.Level = tables.GetLevelName(levelType)
			g2.LevelValue = float32(template.FirstSurfaceValueScaled())

			if template.FirstSurfaceValue != 0 {
				g2.Level = fmt.Sprintf("%s %g", g2.Level, g2.LevelValue)
			}
		}
	}

	return g2
}

// String returns a human-readable summary of the field.
func (g *GRIB2) String() string {
	return fmt.Sprintf("GRIB2: %s from %s, %d points, ref time %s",
		g.Parameter, g.Center, g.NumPoints, g.ReferenceTime.Format(time.RFC3339))
}

// MinValue returns the minimum data value in the field, ignoring NaN (missing) values.
func (g *GRIB2) MinValue() float32 {
	var min float32
	found := false
	for _, val := range g.Data {
		if val != val { // NaN
			continue
		}
		if !found || val < min {
			min = val
			found = true
		}
	}
	return min
}

// MaxValue returns the maximum data value in the field, ignoring NaN (missing) values.
func (g *GRIB2) MaxValue() float32 {
	var max float32
	found := false
	for _, val := range g.Data {
		if val != val { // NaN
			continue
		}
		if !found || val > max {
			max = val
			found = true
		}
	}
	return max
}

// CountValid returns the number of valid (non-missing) data values.
func (g *GRIB2) CountValid() int {
	count := 0
	for _, val := range g.Data {
		if val == val { // not NaN
			count++
		}
	}
	return count
}

// GetMessage returns the underlying parsed message for advanced users.
//
// This provides access to the raw section data and allows for custom
// processing beyond what the GRIB2 struct provides.
func (g *GRIB2) GetMessage() *Message {
	return g.message
}
