// Package formats reads and writes the Ragnarok Online ground altitude
// table (GAT), the heightmap format the terrain tool loads and saves.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// GAT format errors.
var (
	ErrInvalidGATMagic       = errors.New("invalid GAT magic: expected 'GRAT'")
	ErrUnsupportedGATVersion = errors.New("unsupported GAT version")
	ErrTruncatedGATData      = errors.New("truncated GAT data")
	ErrInvalidGATDimensions  = errors.New("invalid GAT dimensions")
)

const (
	gatMagic      = "GRAT"
	gatHeaderSize = 14
	gatCellSize   = 20
	maxGATSide    = 4096
)

// GATVersion represents the GAT file version.
type GATVersion struct {
	Major uint8
	Minor uint8
}

// DefaultGATVersion is written for newly created tables.
var DefaultGATVersion = GATVersion{Major: 1, Minor: 2}

// String returns the version as "Major.Minor".
func (v GATVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// GATCellType is the walkability type of a cell. The editor carries it
// through untouched.
type GATCellType uint32

// Cell type constants.
const (
	GATWalkable GATCellType = 0
	GATBlocked  GATCellType = 1
	GATWater    GATCellType = 2
)

// GATCell represents a single cell in the GAT grid.
type GATCell struct {
	// Heights contains the altitude of each corner:
	// [0] = bottom-left, [1] = bottom-right, [2] = top-left, [3] = top-right
	Heights [4]float32
	Type    GATCellType
}

// AverageHeight returns the average altitude of all four corners.
func (c *GATCell) AverageHeight() float32 {
	return (c.Heights[0] + c.Heights[1] + c.Heights[2] + c.Heights[3]) / 4.0
}

// GAT represents a parsed Ground Altitude Table file.
type GAT struct {
	Version GATVersion
	Width   uint32
	Height  uint32
	Cells   []GATCell
}

// NewGAT creates a flat, walkable table of width x height cells.
func NewGAT(width, height uint32) (*GAT, error) {
	if err := checkGATDimensions(width, height); err != nil {
		return nil, err
	}
	return &GAT{
		Version: DefaultGATVersion,
		Width:   width,
		Height:  height,
		Cells:   make([]GATCell, int(width*height)),
	}, nil
}

func checkGATDimensions(width, height uint32) error {
	if width == 0 || height == 0 || width > maxGATSide || height > maxGATSide {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGATDimensions, width, height)
	}
	return nil
}

// GetCell returns the cell at the given coordinates.
// Returns nil if coordinates are out of bounds.
func (g *GAT) GetCell(x, y int) *GATCell {
	if x < 0 || y < 0 || x >= int(g.Width) || y >= int(g.Height) {
		return nil
	}
	return &g.Cells[y*int(g.Width)+x]
}

// AltitudeRange returns the minimum and maximum corner altitude.
func (g *GAT) AltitudeRange() (min, max float32) {
	for i, cell := range g.Cells {
		for j, h := range cell.Heights {
			if (i == 0 && j == 0) || h < min {
				min = h
			}
			if (i == 0 && j == 0) || h > max {
				max = h
			}
		}
	}
	return min, max
}

// ParseGAT parses a GAT file from raw bytes.
func ParseGAT(data []byte) (*GAT, error) {
	if len(data) < gatHeaderSize {
		return nil, ErrTruncatedGATData
	}
	if string(data[0:4]) != gatMagic {
		return nil, ErrInvalidGATMagic
	}

	// Version is stored as [minor, major]
	version := GATVersion{
		Major: data[5],
		Minor: data[4],
	}

	// Cell layout is identical for 1.x through 3.x.
	if version.Major < 1 || version.Major > 3 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGATVersion, version)
	}

	r := bytes.NewReader(data[6:])

	var width, height uint32
	if err := binary.Read(r, binary.LittleEndian, &width); err != nil {
		return nil, fmt.Errorf("%w: reading width", ErrTruncatedGATData)
	}
	if err := binary.Read(r, binary.LittleEndian, &height); err != nil {
		return nil, fmt.Errorf("%w: reading height", ErrTruncatedGATData)
	}
	if err := checkGATDimensions(width, height); err != nil {
		return nil, err
	}

	cellCount := int(width * height)
	if r.Len() < cellCount*gatCellSize {
		return nil, fmt.Errorf("%w: want %d cells, have %d bytes", ErrTruncatedGATData, cellCount, r.Len())
	}

	gat := &GAT{
		Version: version,
		Width:   width,
		Height:  height,
		Cells:   make([]GATCell, cellCount),
	}
	if err := binary.Read(r, binary.LittleEndian, gat.Cells); err != nil {
		return nil, fmt.Errorf("%w: reading cells", ErrTruncatedGATData)
	}

	return gat, nil
}

// ParseGATFile parses a GAT file from disk.
func ParseGATFile(path string) (*GAT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GAT file: %w", err)
	}
	return ParseGAT(data)
}

// Encode serializes the table in the on-disk layout ParseGAT reads.
func (g *GAT) Encode() ([]byte, error) {
	if err := checkGATDimensions(g.Width, g.Height); err != nil {
		return nil, err
	}
	if len(g.Cells) != int(g.Width*g.Height) {
		return nil, fmt.Errorf("%w: %d cells for %dx%d", ErrInvalidGATDimensions, len(g.Cells), g.Width, g.Height)
	}

	buf := bytes.NewBuffer(make([]byte, 0, gatHeaderSize+len(g.Cells)*gatCellSize))
	buf.WriteString(gatMagic)
	buf.WriteByte(g.Version.Minor)
	buf.WriteByte(g.Version.Major)

	// bytes.Buffer writes never fail.
	_ = binary.Write(buf, binary.LittleEndian, g.Width)
	_ = binary.Write(buf, binary.LittleEndian, g.Height)
	_ = binary.Write(buf, binary.LittleEndian, g.Cells)

	return buf.Bytes(), nil
}

// WriteGATFile encodes the table to path, creating parent directories.
func WriteGATFile(path string, g *GAT) error {
	data, err := g.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
