// terrain-tool is a CLI utility for sculpting Ragnarok Online GAT heightmaps
// with the editor's brush tools.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/Faultbox/midgard-editor/internal/terrain"
	"github.com/Faultbox/midgard-editor/pkg/formats"
	mathx "github.com/Faultbox/midgard-editor/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "sculpt":
		err = cmdSculpt(args)
	case "preview":
		err = cmdPreview(args)
	case "noise":
		err = cmdNoise(args)
	case "serve":
		err = cmdServe(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`terrain-tool - GAT heightmap brush editor

Usage:
  terrain-tool <command> [options]

Commands:
  info <file.gat>                        Show table size and altitude range
  sculpt -script <strokes.yaml> [-o out.gat] [file.gat]
                                         Replay brush strokes onto a table
  preview [-scale N] <file.gat> <out.png>
                                         Render the heights as a grayscale PNG
  noise [-size N] [-seed S] <out.png>    Render the roughen brush noise field
  serve [-config path] [-addr host:port] Run the websocket editing bridge

Examples:
  terrain-tool info prontera.gat
  terrain-tool sculpt -script hill.yaml -o prontera_edit.gat prontera.gat
  terrain-tool preview -scale 4 prontera_edit.gat prontera.png
  terrain-tool serve -addr :7070 -debug`)
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: terrain-tool info <file.gat>")
	}

	gat, err := formats.ParseGATFile(args[0])
	if err != nil {
		return err
	}

	lo, hi := gat.AltitudeRange()
	fmt.Printf("Table:    %s\n", args[0])
	fmt.Printf("Version:  %s\n", gat.Version)
	fmt.Printf("Cells:    %dx%d\n", gat.Width, gat.Height)
	fmt.Printf("Altitude: %.2f .. %.2f\n", lo, hi)
	fmt.Println()
	fmt.Println("Cells by type:")

	counts := make(map[formats.GATCellType]int)
	for _, c := range gat.Cells {
		counts[c.Type]++
	}
	types := make([]formats.GATCellType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return counts[types[i]] > counts[types[j]] })

	for _, t := range types {
		fmt.Printf("  %-10s %d\n", cellTypeName(t), counts[t])
	}
	return nil
}

func cellTypeName(t formats.GATCellType) string {
	switch t {
	case formats.GATWalkable:
		return "walkable"
	case formats.GATBlocked:
		return "blocked"
	case formats.GATWater:
		return "water"
	default:
		return fmt.Sprintf("type %d", uint32(t))
	}
}

// openTerrain loads a GAT file into a grid, or creates a flat grid of
// width x depth samples when path is empty. The table is returned so cell
// types survive a save.
func openTerrain(path string, width, depth int, worldScale, localScale mathx.Vec3) (*terrain.Grid, *formats.GAT, error) {
	if path == "" {
		g, err := terrain.NewGrid(width, depth, worldScale, localScale)
		return g, nil, err
	}

	gat, err := formats.ParseGATFile(path)
	if err != nil {
		return nil, nil, err
	}
	g, err := terrain.FromGAT(gat, worldScale, localScale)
	if err != nil {
		return nil, nil, fmt.Errorf("building grid from %s: %w", path, err)
	}
	return g, gat, nil
}

// saveTerrain writes the grid heights into gat (or a new table) at path.
func saveTerrain(path string, g *terrain.Grid, gat *formats.GAT) error {
	out, err := terrain.ToGAT(g, gat)
	if err != nil {
		return err
	}
	return formats.WriteGATFile(path, out)
}
