package tilemap

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LevelData is the structured level format used by .json and .yaml files
type LevelData struct {
	Name   string  `json:"name" yaml:"name"`
	Width  int     `json:"width" yaml:"width"`
	Height int     `json:"height" yaml:"height"`
	Tiles  [][]int `json:"tiles" yaml:"tiles"` // 2D array of tile indices [y][x], -1 for empty
}

// Load reads a level file. Files ending in .json, .yaml or .yml use the
// structured format; anything else is read as a text grid.
func Load(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file %s: %w", path, err)
	}

	var g *Grid
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		g, err = parseStructured(data, json.Unmarshal)
	case ".yaml", ".yml":
		g, err = parseStructured(data, yaml.Unmarshal)
	default:
		g, err = ParseText(data)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid level file %s: %w", path, err)
	}

	if g.Name == "" {
		g.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return g, nil
}

// ParseText parses the text level format: one row per line, cells separated
// by whitespace or commas, "." or -1 for an empty cell. Blank lines and lines
// starting with '#' are ignored.
func ParseText(data []byte) (*Grid, error) {
	var rows [][]int

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		row := make([]int, 0, len(fields))
		for _, f := range fields {
			if f == "." {
				row = append(row, Empty)
				continue
			}
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid tile %q", lineNo, f)
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return FromRows(rows)
}

func parseStructured(data []byte, unmarshal func([]byte, interface{}) error) (*Grid, error) {
	var level LevelData
	if err := unmarshal(data, &level); err != nil {
		return nil, fmt.Errorf("failed to parse level: %w", err)
	}
	if err := validateLevelData(&level); err != nil {
		return nil, err
	}

	g, err := FromRows(level.Tiles)
	if err != nil {
		return nil, err
	}
	g.Name = level.Name
	return g, nil
}

// validateLevelData checks the declared dimensions against the tiles array
func validateLevelData(data *LevelData) error {
	if data.Width <= 0 || data.Height <= 0 {
		return fmt.Errorf("invalid map dimensions: %dx%d", data.Width, data.Height)
	}

	if len(data.Tiles) != data.Height {
		return fmt.Errorf("tiles array height mismatch: expected %d, got %d", data.Height, len(data.Tiles))
	}

	for y, row := range data.Tiles {
		if len(row) != data.Width {
			return fmt.Errorf("tiles array width mismatch at row %d: expected %d, got %d", y, data.Width, len(row))
		}
	}

	return nil
}

// WriteText encodes a grid in the text level format.
func WriteText(g *Grid) []byte {
	var buf bytes.Buffer
	if g.Name != "" {
		fmt.Fprintf(&buf, "# %s (%dx%d)\n", g.Name, g.Width, g.Height)
	}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if x > 0 {
				buf.WriteByte(' ')
			}
			v := g.Cells[y*g.Width+x]
			if v == Empty {
				buf.WriteByte('.')
			} else {
				buf.WriteString(strconv.Itoa(v))
			}
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
