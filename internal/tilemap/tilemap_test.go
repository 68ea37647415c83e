package tilemap

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLevel(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}
	return path
}

func TestParseTextLevel(t *testing.T) {
	data := `# level1
0 1 1 2
3, 4, 4, 5

. -1 7 .
`
	g, err := ParseText([]byte(data))
	if err != nil {
		t.Fatalf("Failed to parse level: %v", err)
	}

	if g.Width != 4 || g.Height != 3 {
		t.Fatalf("Expected 4x3 grid, got %dx%d", g.Width, g.Height)
	}

	checks := []struct {
		x, y, want int
	}{
		{0, 0, 0},
		{3, 0, 2},
		{1, 1, 4},
		{0, 2, Empty},
		{1, 2, Empty},
		{2, 2, 7},
	}
	for _, c := range checks {
		got, err := g.At(c.x, c.y)
		if err != nil {
			t.Errorf("At(%d, %d) failed: %v", c.x, c.y, err)
			continue
		}
		if got != c.want {
			t.Errorf("At(%d, %d) = %d, want %d", c.x, c.y, got, c.want)
		}
	}

	if g.MaxTile() != 7 {
		t.Errorf("Expected max tile 7, got %d", g.MaxTile())
	}
}

func TestParseTextLevelErrors(t *testing.T) {
	cases := map[string]string{
		"empty":          "# nothing here\n\n",
		"ragged rows":    "0 1 2\n0 1\n",
		"bad token":      "0 x 2\n",
		"negative index": "0 -2 1\n",
	}
	for name, data := range cases {
		if _, err := ParseText([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadExampleSizedLevel(t *testing.T) {
	// 20x11, the size of the example level
	var b strings.Builder
	for y := 0; y < 11; y++ {
		for x := 0; x < 20; x++ {
			if x > 0 {
				b.WriteString(" ")
			}
			if x == 0 || y == 0 || x == 19 || y == 10 {
				b.WriteString("1")
			} else {
				b.WriteString("0")
			}
		}
		b.WriteString("\n")
	}

	g, err := Load(writeLevel(t, "level1", b.String()))
	if err != nil {
		t.Fatalf("Failed to load level: %v", err)
	}
	if g.Width != 20 || g.Height != 11 {
		t.Errorf("Expected 20x11, got %dx%d", g.Width, g.Height)
	}
	if g.Name != "level1" {
		t.Errorf("Expected name from file, got '%s'", g.Name)
	}
}

func TestLoadJSONLevel(t *testing.T) {
	data := `{
		"name": "courtyard",
		"width": 3,
		"height": 2,
		"tiles": [[0, 1, 2], [-1, 4, 5]]
	}`
	g, err := Load(writeLevel(t, "courtyard.json", data))
	if err != nil {
		t.Fatalf("Failed to load level: %v", err)
	}
	if g.Name != "courtyard" {
		t.Errorf("Expected name 'courtyard', got '%s'", g.Name)
	}
	if v, _ := g.At(0, 1); v != Empty {
		t.Errorf("Expected empty cell, got %d", v)
	}
	if v, _ := g.At(2, 1); v != 5 {
		t.Errorf("Expected 5, got %d", v)
	}
}

func TestLoadYAMLLevel(t *testing.T) {
	data := `name: meadow
width: 2
height: 2
tiles:
  - [0, 1]
  - [2, 3]
`
	g, err := Load(writeLevel(t, "meadow.yaml", data))
	if err != nil {
		t.Fatalf("Failed to load level: %v", err)
	}
	if v, _ := g.At(1, 1); v != 3 {
		t.Errorf("Expected 3, got %d", v)
	}
}

func TestLoadStructuredLevelValidation(t *testing.T) {
	cases := map[string]string{
		"height mismatch.json": `{"width": 2, "height": 3, "tiles": [[0, 1], [1, 0]]}`,
		"width mismatch.json":  `{"width": 3, "height": 2, "tiles": [[0, 1, 2], [1, 0]]}`,
		"zero size.json":       `{"width": 0, "height": 0, "tiles": []}`,
		"malformed.json":       `{"width": 2,`,
		"bad index.yml":        "width: 1\nheight: 1\ntiles:\n  - [-5]\n",
	}
	for name, data := range cases {
		if _, err := Load(writeLevel(t, name, data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Expected error for missing level")
	}
}

func TestGridBounds(t *testing.T) {
	g, err := NewGrid(3, 2)
	if err != nil {
		t.Fatalf("Failed to create grid: %v", err)
	}

	if v, _ := g.At(2, 1); v != Empty {
		t.Errorf("Expected new grid to be empty, got %d", v)
	}

	for _, p := range [][2]int{{-1, 0}, {3, 0}, {0, 2}} {
		_, err := g.At(p[0], p[1])
		if !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("At(%d, %d): expected ErrOutOfBounds, got %v", p[0], p[1], err)
		}
	}

	if err := g.Set(1, 1, 9); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := g.Set(5, 5, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds from Set, got %v", err)
	}
	if err := g.Set(0, 0, -3); err == nil {
		t.Error("Expected error for invalid tile index")
	}

	if err := g.ValidateTiles(10); err != nil {
		t.Errorf("Expected tiles to fit 10-tile atlas: %v", err)
	}
	if err := g.ValidateTiles(9); err == nil {
		t.Error("Expected tile 9 to exceed 9-tile atlas")
	}

	if _, err := NewGrid(0, 4); err == nil {
		t.Error("Expected error for zero width")
	}
}

func TestWriteTextRoundTrip(t *testing.T) {
	g, err := FromRows([][]int{{0, 1, Empty}, {12, Empty, 3}})
	if err != nil {
		t.Fatalf("Failed to build grid: %v", err)
	}
	g.Name = "tiny"

	out := string(WriteText(g))
	if !strings.HasPrefix(out, "# tiny (3x2)\n") {
		t.Errorf("Expected header comment, got %q", out)
	}
	if !strings.Contains(out, "0 1 .\n12 . 3\n") {
		t.Errorf("Unexpected body %q", out)
	}

	back, err := ParseText([]byte(out))
	if err != nil {
		t.Fatalf("Failed to parse written level: %v", err)
	}
	for i := range g.Cells {
		if back.Cells[i] != g.Cells[i] {
			t.Errorf("Cell %d: got %d, want %d", i, back.Cells[i], g.Cells[i])
		}
	}
}
