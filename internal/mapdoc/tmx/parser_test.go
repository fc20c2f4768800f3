package tmx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/imyousuf/TileSage/internal/mapdoc"
	"github.com/imyousuf/TileSage/internal/tiled"
)

func tmxDoc(width, height int, layers ...string) string {
	body := ""
	for i, data := range layers {
		body += fmt.Sprintf(`<layer name="layer%d" width="%d" height="%d"><data encoding="csv">%s</data></layer>`,
			i, width, height, data)
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" width="%d" height="%d" tilewidth="16" tileheight="16">
%s
</map>`, width, height, body)
}

func TestParseBasic(t *testing.T) {
	p := NewParser()
	doc, err := p.Parse("town.tmx", []byte(tmxDoc(3, 2, "1,2,3,\n4,5,6")))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Name != "town.tmx" || doc.Width != 3 || doc.Height != 2 {
		t.Fatalf("unexpected document header: %+v", doc)
	}
	if len(doc.Layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(doc.Layers))
	}
	cells := doc.Layers[0].Cells
	if got := cells[1][2]; got != (tiled.Key{ID: 6}) {
		t.Errorf("cell (1,2) = %+v, want id 6", got)
	}
}

func TestParseDecodesFlipFlags(t *testing.T) {
	// 2684354565 = 5 | H | V
	raw := 5 | tiled.FlippedHorizontally | tiled.FlippedVertically
	data := fmt.Sprintf("%d,0", raw)

	p := NewParser()
	doc, err := p.Parse("flip.tmx", []byte(tmxDoc(2, 1, data)))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := doc.Layers[0].Cells[0][0]
	want := tiled.Key{ID: 5, Flags: tiled.Flags{Horizontal: true, Vertical: true}}
	if got != want {
		t.Errorf("cell = %+v, want %+v", got, want)
	}
	if !doc.Layers[0].Cells[0][1].IsEmpty() {
		t.Error("GID 0 should decode to the empty key")
	}
}

func TestParseSingleLinePayload(t *testing.T) {
	// Whole layer on one line; must reshape when the count matches exactly.
	p := NewParser()
	doc, err := p.Parse("flat.tmx", []byte(tmxDoc(2, 2, "1,2,3,4")))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cells := doc.Layers[0].Cells
	if cells[0][1] != (tiled.Key{ID: 2}) || cells[1][0] != (tiled.Key{ID: 3}) {
		t.Errorf("reshaped grid wrong: %+v", cells)
	}
}

func TestParseEmptyMap(t *testing.T) {
	p := NewParser()
	doc, err := p.Parse("empty.tmx", []byte(tmxDoc(0, 0, "")))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Layers[0].Cells) != 0 {
		t.Errorf("0x0 map should produce an empty grid")
	}
}

func TestParseMultipleLayers(t *testing.T) {
	p := NewParser()
	doc, err := p.Parse("multi.tmx", []byte(tmxDoc(2, 1, "1,2", "3,4")))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(doc.Layers))
	}
	if doc.Layers[1].Cells[0][0] != (tiled.Key{ID: 3}) {
		t.Errorf("second layer cell = %+v", doc.Layers[1].Cells[0][0])
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantRow int
	}{
		{"short row", tmxDoc(3, 2, "1,2,3\n4,5"), 1},
		{"long row", tmxDoc(2, 2, "1,2,9\n3,4"), 0},
		{"missing row", tmxDoc(2, 3, "1,2\n3,4"), -1},
		{"extra row", tmxDoc(2, 1, "1,2\n3,4"), -1},
		{"not a number", tmxDoc(2, 1, "1,x"), 0},
		{"negative value", tmxDoc(2, 1, "1,-7"), 0},
		{"data in empty map", tmxDoc(0, 0, "1,2"), -1},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.name+".tmx", []byte(tt.content))
			var merr *mapdoc.MalformedMapError
			if !errors.As(err, &merr) {
				t.Fatalf("expected MalformedMapError, got %v", err)
			}
			if merr.Row != tt.wantRow {
				t.Errorf("error row = %d, want %d (%s)", merr.Row, tt.wantRow, merr)
			}
			if merr.Document != tt.name+".tmx" {
				t.Errorf("error document = %q", merr.Document)
			}
		})
	}
}

func TestParseRejectsNonCSVEncoding(t *testing.T) {
	content := `<map width="1" height="1"><layer name="main"><data encoding="base64">AAAA</data></layer></map>`
	p := NewParser()
	_, err := p.Parse("b64.tmx", []byte(content))
	var merr *mapdoc.MalformedMapError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MalformedMapError, got %v", err)
	}
}

func TestParseInvalidXML(t *testing.T) {
	p := NewParser()
	if _, err := p.Parse("broken.tmx", []byte("<map><layer>")); err == nil {
		t.Fatal("expected error for truncated XML")
	}
}
