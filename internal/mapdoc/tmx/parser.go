// Package tmx parses Tiled TMX map documents with CSV-encoded layer data.
package tmx

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/imyousuf/TileSage/internal/mapdoc"
	"github.com/imyousuf/TileSage/internal/tiled"
)

// TMXParser extracts decoded tile grids from TMX documents.
type TMXParser struct{}

// NewParser creates a new TMX parser.
func NewParser() *TMXParser {
	return &TMXParser{}
}

func (p *TMXParser) Format() string {
	return "tmx"
}

func (p *TMXParser) Extensions() []string {
	return []string{".tmx"}
}

// tmxMap mirrors the subset of the TMX schema we consume.
type tmxMap struct {
	XMLName xml.Name   `xml:"map"`
	Width   int        `xml:"width,attr"`
	Height  int        `xml:"height,attr"`
	Layers  []tmxLayer `xml:"layer"`
}

type tmxLayer struct {
	Name string  `xml:"name,attr"`
	Data tmxData `xml:"data"`
}

type tmxData struct {
	Encoding string `xml:"encoding,attr"`
	Text     string `xml:",chardata"`
}

func (p *TMXParser) Parse(name string, content []byte) (*mapdoc.Document, error) {
	var m tmxMap
	if err := xml.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("parsing TMX %s: %w", name, err)
	}
	if m.Width < 0 || m.Height < 0 {
		return nil, &mapdoc.MalformedMapError{
			Document: name, Layer: "", Row: -1,
			Reason: fmt.Sprintf("negative dimensions %dx%d", m.Width, m.Height),
		}
	}

	doc := &mapdoc.Document{
		Name:   name,
		Width:  m.Width,
		Height: m.Height,
	}
	for _, l := range m.Layers {
		if l.Data.Encoding != "csv" {
			return nil, &mapdoc.MalformedMapError{
				Document: name, Layer: l.Name, Row: -1,
				Reason: fmt.Sprintf("expected CSV-encoded layer data, got %q", l.Data.Encoding),
			}
		}
		cells, err := decodeCSVLayer(name, l.Name, l.Data.Text, m.Width, m.Height)
		if err != nil {
			return nil, err
		}
		doc.Layers = append(doc.Layers, mapdoc.Layer{Name: l.Name, Cells: cells})
	}
	return doc, nil
}

// decodeCSVLayer turns the CSV payload of one layer into a decoded grid.
// Rows are newline-separated; the count of rows and of values per row must
// match the declared dimensions exactly. No truncation, no padding.
func decodeCSVLayer(docName, layerName, text string, width, height int) ([][]tiled.Key, error) {
	var rows []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSuffix(line, ",")
		if line == "" {
			continue
		}
		rows = append(rows, line)
	}

	if width == 0 || height == 0 {
		if len(rows) != 0 {
			return nil, &mapdoc.MalformedMapError{
				Document: docName, Layer: layerName, Row: -1,
				Reason: fmt.Sprintf("declared %dx%d but layer has %d rows of data", width, height, len(rows)),
			}
		}
		return [][]tiled.Key{}, nil
	}

	// Some exporters emit the whole layer as a single CSV line. Reshape it
	// into rows only when the value count matches exactly.
	if len(rows) == 1 && height > 1 {
		fields := strings.Split(rows[0], ",")
		if len(fields) == width*height {
			rows = make([]string, height)
			for r := 0; r < height; r++ {
				rows[r] = strings.Join(fields[r*width:(r+1)*width], ",")
			}
		}
	}

	if len(rows) != height {
		return nil, &mapdoc.MalformedMapError{
			Document: docName, Layer: layerName, Row: -1,
			Reason: fmt.Sprintf("declared height %d but layer has %d rows", height, len(rows)),
		}
	}

	cells := make([][]tiled.Key, height)
	for r, line := range rows {
		fields := strings.Split(line, ",")
		if len(fields) != width {
			return nil, &mapdoc.MalformedMapError{
				Document: docName, Layer: layerName, Row: r,
				Reason: fmt.Sprintf("declared width %d but row has %d values", width, len(fields)),
			}
		}
		row := make([]tiled.Key, width)
		for c, field := range fields {
			raw, err := strconv.ParseUint(strings.TrimSpace(field), 10, 32)
			if err != nil {
				return nil, &mapdoc.MalformedMapError{
					Document: docName, Layer: layerName, Row: r,
					Reason: fmt.Sprintf("cell %d: %q is not an unsigned 32-bit integer", c, strings.TrimSpace(field)),
				}
			}
			row[c] = tiled.KeyFromRaw(uint32(raw))
		}
		cells[r] = row
	}
	return cells, nil
}
