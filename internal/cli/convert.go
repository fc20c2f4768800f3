package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/imyousuf/TileSage/internal/mapdoc"
	"github.com/imyousuf/TileSage/internal/mapdoc/tmx"
)

func newConvertCmd() *cobra.Command {
	var (
		outputPath string
		layerName  string
	)

	cmd := &cobra.Command{
		Use:   "convert <map.tmx>",
		Short: "Convert a TMX map to editor JSON",
		Long: `Convert a TMX map document to the editor's JSON format: a grid of
base tile identities plus a parallel grid of [rotation, flipH, flipV]
transforms.

TMX flip flags become the visually equivalent rotate-then-flip
transform. Multi-layer maps convert one layer (the first, or --layer).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read map: %w", err)
			}

			doc, err := tmx.NewParser().Parse(filepath.Base(args[0]), content)
			if err != nil {
				return err
			}

			layer, err := selectLayer(doc, layerName)
			if err != nil {
				return err
			}

			em := editorDocFromLayer(doc, layer)
			data, err := json.MarshalIndent(em, "", "  ")
			if err != nil {
				return fmt.Errorf("encode editor map: %w", err)
			}
			data = append(data, '\n')

			dest := outputPath
			if dest == "" {
				dest = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".json"
			}
			if dest == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(dest, data, 0644); err != nil {
				return fmt.Errorf("write editor map: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Converted %s (%dx%d, layer %q) -> %s\n",
				args[0], doc.Width, doc.Height, layer.Name, dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path ('-' for stdout; default: input with .json)")
	cmd.Flags().StringVar(&layerName, "layer", "", "layer to convert (default: first layer)")

	return cmd
}

func selectLayer(doc *mapdoc.Document, name string) (*mapdoc.Layer, error) {
	if len(doc.Layers) == 0 {
		return nil, fmt.Errorf("%s: map has no layers", doc.Name)
	}
	if name == "" {
		return &doc.Layers[0], nil
	}
	for i := range doc.Layers {
		if doc.Layers[i].Name == name {
			return &doc.Layers[i], nil
		}
	}
	return nil, fmt.Errorf("%s: no layer named %q", doc.Name, name)
}

// editorDoc is the editor JSON output shape. Transforms triples are
// [rotation, flipH, flipV], parallel to the grid.
type editorDoc struct {
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Grid       [][]uint32 `json:"grid"`
	Transforms [][][3]any `json:"transforms"`
}

func editorDocFromLayer(doc *mapdoc.Document, layer *mapdoc.Layer) editorDoc {
	em := editorDoc{
		Width:      doc.Width,
		Height:     doc.Height,
		Grid:       make([][]uint32, len(layer.Cells)),
		Transforms: make([][][3]any, len(layer.Cells)),
	}
	for r, row := range layer.Cells {
		gridRow := make([]uint32, len(row))
		trRow := make([][3]any, len(row))
		for c, key := range row {
			gridRow[c] = key.ID
			t := key.Flags.ToTransform()
			trRow[c] = [3]any{t.Rotation, t.FlipH, t.FlipV}
		}
		em.Grid[r] = gridRow
		em.Transforms[r] = trRow
	}
	return em
}
