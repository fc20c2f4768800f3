package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imyousuf/TileSage/internal/config"
	"github.com/imyousuf/TileSage/internal/tileset"
)

func newSplitCmd() *cobra.Command {
	var (
		sheetPath string
		outDir    string
		tileSize  int
		spacing   int
		cols      int
		rows      int
		scale     int
	)

	cmd := &cobra.Command{
		Use:   "split [tilesheet]",
		Short: "Slice a tilesheet into per-tile images",
		Long: `Slice a packed tilesheet image into individual tile PNGs and write a
tile index describing every extracted tile.

Fully transparent tiles are skipped. Pass --scale to also write a
nearest-neighbor scaled preview of each tile (pixel art stays crisp).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			sheet := cfg.Tileset.Sheet
			if len(args) > 0 {
				sheet = args[0]
			} else if sheetPath != "" {
				sheet = sheetPath
			}
			if sheet == "" {
				return fmt.Errorf("no tilesheet given; pass a path or set tileset.sheet in config")
			}

			dir := outDir
			if dir == "" {
				dir = cfg.Tileset.TilesDir
			}

			scfg := tileset.Config{
				TileSize: pick(tileSize, cfg.Tileset.TileSize),
				Spacing:  spacing,
				Cols:     pick(cols, cfg.Tileset.Cols),
				Rows:     pick(rows, cfg.Tileset.Rows),
				Scale:    pick(scale, cfg.Tileset.PreviewScale),
			}
			if !cmd.Flags().Changed("spacing") {
				scfg.Spacing = cfg.Tileset.Spacing
			}

			index, err := tileset.Split(sheet, dir, scfg)
			if err != nil {
				return fmt.Errorf("split tilesheet: %w", err)
			}

			indexPath := cfg.Store.IndexFile
			if indexPath == "" {
				indexPath = dir + "/index.json"
			}
			if err := tileset.WriteIndex(index, indexPath); err != nil {
				return fmt.Errorf("write tile index: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Split %s into %d tile(s)\n", sheet, index.TotalExtracted)
			fmt.Fprintf(out, "  Skipped empty: %d\n", index.SkippedEmpty)
			fmt.Fprintf(out, "  Tiles dir:     %s\n", dir)
			fmt.Fprintf(out, "  Index:         %s\n", indexPath)

			return nil
		},
	}

	cmd.Flags().StringVar(&sheetPath, "sheet", "", "tilesheet image path (default from config)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory for tile images (default from config)")
	cmd.Flags().IntVar(&tileSize, "tile-size", 0, "tile edge in pixels (default from config)")
	cmd.Flags().IntVar(&spacing, "spacing", 0, "gap between tiles in pixels (default from config)")
	cmd.Flags().IntVar(&cols, "cols", 0, "tile columns in the sheet (default from config)")
	cmd.Flags().IntVar(&rows, "rows", 0, "tile rows in the sheet (default from config)")
	cmd.Flags().IntVar(&scale, "scale", 0, "preview scale factor (1 disables previews)")

	return cmd
}

// pick returns flag when set (non-zero), otherwise the config fallback.
func pick(flag, fallback int) int {
	if flag != 0 {
		return flag
	}
	return fallback
}
