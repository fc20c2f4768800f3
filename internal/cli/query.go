package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/imyousuf/TileSage/internal/adjacency"
	"github.com/imyousuf/TileSage/internal/config"
	"github.com/imyousuf/TileSage/internal/tiled"
)

func newQueryCmd() *cobra.Command {
	var (
		storePath string
		direction string
		topN      int
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "query <tile-key>",
		Short: "Query ranked neighbors for a tile",
		Long: `Query the adjacency store for the tiles most often observed next to
the given tile.

Tile keys use the oriented grammar: a bare identity ("42") or an identity
with flip flags in H, V, D order ("42:H", "42:HV", "42:HVD").

With --direction, only that side is reported; otherwise all four sides
are listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := tiled.ParseKey(args[0])
			if err != nil {
				return fmt.Errorf("invalid tile key %q: %w", args[0], err)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			store, err := openStore(resolveStorePath(cfg, storePath))
			if err != nil {
				return err
			}

			dirs := adjacency.Directions
			if direction != "" {
				d, err := adjacency.ParseDirection(direction)
				if err != nil {
					return err
				}
				dirs = []adjacency.Direction{d}
			}

			rec := adjacency.NewRecommender(store)
			results := make(map[adjacency.Direction][]adjacency.Neighbor, len(dirs))
			for _, d := range dirs {
				results[d] = rec.Top(key, d, topN)
			}

			out := cmd.OutOrStdout()

			if jsonOut {
				payload := make(map[string][]neighborJSON, len(results))
				for d, list := range results {
					payload[string(d)] = toNeighborJSON(list)
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(payload)
			}

			printed := false
			for _, d := range dirs {
				list := results[d]
				if len(list) == 0 {
					continue
				}
				printed = true
				fmt.Fprintf(out, "%s of %s:\n", d, key)
				for _, n := range list {
					fmt.Fprintf(out, "  %-14s %d\n", n.Key, n.Count)
					printTileInfo(out, store, n.Key)
				}
				fmt.Fprintln(out)
			}
			if !printed {
				fmt.Fprintf(out, "No observations for %s.\n", key)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&storePath, "store", "s", "", "adjacency store path (default from config)")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "single direction: right, bottom, left, or top")
	cmd.Flags().IntVarP(&topN, "top", "n", 10, "maximum results per direction")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")

	cmd.AddCommand(newQueryNeighborhoodCmd())

	return cmd
}

// neighborJSON is the JSON shape of one ranked neighbor.
type neighborJSON struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

func toNeighborJSON(list []adjacency.Neighbor) []neighborJSON {
	out := make([]neighborJSON, len(list))
	for i, n := range list {
		out[i] = neighborJSON{Key: n.Key.String(), Count: n.Count}
	}
	return out
}

// printTileInfo prints the category/description line for a neighbor when
// the store carries metadata for its identity.
func printTileInfo(out io.Writer, store *adjacency.Store, key tiled.Key) {
	info, ok := store.TileInfo[key.ID]
	if !ok || (info.Category == "" && info.Description == "") {
		return
	}
	if info.Description != "" {
		fmt.Fprintf(out, "                 %s: %s\n", info.Category, info.Description)
		return
	}
	fmt.Fprintf(out, "                 %s\n", info.Category)
}

func newQueryNeighborhoodCmd() *cobra.Command {
	var (
		storePath string
		topN      int
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "neighborhood <tile-key>",
		Short: "Suggest a full 3x3 neighborhood around a tile",
		Long: `Suggest the 3x3 area around a hypothetical placement of the given
tile: the best candidate for each of the four sides, plus diagonal
suggestions inferred from the intersection of the two flanking sides.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := tiled.ParseKey(args[0])
			if err != nil {
				return fmt.Errorf("invalid tile key %q: %w", args[0], err)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			store, err := openStore(resolveStorePath(cfg, storePath))
			if err != nil {
				return err
			}

			rec := adjacency.NewRecommender(store)
			hood := rec.Neighborhood(key, topN)

			out := cmd.OutOrStdout()

			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(neighborhoodJSON(hood))
			}

			fmt.Fprintf(out, "Neighborhood of %s:\n\n", hood.Center)
			for _, side := range hood.Sides {
				if side.Best == nil {
					fmt.Fprintf(out, "  %-7s (no observations)\n", side.Direction)
					continue
				}
				fmt.Fprintf(out, "  %-7s %-14s %d", side.Direction, side.Best.Key, side.Best.Count)
				if len(side.Ranked) > 1 {
					fmt.Fprintf(out, "  (+%d more)", len(side.Ranked)-1)
				}
				fmt.Fprintln(out)
			}
			if len(hood.Corners) > 0 {
				fmt.Fprintln(out)
				for _, c := range hood.Corners {
					fmt.Fprintf(out, "  %s-%s  %-14s %d\n", c.Vertical, c.Horizontal, c.Key, c.Count)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&storePath, "store", "s", "", "adjacency store path (default from config)")
	cmd.Flags().IntVarP(&topN, "top", "n", 10, "ranked list depth per side")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")

	return cmd
}

// hood JSON shapes.
type sideJSON struct {
	Direction string         `json:"direction"`
	Best      *neighborJSON  `json:"best,omitempty"`
	Ranked    []neighborJSON `json:"ranked"`
}

type cornerJSON struct {
	Corner string `json:"corner"`
	Key    string `json:"key"`
	Count  int    `json:"count"`
}

type hoodJSON struct {
	Center  string       `json:"center"`
	Sides   []sideJSON   `json:"sides"`
	Corners []cornerJSON `json:"corners"`
}

func neighborhoodJSON(hood *adjacency.Neighborhood) hoodJSON {
	result := hoodJSON{Center: hood.Center.String()}
	for _, side := range hood.Sides {
		s := sideJSON{
			Direction: string(side.Direction),
			Ranked:    toNeighborJSON(side.Ranked),
		}
		if side.Best != nil {
			s.Best = &neighborJSON{Key: side.Best.Key.String(), Count: side.Best.Count}
		}
		result.Sides = append(result.Sides, s)
	}
	for _, c := range hood.Corners {
		result.Corners = append(result.Corners, cornerJSON{
			Corner: fmt.Sprintf("%s-%s", c.Vertical, c.Horizontal),
			Key:    c.Key.String(),
			Count:  c.Count,
		})
	}
	return result
}
