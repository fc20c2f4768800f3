package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/imyousuf/TileSage/internal/config"
)

// detectSheets scans rootDir (one level deep) for PNG images that could be
// the project tilesheet.
func detectSheets(rootDir string) []string {
	var found []string
	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if e.IsDir() {
			sub, err := os.ReadDir(filepath.Join(rootDir, e.Name()))
			if err != nil {
				continue
			}
			for _, s := range sub {
				if !s.IsDir() && strings.EqualFold(filepath.Ext(s.Name()), ".png") {
					found = append(found, filepath.Join(e.Name(), s.Name()))
				}
			}
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			found = append(found, e.Name())
		}
	}
	sort.Strings(found)
	return found
}

// runInteractiveInit runs the interactive TUI wizard for project initialization.
func runInteractiveInit(cmd *cobra.Command, cwd, configPath string) error {
	out := cmd.OutOrStdout()

	// Form variables
	var (
		projectName = filepath.Base(cwd)
		mapsDir     = "maps"
		sheet       = "tileset.png"
		tileSize    = "16"
		spacing     = "1"
		cols        = "32"
		rows        = "32"
		provider    string
		gcpProject  string
		gcpRegion   = "us-central1"
		confirm     bool
	)

	// Detect default provider
	provider, _ = detectLLMProvider()

	// Offer detected PNGs as tilesheet candidates.
	sheets := detectSheets(cwd)
	if len(sheets) > 0 {
		sheet = sheets[0]
	}
	sheetOptions := make([]huh.Option[string], 0, len(sheets)+1)
	for _, s := range sheets {
		sheetOptions = append(sheetOptions, huh.NewOption(s, s))
	}

	providerOptions := []huh.Option[string]{
		huh.NewOption("Anthropic API", "anthropic"),
		huh.NewOption("Vertex AI (GCP)", "vertex-ai"),
	}

	// Sheet field is a picker when candidates were detected, otherwise a
	// free-form input.
	var sheetField huh.Field = huh.NewInput().
		Title("Tilesheet image").
		Value(&sheet)
	if len(sheetOptions) > 1 {
		sheetField = huh.NewSelect[string]().
			Title("Tilesheet image").
			Description("PNG images found in the project").
			Options(sheetOptions...).
			Value(&sheet)
	}

	sheetGroup := huh.NewGroup(
		sheetField,
		huh.NewInput().
			Title("Tile size (px)").
			Value(&tileSize).
			Validate(positiveInt("tile size")),
		huh.NewInput().
			Title("Spacing (px)").
			Value(&spacing).
			Validate(nonNegativeInt("spacing")),
		huh.NewInput().
			Title("Columns").
			Value(&cols).
			Validate(positiveInt("columns")),
		huh.NewInput().
			Title("Rows").
			Value(&rows).
			Validate(positiveInt("rows")),
	).Title("Tileset")

	form := huh.NewForm(
		// Group 1: Project Setup
		huh.NewGroup(
			huh.NewInput().
				Title("Project name").
				Value(&projectName).
				Validate(notBlank("project name")),
			huh.NewInput().
				Title("Maps directory").
				Value(&mapsDir).
				Validate(notBlank("maps directory")),
		).Title("Project Setup"),

		// Group 2: Tileset geometry
		sheetGroup,

		// Group 3a: Oracle provider
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("LLM provider").
				Options(providerOptions...).
				Value(&provider),
		).Title("Oracle"),

		// Group 3b: Vertex AI Config (hidden unless vertex-ai selected)
		huh.NewGroup(
			huh.NewInput().
				Title("GCP Project ID").
				Value(&gcpProject).
				Validate(notBlank("GCP project ID")),
			huh.NewInput().
				Title("GCP Region").
				Value(&gcpRegion).
				Placeholder("us-central1").
				Validate(notBlank("GCP region")),
		).Title("Vertex AI Configuration").
			WithHideFunc(func() bool { return provider != "vertex-ai" }),

		// Group 3c: Anthropic Note (hidden unless anthropic selected)
		huh.NewGroup(
			huh.NewNote().
				Title("Anthropic API").
				Description("Set ANTHROPIC_API_KEY in your environment before 'tilesage tag'."),
		).WithHideFunc(func() bool { return provider != "anthropic" }),

		// Group 4: Confirm
		huh.NewGroup(
			huh.NewNote().
				Title("Summary").
				DescriptionFunc(func() string {
					providerLabel := provider
					if provider == "vertex-ai" {
						providerLabel = fmt.Sprintf("Vertex AI (%s / %s)", gcpProject, gcpRegion)
					}
					return fmt.Sprintf(
						"Project:   %s\n"+
							"Maps dir:  %s\n"+
							"Tilesheet: %s (%spx tiles, %sx%s grid)\n"+
							"Oracle:    %s",
						projectName, mapsDir, sheet, tileSize, cols, rows,
						providerLabel,
					)
				}, &provider),
			huh.NewConfirm().
				Title("Create project?").
				Value(&confirm).
				Affirmative("Create").
				Negative("Cancel"),
		).Title("Confirm"),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		return fmt.Errorf("interactive init: %w", err)
	}

	if !confirm {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}

	// Build config from wizard values
	cfg := &config.Config{
		Project: config.ProjectConfig{Name: projectName},
		Maps: config.MapsConfig{
			Dir: mapsDir,
			Exclude: []string{
				"**/.git/**",
				"**/backup/**",
				"**/*.bak",
			},
		},
		Tileset: config.TilesetConfig{
			Sheet:        sheet,
			TilesDir:     "tiles",
			TileSize:     mustAtoi(tileSize),
			Spacing:      mustAtoi(spacing),
			Cols:         mustAtoi(cols),
			Rows:         mustAtoi(rows),
			PreviewScale: 1,
		},
		Store: config.StoreConfig{
			AdjacencyFile: "tile_adjacency.json",
			IndexFile:     "tiles/index.json",
			CatalogDir:    ".tilesage-catalog",
		},
		Extract: config.ExtractConfig{
			BackgroundGID: 1,
		},
		Oracle: config.OracleConfig{
			Provider:           provider,
			Model:              "claude-sonnet-4-5-20250929",
			CheckpointInterval: 50,
		},
	}

	if provider == "vertex-ai" {
		cfg.Oracle.Model = "gemini-2.5-flash"
		cfg.Oracle.Project = gcpProject
		cfg.Oracle.Location = gcpRegion
	}

	if err := config.WriteConfig(cfg, configPath); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	fmt.Fprintf(out, "Created %s\n", configPath)

	if err := config.RegisterProject(projectName, cwd); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to register project in %s: %v\n", config.RegistryPath(), err)
	} else {
		fmt.Fprintf(out, "Registered project %q in %s\n", projectName, config.RegistryPath())
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next: run 'tilesage extract' to build the adjacency store.")
	return nil
}
