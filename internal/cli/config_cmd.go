package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/imyousuf/TileSage/internal/config"
)

// Style definitions for config view.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})
	labelStyle = lipgloss.NewStyle().
			Faint(true).
			Width(18)
	valueStyle = lipgloss.NewStyle()
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit project configuration",
		Long: `View or edit TileSage project configuration.

By default, displays the current configuration in a pretty-printed format.
Use 'config edit' to edit configuration interactively.`,
		RunE: runConfigView,
	}

	cmd.AddCommand(newConfigEditCmd())

	return cmd
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)

	// Title
	fmt.Fprintln(out, headerStyle.Render("TileSage Configuration"))
	fmt.Fprintln(out, headerStyle.Render(strings.Repeat("=", 22)))
	fmt.Fprintln(out)

	// Project
	printSection(out, "Project")
	printKV(out, "Name", cfg.Project.Name)
	fmt.Fprintln(out)

	// Maps
	printSection(out, "Maps")
	printKV(out, "Directory", cfg.Maps.Dir)
	if len(cfg.Maps.Exclude) > 0 {
		printKV(out, "Exclude", strings.Join(cfg.Maps.Exclude, ", "))
	}
	fmt.Fprintln(out)

	// Tileset
	printSection(out, "Tileset")
	printKV(out, "Sheet", cfg.Tileset.Sheet)
	printKV(out, "Tiles dir", cfg.Tileset.TilesDir)
	printKV(out, "Geometry", fmt.Sprintf("%dpx tiles, %dpx spacing, %dx%d grid",
		cfg.Tileset.TileSize, cfg.Tileset.Spacing, cfg.Tileset.Cols, cfg.Tileset.Rows))
	if cfg.Tileset.PreviewScale > 1 {
		printKV(out, "Preview scale", fmt.Sprintf("%dx", cfg.Tileset.PreviewScale))
	}
	fmt.Fprintln(out)

	// Store
	printSection(out, "Store")
	printKV(out, "Adjacency", cfg.Store.AdjacencyFile)
	printKV(out, "Tile index", cfg.Store.IndexFile)
	printKV(out, "Catalog dir", cfg.Store.CatalogDir)
	fmt.Fprintln(out)

	// Extraction
	printSection(out, "Extraction")
	printKV(out, "Background GID", strconv.FormatUint(uint64(cfg.Extract.BackgroundGID), 10))
	printKV(out, "Min count", strconv.Itoa(cfg.Extract.MinCount))
	printKV(out, "Strict", boolYesNo(cfg.Extract.Strict))
	if cfg.Extract.Workers > 0 {
		printKV(out, "Workers", strconv.Itoa(cfg.Extract.Workers))
	}
	fmt.Fprintln(out)

	// Oracle
	printSection(out, "Oracle")
	printKV(out, "Provider", cfg.Oracle.Provider)
	printKV(out, "Model", cfg.Oracle.Model)
	if cfg.Oracle.Provider == "vertex-ai" {
		printKV(out, "GCP Project", cfg.Oracle.Project)
		printKV(out, "GCP Region", cfg.Oracle.Location)
	}
	printKV(out, "Checkpoint every", strconv.Itoa(cfg.Oracle.CheckpointInterval))
	fmt.Fprintln(out)

	return nil
}

func printSection(out io.Writer, title string) {
	fmt.Fprintf(out, "  %s\n", headerStyle.Render(title))
}

func printKV(out io.Writer, label, value string) {
	fmt.Fprintf(out, "    %s%s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func boolYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newConfigEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit project configuration interactively",
		Long:  `Edit TileSage project configuration using an interactive wizard.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigEdit(cmd)
		},
	}

	return cmd
}

func runConfigEdit(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out := cmd.OutOrStdout()

	// Pre-fill form variables from existing config
	projectName := cfg.Project.Name
	mapsDir := cfg.Maps.Dir
	sheet := cfg.Tileset.Sheet
	tileSize := strconv.Itoa(cfg.Tileset.TileSize)
	spacing := strconv.Itoa(cfg.Tileset.Spacing)
	cols := strconv.Itoa(cfg.Tileset.Cols)
	rows := strconv.Itoa(cfg.Tileset.Rows)
	backgroundGID := strconv.FormatUint(uint64(cfg.Extract.BackgroundGID), 10)
	strict := cfg.Extract.Strict
	provider := cfg.Oracle.Provider
	gcpProject := cfg.Oracle.Project
	gcpRegion := cfg.Oracle.Location
	if gcpRegion == "" {
		gcpRegion = "us-central1"
	}
	var confirm bool

	providerOptions := []huh.Option[string]{
		huh.NewOption("Anthropic API", "anthropic"),
		huh.NewOption("Vertex AI (GCP)", "vertex-ai"),
	}

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
		huh.NewGroup(
			huh.NewInput().
				Title("Tilesheet image").
				Value(&sheet),
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
		).Title("Tileset"),

		// Group 3: Extraction
		huh.NewGroup(
			huh.NewInput().
				Title("Background GID (0 disables)").
				Value(&backgroundGID).
				Validate(nonNegativeInt("background GID")),
			huh.NewConfirm().
				Title("Abort extraction on first malformed map?").
				Value(&strict).
				Affirmative("Yes").
				Negative("No"),
		).Title("Extraction"),

		// Group 4a: Oracle provider
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("LLM provider").
				Options(providerOptions...).
				Value(&provider),
		).Title("Oracle"),

		// Group 4b: Vertex AI Config
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

		// Group 5: Confirm
		huh.NewGroup(
			huh.NewNote().
				Title("Summary").
				DescriptionFunc(func() string {
					providerLabel := provider
					if provider == "vertex-ai" {
						providerLabel = fmt.Sprintf("Vertex AI (%s / %s)", gcpProject, gcpRegion)
					}
					return fmt.Sprintf(
						"Project:    %s\n"+
							"Maps dir:   %s\n"+
							"Tileset:    %s (%spx, %sx%s)\n"+
							"Background: %s\n"+
							"Oracle:     %s",
						projectName, mapsDir, sheet, tileSize, cols, rows,
						backgroundGID, providerLabel,
					)
				}, &provider),
			huh.NewConfirm().
				Title("Save changes?").
				Value(&confirm).
				Affirmative("Save").
				Negative("Cancel"),
		).Title("Confirm"),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		return fmt.Errorf("interactive config edit: %w", err)
	}

	if !confirm {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}

	// Update config from form values
	cfg.Project.Name = projectName
	cfg.Maps.Dir = mapsDir
	cfg.Tileset.Sheet = sheet
	cfg.Tileset.TileSize = mustAtoi(tileSize)
	cfg.Tileset.Spacing = mustAtoi(spacing)
	cfg.Tileset.Cols = mustAtoi(cols)
	cfg.Tileset.Rows = mustAtoi(rows)
	cfg.Extract.BackgroundGID = uint32(mustAtoi(backgroundGID))
	cfg.Extract.Strict = strict
	cfg.Oracle.Provider = provider

	if provider == "vertex-ai" {
		cfg.Oracle.Project = gcpProject
		cfg.Oracle.Location = gcpRegion
	} else {
		cfg.Oracle.Project = ""
		cfg.Oracle.Location = ""
	}

	configPath := config.DefaultConfigFile + "." + config.DefaultConfigType
	if err := config.WriteConfig(cfg, configPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

// Form validators.

func notBlank(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

func positiveInt(field string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive number", field)
		}
		return nil
	}
}

func nonNegativeInt(field string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be zero or a positive number", field)
		}
		return nil
	}
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
