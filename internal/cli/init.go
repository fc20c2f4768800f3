package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/imyousuf/TileSage/internal/config"
)

func newInitCmd() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a .tilesage.yaml config file",
		Long: `Initialize a TileSage project in the current directory.

Creates a .tilesage.yaml configuration file and registers the project
in ~/.tilesage.conf for cross-project access. Use --interactive for a
guided setup wizard.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}

			configPath := filepath.Join(cwd, config.DefaultConfigFile+"."+config.DefaultConfigType)
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("%s already exists; project is already initialized", configPath)
			}

			if interactive {
				return runInteractiveInit(cmd, cwd, configPath)
			}

			out := cmd.OutOrStdout()

			// Detect LLM provider from environment.
			provider, providerHint := detectLLMProvider()

			projectName := filepath.Base(cwd)
			configContent := generateConfigYAML(projectName, provider)
			if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
				return fmt.Errorf("write config file: %w", err)
			}
			fmt.Fprintf(out, "Created %s\n", configPath)

			// Register in global registry.
			if err := config.RegisterProject(projectName, cwd); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to register project in %s: %v\n", config.RegistryPath(), err)
			} else {
				fmt.Fprintf(out, "Registered project %q in %s\n", projectName, config.RegistryPath())
			}

			// Print next steps.
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  1. Edit .tilesage.yaml: point maps.dir at your map documents")
			fmt.Fprintln(out, "     and tileset.sheet at your tilesheet image")
			fmt.Fprintln(out, "  2. Run 'tilesage extract' to build the adjacency store")
			fmt.Fprintln(out, "  3. Run 'tilesage query <tile>' to explore learned neighbors")
			fmt.Fprintln(out, "  4. Optionally: 'tilesage split' then 'tilesage tag' to")
			fmt.Fprintln(out, "     categorize tiles with an LLM")
			if providerHint != "" {
				fmt.Fprintf(out, "     (detected %s)\n", providerHint)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "guided setup wizard")

	return cmd
}

// detectLLMProvider checks environment variables to auto-detect the LLM provider.
func detectLLMProvider() (provider, hint string) {
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		return "anthropic", "ANTHROPIC_API_KEY set"
	}
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" || os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		return "vertex-ai", "Google Cloud credentials detected"
	}
	return "anthropic", ""
}

func generateConfigYAML(projectName, provider string) string {
	model := "claude-sonnet-4-5-20250929"

	return fmt.Sprintf(`project:
  name: %q

maps:
  dir: maps
  exclude:
    - "**/.git/**"
    - "**/backup/**"
    - "**/*.bak"

tileset:
  sheet: tileset.png
  tiles_dir: tiles
  tile_size: 16
  spacing: 1
  cols: 32
  rows: 32
  preview_scale: 1

store:
  adjacency_file: tile_adjacency.json
  index_file: tiles/index.json
  catalog_dir: .tilesage-catalog

extract:
  background_gid: 1
  min_count: 0
  strict: false

oracle:
  provider: %s
  model: %s
  checkpoint_interval: 50
`, projectName, provider, model)
}
