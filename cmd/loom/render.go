package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/benjaminschreck/go-loom/pkg/loom"
)

var (
	renderTemplatePath string
	renderDataPath     string
	renderOutputPath   string
	renderWatch        bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a template file",
	Long: `Render a template file against data loaded from a YAML or JSON file.
The result is written to stdout unless --output names a file.

With --watch, the template and data files are re-rendered whenever
either changes, until interrupted.`,
	Example: `  loom render -t welcome.txt -d user.yaml
  loom render -t invoice.txt -d order.json -o invoice.out
  loom render -t report.txt -d figures.jsonc --watch`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderTemplatePath, "template", "t", "",
		"template file to render (required)")
	renderCmd.Flags().StringVarP(&renderDataPath, "data", "d", "",
		"data file (.yaml, .yml, .json, or .jsonc)")
	renderCmd.Flags().StringVarP(&renderOutputPath, "output", "o", "",
		"output file (default: stdout)")
	renderCmd.Flags().BoolVar(&renderWatch, "watch", false,
		"re-render when the template or data file changes")
	_ = renderCmd.MarkFlagRequired("template")

	rootCmd.AddCommand(renderCmd)
}

// loadDataFile reads render data from a YAML, JSON, or JSONC file. JSONC
// comments and trailing commas are stripped before parsing.
func loadDataFile(path string) (loom.TemplateData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var data map[string]interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(raw), &data); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported data format %q (use .yaml, .yml, .json, or .jsonc)", filepath.Ext(path))
	}

	return loom.TemplateData(data), nil
}

func runRender(cmd *cobra.Command, args []string) error {
	engine, err := buildEngine()
	if err != nil {
		return err
	}

	renderOnce := func() error {
		var data loom.TemplateData
		if renderDataPath != "" {
			data, err = loadDataFile(renderDataPath)
			if err != nil {
				return err
			}
		}

		output, err := engine.RenderFile(renderTemplatePath, loom.RenderOptions{Data: data})
		if err != nil {
			return err
		}

		if renderOutputPath == "" {
			fmt.Fprint(os.Stdout, output)
			return nil
		}
		if err := os.WriteFile(renderOutputPath, []byte(output), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", renderOutputPath, err)
		}
		return nil
	}

	if err := renderOnce(); err != nil {
		return err
	}
	if !renderWatch {
		return nil
	}

	watcher, err := newFileWatcher([]string{renderTemplatePath, renderDataPath}, time.Second)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	changes, err := watcher.Start()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "watching %s for changes\n", renderTemplatePath)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			// The cache would serve the stale file contents otherwise.
			engine.ClearCache()
			if err := renderOnce(); err != nil {
				fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
			}
		}
	}
}
