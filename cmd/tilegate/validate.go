package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/portolan-hq/tilegate/pkg/chartconfig"
	"github.com/portolan-hq/tilegate/pkg/cli"
	"github.com/portolan-hq/tilegate/pkg/config"
)

var validateFlags struct {
	output  string
	offline bool
}

// chartCheck is the validation result for one chart configuration.
type chartCheck struct {
	File   string `json:"file"`
	Valid  bool   `json:"valid"`
	Layers int    `json:"layers"`
	Error  string `json:"error,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate [chart-config...]",
	Short: "Validate chart configurations",
	Long: `Validate the server configuration and one or more chart configurations.

Each chart configuration is loaded, its base chain resolved, and the
merged document checked the same way the running server would before a
rebuild. With no arguments the configured chart configuration is
checked.

Exit code 0 means every file is valid.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateFlags.output, "output", "o", "text", "output format: text, json, csv")
	validateCmd.Flags().BoolVar(&validateFlags.offline, "offline", false, "validate the offline chart variant")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(validateFlags.output)
	if err != nil {
		return cli.NewConfigError("output", err.Error())
	}

	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	files := args
	if len(files) == 0 {
		files = []string{cfg.Charts.ConfigPath}
	}

	if format == cli.FormatText {
		fmt.Println("✓ Server configuration valid")
	}

	var progress cli.ProgressReporter
	if format == cli.FormatText && len(files) > 1 {
		progress = cli.NewProgressReporter(os.Stdout)
		progress.Start(int64(len(files)))
	}

	results := make([]chartCheck, 0, len(files))
	for i, f := range files {
		check := chartCheck{File: f, Valid: true}
		_, mapping, err := chartconfig.Prepare(chartconfig.PrepareOptions{
			Path:    f,
			Offline: validateFlags.offline,
		})
		if err != nil {
			check.Valid = false
			check.Error = err.Error()
		} else {
			check.Layers = len(mapping)
		}
		results = append(results, check)
		if progress != nil {
			progress.Update(int64(i + 1))
		}
	}
	if progress != nil {
		progress.Finish()
	}

	bad := 0
	for _, r := range results {
		if !r.Valid {
			bad++
		}
	}

	switch format {
	case cli.FormatJSON:
		formatter := &cli.JSONFormatter{Indent: true}
		if err := formatter.FormatTo(os.Stdout, results); err != nil {
			return cli.NewCommandError("validate", err)
		}
	case cli.FormatCSV:
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			status := "ok"
			if !r.Valid {
				status = "invalid"
			}
			rows = append(rows, []string{r.File, status, strconv.Itoa(r.Layers), r.Error})
		}
		formatter := &cli.CSVFormatter{Headers: []string{"file", "status", "layers", "error"}}
		if err := formatter.FormatTo(os.Stdout, rows); err != nil {
			return cli.NewCommandError("validate", err)
		}
	default:
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s (%d cache-backed layers)\n", r.File, r.Layers)
			} else {
				fmt.Printf("✗ %s: %s\n", r.File, r.Error)
			}
		}
	}

	if bad > 0 {
		return cli.NewCommandError("validate", fmt.Errorf("%d of %d chart configurations invalid", bad, len(files)))
	}
	return nil
}
