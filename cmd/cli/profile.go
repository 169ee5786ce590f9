package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gocausal/adapters/excel"
	"gocausal/adapters/memory"
	"gocausal/app"
	"gocausal/internal/profiling"
)

func newProfileCmd() *cobra.Command {
	var (
		file   string
		sheet  string
		vars   []string
		format string
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Summarise the variables of a data file before discovery",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, _, err := excel.NewDataReader(file).WithSheet(sheet).WithLogger(logger).Load(vars)
			if err != nil {
				return err
			}

			svc := app.NewDiscoveryService(memory.NewRunRepository(), logger)
			profiles, err := svc.Profile(data, nil)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				out, err := json.MarshalIndent(profiles, "", "  ")
				if err != nil {
					return err
				}
				return writeOutput("", cmd.OutOrStdout(), append(out, '\n'))
			case "text":
				return writeOutput("", cmd.OutOrStdout(), []byte(textProfiles(profiles)))
			}
			return fmt.Errorf("unknown format %q", format)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Input data (.csv or .xlsx)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "XLSX sheet (default first sheet)")
	cmd.Flags().StringSliceVar(&vars, "vars", nil, "Variables to include (default all columns)")
	cmd.Flags().StringVar(&format, "format", "text", "text or json")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func textProfiles(profiles []profiling.VariableProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %6s %10s %10s %10s %10s %7s %7s\n", "variable", "n", "mean", "std", "min", "max", "skew", "kurt")
	for _, p := range profiles {
		fmt.Fprintf(&b, "%-20s %6d %10.4g %10.4g %10.4g %10.4g %7.2f %7.2f\n",
			p.Name, p.N, p.Mean, p.StdDev, p.Min, p.Max, p.Distribution.Skewness, p.Distribution.Kurtosis)
	}
	for _, w := range profiling.Warnings(profiles) {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}
	return b.String()
}
