package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/synthdata/internal/engine"
	"github.com/gyaneshwarpardhi/synthdata/internal/spec"
)

var validateCmd = &cobra.Command{
	Use:   "validate <spec-file>...",
	Short: "Check DataSpec files and list definitions that will degrade",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			s, _, err := spec.LoadFile(path)
			if err == nil {
				err = spec.Validate(s)
			}
			if err != nil {
				failed++
				fmt.Fprintf(os.Stdout, "FAIL %s\n  %v\n", path, err)
				continue
			}
			fmt.Fprintf(os.Stdout, "OK   %s (%d entities, %d columns, domain %s)\n",
				path, len(s.Entities), len(s.EventStreamTable.Columns), engine.InferDomain(s))
			for _, w := range spec.Lint(s) {
				fmt.Fprintf(os.Stdout, "  warning: %s\n", w)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d specs invalid", failed, len(args))
		}
		return nil
	},
}
