package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/preflight"
	"github.com/five82/tubeprep/internal/reporter"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check dependencies and environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			workDir, _ := os.Getwd()
			results := preflight.RunAll(cfg, workDir)

			rep := ctx.reporterFor(cmd)
			rep.Table(doctorTable(results))
			if failed := preflight.Failed(results); failed > 0 {
				return errors.NewOperationFailedError(fmt.Sprintf("%d of %d checks failed", failed, len(results)), nil)
			}
			rep.OperationComplete("All checks passed")
			return nil
		},
	}
}

func doctorTable(results []preflight.Result) reporter.TableData {
	data := reporter.TableData{
		Title:   "Environment",
		Headers: []string{"Check", "Status", "Detail"},
	}
	for _, r := range results {
		status := "ok"
		if !r.Passed {
			status = "FAIL"
		}
		data.Rows = append(data.Rows, []string{r.Name, status, r.Detail})
	}
	return data
}
