package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/tubeprep/internal/history"
	"github.com/five82/tubeprep/internal/reporter"
	"github.com/five82/tubeprep/internal/util"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rep := ctx.reporterFor(cmd)
			if !cfg.History.Enabled {
				rep.Warning("Job history is disabled ([history] enabled = false)")
				return nil
			}
			jobs, err := ctx.recorder(cmd, cfg).List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				rep.OperationComplete("No jobs recorded yet")
				return nil
			}
			rep.Table(historyTable(jobs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of jobs to show")
	return cmd
}

func historyTable(jobs []history.Job) reporter.TableData {
	data := reporter.TableData{
		Title:        "Recent jobs",
		Headers:      []string{"Started", "Command", "Status", "Time", "Input", "Result"},
		RightAligned: []int{3},
	}
	for _, job := range jobs {
		elapsed := "-"
		if d := job.Duration(); d > 0 {
			elapsed = util.FormatDuration(d.Seconds())
		}
		result := job.Detail
		if job.Status == history.StatusSucceeded && job.Output != "" {
			result = filepath.Base(job.Output)
		}
		data.Rows = append(data.Rows, []string{
			job.StartedAt.Local().Format(time.DateTime),
			job.Kind,
			string(job.Status),
			elapsed,
			filepath.Base(job.Input),
			util.Truncate(result, 60),
		})
	}
	data.Title = fmt.Sprintf("%s (%d)", data.Title, len(jobs))
	return data
}
