package main

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/tubeprep/internal/config"
	"github.com/five82/tubeprep/internal/history"
	"github.com/five82/tubeprep/internal/logging"
	"github.com/five82/tubeprep/internal/processing"
	"github.com/five82/tubeprep/internal/reporter"
	"github.com/five82/tubeprep/internal/util"
)

// scratchMaxAge is how old a leftover scratch directory must be before it is removed.
const scratchMaxAge = 24 * time.Hour

// commandContext carries the persistent flags and the resources shared by
// the subcommands of one invocation.
type commandContext struct {
	configFlag string
	verbose    bool
	jsonOutput bool
	logDirFlag string
	noLog      bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	reporter reporter.Reporter
	runLog   *logging.RunLog
	history  history.Recorder
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config, c.configPath, c.configExists = cfg, path, exists
	})
	return c.config, c.configErr
}

func (c *commandContext) debug() bool {
	return c.verbose || config.DebugEnabled()
}

// reporterFor returns the reporter for this invocation, writing to the
// command's output streams.
func (c *commandContext) reporterFor(cmd *cobra.Command) reporter.Reporter {
	if c.reporter != nil {
		return c.reporter
	}
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	switch {
	case c.jsonOutput && out == os.Stdout:
		c.reporter = reporter.NewJSONReporter()
	case c.jsonOutput:
		c.reporter = reporter.NewJSONReporterWithWriter(out)
	case out == os.Stdout && errOut == os.Stderr:
		c.reporter = reporter.NewTerminalReporter(c.verbose)
	default:
		term := reporter.NewTerminalReporterWithWriters(out, errOut)
		term.SetVerbose(c.verbose)
		c.reporter = term
	}
	return c.reporter
}

// setupLogging opens the run log once. Failures fall back to stderr logging.
func (c *commandContext) setupLogging(cmd *cobra.Command, cfg *config.Config) {
	if c.runLog != nil {
		return
	}
	if c.noLog {
		if c.debug() {
			logging.Init(logging.LevelDebug, cmd.ErrOrStderr())
		}
		return
	}
	logDir := cfg.Paths.LogDir
	if dir := strings.TrimSpace(c.logDirFlag); dir != "" {
		if expanded, err := config.ExpandPath(dir); err == nil {
			logDir = expanded
		}
	}
	runLog, err := logging.Setup(logDir, c.debug(), false)
	if err != nil {
		c.reporterFor(cmd).Warning("Run log disabled: " + err.Error())
		return
	}
	c.runLog = runLog
	sys := util.GetSystemInfo()
	logging.Debug("configuration loaded", "path", c.configPath, "exists", c.configExists)
	logging.Debug("host", "hostname", sys.Hostname, "cpus", sys.NumCPU, "os", sys.OS, "arch", sys.Arch)
}

// recorder opens the job history. A broken database disables history with a
// warning rather than failing the command.
func (c *commandContext) recorder(cmd *cobra.Command, cfg *config.Config) history.Recorder {
	if c.history != nil {
		return c.history
	}
	rec, err := history.OpenRecorder(cfg.History.Enabled, cfg.Paths.HistoryDB)
	if err != nil {
		c.reporterFor(cmd).Warning("Job history disabled: " + err.Error())
		rec = history.Nop{}
	}
	c.history = rec
	return rec
}

// orchestrator wires logging, reporting and history for an operation.
func (c *commandContext) orchestrator(cmd *cobra.Command) (*processing.Orchestrator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.setupLogging(cmd, cfg)
	rep := c.reporterFor(cmd)
	if jr, ok := rep.(*reporter.JSONReporter); ok {
		logging.Debug("json events enabled", "run_id", jr.RunID())
	}
	orch := processing.New(cfg, rep, c.recorder(cmd, cfg))
	if err := orch.PrepareScratch(scratchMaxAge); err != nil {
		return nil, err
	}
	return orch, nil
}

func (c *commandContext) close() {
	if c.history != nil {
		if err := c.history.Close(); err != nil {
			logging.Warn("close history", "error", err)
		}
		c.history = nil
	}
	if c.runLog != nil {
		_ = c.runLog.Close()
		c.runLog = nil
	}
}
