package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/five82/tubeprep/internal/config"
	"github.com/five82/tubeprep/internal/deps"
	"github.com/five82/tubeprep/internal/util"
)

// FromStatus converts a binary check into a Result.
func FromStatus(s deps.Status) Result {
	if s.Available {
		return Result{Name: s.Name, Passed: true, Detail: s.Path}
	}
	detail := s.Detail
	if s.Description != "" {
		detail = fmt.Sprintf("%s (%s)", detail, s.Description)
	}
	return Result{Name: s.Name, Passed: s.Optional, Detail: detail}
}

// CheckAPIKey verifies a key is configured for the selected provider.
func CheckAPIKey(cfg config.LLM) Result {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	name := "LLM API key"
	if provider != "" {
		name = fmt.Sprintf("LLM API key (%s)", provider)
	}
	if strings.TrimSpace(cfg.APIKey) != "" {
		return Result{Name: name, Passed: true, Detail: "configured"}
	}
	return Result{
		Name:   name,
		Detail: fmt.Sprintf("missing: set %s or llm.api_key", config.APIKeyEnv(provider)),
	}
}

// CheckDirectoryAccess verifies path is a directory we can read, write and
// traverse. A missing directory passes when its parent is writable, since it
// is created on first use.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return checkCreatable(name, path)
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func checkCreatable(name, path string) Result {
	parent := filepath.Dir(path)
	for !util.DirectoryExists(parent) && filepath.Dir(parent) != parent {
		parent = filepath.Dir(parent)
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist and %s is not writable)", path, parent)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckDiskSpace fails when less than required bytes are free at path.
func CheckDiskSpace(name, path string, required uint64) Result {
	available := util.GetAvailableSpace(path)
	if available == 0 {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (unknown)", path)}
	}
	detail := fmt.Sprintf("%s free at %s", util.FormatBytes(available), path)
	if available < required {
		return Result{Name: name, Detail: fmt.Sprintf("%s, need %s", detail, util.FormatBytes(required))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}
