// Package organizer copies the files needed for editing out of a ScreenStudio
// project into a folder named after the video title.
package organizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/text/unicode/norm"

	"github.com/five82/tubeprep/internal/config"
	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/fileutil"
	"github.com/five82/tubeprep/internal/logging"
	"github.com/five82/tubeprep/internal/recording"
	"github.com/five82/tubeprep/internal/util"
)

const lockRetryDelay = 100 * time.Millisecond

var (
	unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	separators  = regexp.MustCompile(`[-\s]+`)
)

// Result describes a completed organize.
type Result struct {
	Title       string
	Source      string
	Destination string
	Copied      []string
	Missing     []string
}

// Organizer performs the copy.
type Organizer struct {
	// KeepFiles are copied from the recording directory.
	KeepFiles []string
	// MaxTitleLength caps the folder name in runes.
	MaxTitleLength int
	// OnFile is called after each file is handled.
	OnFile func(name string, copied bool)
	// LockDir holds the per-parent lock files; empty uses the system temp dir.
	LockDir string
}

// New builds an Organizer from the organize settings.
func New(cfg config.Organize) *Organizer {
	return &Organizer{KeepFiles: cfg.KeepFiles, MaxTitleLength: cfg.MaxTitleLength}
}

// SafeFolderName converts a title into a portable directory name.
func SafeFolderName(title string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = config.DefaultMaxTitleLength
	}
	name := norm.NFC.String(title)
	name = strings.TrimSpace(unsafeChars.ReplaceAllString(name, ""))
	name = separators.ReplaceAllString(name, "-")
	return util.Truncate(name, maxLen)
}

// ReadTitle returns the title stored in the SEO file of a recording directory.
func ReadTitle(recDir string) (string, error) {
	path := filepath.Join(recDir, recording.SEOFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewPathError(fmt.Sprintf("%s not found in %s", recording.SEOFile, recDir))
		}
		return "", errors.NewIOError("read seo file", err)
	}
	var payload struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", errors.NewJSONParseError(path+" is not valid JSON", err)
	}
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return "", errors.NewRecordingError(fmt.Sprintf("%s has no title", path))
	}
	return title, nil
}

// Organize copies the keep-list out of dir's recording folder into a sibling
// of the project named after the SEO title.
func (o *Organizer) Organize(ctx context.Context, dir string) (*Result, error) {
	recDir, err := recording.FindRecordingDir(dir)
	if err != nil {
		return nil, err
	}
	root := filepath.Dir(recDir)

	title, err := ReadTitle(recDir)
	if err != nil {
		return nil, err
	}
	folder := SafeFolderName(title, o.MaxTitleLength)
	if folder == "" {
		return nil, errors.NewRecordingError(fmt.Sprintf("title %q has no usable characters for a folder name", title))
	}

	parent := filepath.Dir(root)
	lock := flock.New(o.LockPath(parent))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewCancelledError()
		}
		return nil, errors.NewIOError("acquire organize lock", err)
	}
	if !locked {
		return nil, errors.NewOperationFailedError("another organize is running in "+parent, nil)
	}
	defer func() { _ = lock.Unlock() }()

	dest := uniqueDestination(parent, folder)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, errors.NewIOError("create destination", err)
	}
	logging.Info("organizing recording", "source", root, "destination", dest, "title", title)

	result := &Result{Title: title, Source: root, Destination: dest}
	for _, name := range o.keepFiles() {
		if err := ctx.Err(); err != nil {
			return result, errors.NewCancelledError()
		}
		src := filepath.Join(recDir, name)
		if !util.FileExists(src) {
			logging.Warn("file to keep not found", "file", name, "dir", recDir)
			result.Missing = append(result.Missing, name)
			o.notify(name, false)
			continue
		}
		if err := fileutil.CopyFileVerified(src, filepath.Join(dest, name)); err != nil {
			return result, errors.NewIOError("copy "+name, err)
		}
		result.Copied = append(result.Copied, name)
		o.notify(name, true)
	}
	return result, nil
}

// LockPath returns the lock file serializing organizes into parent. It lives
// outside parent so the recordings folder stays clean.
func (o *Organizer) LockPath(parent string) string {
	dir := o.LockDir
	if dir == "" {
		dir = os.TempDir()
	}
	sum := sha256.Sum256([]byte(filepath.Clean(parent)))
	return filepath.Join(dir, "tubeprep-organize-"+hex.EncodeToString(sum[:8])+".lock")
}

func (o *Organizer) keepFiles() []string {
	if len(o.KeepFiles) == 0 {
		return config.DefaultKeepFiles
	}
	return o.KeepFiles
}

func (o *Organizer) notify(name string, copied bool) {
	if o.OnFile != nil {
		o.OnFile(name, copied)
	}
}

// uniqueDestination returns parent/name, or parent/name_N for the first free N.
func uniqueDestination(parent, name string) string {
	dest := filepath.Join(parent, name)
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest
	}
	for n := 1; ; n++ {
		candidate := filepath.Join(parent, fmt.Sprintf("%s_%d", name, n))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
