package repo

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/nabshq/nabs/pkg/errors"
)

// Workspace is the filesystem-backed Repository.
type Workspace struct {
	root   string
	logger *log.Logger
}

// NewWorkspace creates a Workspace rooted at root.
func NewWorkspace(root string, logger *log.Logger) *Workspace {
	if logger == nil {
		logger = log.Default()
	}
	return &Workspace{root: root, logger: logger}
}

// FindWorkspace locates the workspace root by walking up from the current
// directory until it finds a WorkspaceFile, the same way git finds .git.
func FindWorkspace(logger *log.Logger) (*Workspace, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "failed to get current working directory")
	}

	for dir := cwd; ; {
		if _, err := os.Stat(filepath.Join(dir, WorkspaceFile)); err == nil {
			if logger != nil {
				logger.Debug("found workspace", "path", dir)
			}
			return NewWorkspace(dir, logger), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, errors.New(errors.ErrCodeWorkspaceNotFound,
		"could not find %s in the current directory or any parent directory", WorkspaceFile)
}

func (w *Workspace) WorkspaceRoot() string { return w.root }

// GetContent reads the file at path below the workspace root. A missing
// file is not an error; any other read failure is.
func (w *Workspace) GetContent(path string) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(w.root, path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.Wrap(errors.ErrCodeIO, err, "failed to read %s", path)
	}
	return string(data), true, nil
}

// DiscoverPackages walks the workspace tree collecting directories that
// contain a MarkerFile. Unreadable entries are logged and skipped so one
// bad directory cannot hide the rest of the repo.
func (w *Workspace) DiscoverPackages() ([]string, error) {
	var pkgs []string
	walkErr := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("could not read path, skipping analysis for this path and its children", "path", path, "cause", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || d.Name() != MarkerFile {
			return nil
		}
		rel, err := filepath.Rel(w.root, filepath.Dir(path))
		if err != nil {
			w.logger.Warn("could not relativize package path, skipping", "path", path, "cause", err)
			return nil
		}
		pkgs = append(pkgs, filepath.ToSlash(rel))
		return nil
	})
	if walkErr != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, walkErr, "failed walking workspace %s", w.root)
	}
	sort.Strings(pkgs)
	return pkgs, nil
}
