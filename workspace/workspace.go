// Package workspace discovers and loads a chigraph workspace: the directory
// tree rooted at a `.chigraphworkspace` marker file, configured by an
// adjacent `chi-workspace.toml` sidecar. Grounded on the teacher's
// `mods/load.go`, which reads a module's TOML file the same way; unlike the
// teacher, chigraph's per-module wire format is JSON (spec section 6, see
// package jsonmod), so this package's TOML use is limited to workspace-level
// configuration, not module contents.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"chigraph/common"
)

// tomlWorkspace mirrors chi-workspace.toml's shape.
type tomlWorkspace struct {
	Workspace *tomlWorkspaceBody `toml:"workspace"`
}

type tomlWorkspaceBody struct {
	Name           string `toml:"name"`
	CacheDirectory string `toml:"cache-directory,omitempty"`
	ChigraphVer    string `toml:"chigraph-version"`
}

// Config is a loaded workspace's settings.
type Config struct {
	Root           string
	Name           string
	CacheDirectory string
}

// FromChildPath walks path and its ancestors looking for a
// `.chigraphworkspace` marker file, returning the directory that contains it
// or "" if none is found before reaching the filesystem root (spec's
// original_source-observed `workspaceFromChildPath` semantics).
func FromChildPath(path string) string {
	dir, err := filepath.Abs(path)
	if err != nil {
		return ""
	}

	for {
		marker := filepath.Join(dir, common.WorkspaceMarkerFile)
		if _, err := os.Stat(marker); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load reads chi-workspace.toml from root. A missing sidecar is not an
// error: it yields a Config with only Root and a derived default Name (the
// marker file alone is sufficient to establish a workspace, per spec
// section 6; the sidecar only adds cache/versioning settings).
func Load(root string) (*Config, error) {
	cfg := &Config{Root: root, Name: filepath.Base(root)}

	sidecar := filepath.Join(root, common.WorkspaceConfigFile)
	data, err := os.ReadFile(sidecar)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	tw := &tomlWorkspace{}
	if err := toml.Unmarshal(data, tw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", sidecar, err)
	}
	if tw.Workspace == nil {
		return cfg, nil
	}

	if tw.Workspace.Name != "" {
		cfg.Name = tw.Workspace.Name
	}
	cfg.CacheDirectory = tw.Workspace.CacheDirectory

	return cfg, nil
}
