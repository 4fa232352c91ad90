package assembler

import (
	"encoding/json"
	"os"

	"github.com/declpg/declpg/internal/pgerrors"
)

// Manifest is the project manifest of spec.md §6.1.
type Manifest struct {
	DefaultSchema     string   `json:"default_schema"`
	IncludePaths      []string `json:"include_paths"`
	PreDeployScripts  []string `json:"pre_deploy_scripts"`
	PostDeployScripts []string `json:"post_deploy_scripts"`
}

// LoadManifest reads and validates the project manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &pgerrors.IOError{Path: path, Err: err}
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &pgerrors.FormatError{Path: path, Message: err.Error()}
	}
	if m.DefaultSchema == "" {
		return nil, &pgerrors.ProjectError{Message: "manifest " + path + " is missing default_schema"}
	}
	if len(m.IncludePaths) == 0 {
		return nil, &pgerrors.ProjectError{Message: "manifest " + path + " has no include_paths"}
	}
	return &m, nil
}
