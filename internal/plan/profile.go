package plan

import (
	"encoding/json"
	"os"

	"github.com/declpg/declpg/internal/pgerrors"
)

// GenerationOptions are the nested flags of spec.md §6.2.
type GenerationOptions struct {
	AlwaysRecreateFunction bool `json:"always_recreate_function"`
	ForceExtensionUpgrade  bool `json:"force_extension_upgrade"`
}

// Profile is the publish profile of spec.md §6.2: policy flags that
// parameterize the planner. Unknown keys are accepted silently by
// encoding/json — the spec treats them as a warning, not a fatal error, and
// nothing downstream of decoding reads them, so there is nothing to warn
// about here beyond what a caller chooses to log.
type Profile struct {
	Version           string            `json:"version"`
	AllowDrops        bool              `json:"allow_drops"`
	GenerationOptions GenerationOptions `json:"generation_options"`
}

// DefaultProfile returns the zero-value profile: no version, drops
// disallowed, no generation overrides — the conservative default of
// spec.md §6.2.
func DefaultProfile() *Profile {
	return &Profile{}
}

// LoadProfile reads and decodes a publish profile from path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &pgerrors.IOError{Path: path, Err: err}
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &pgerrors.FormatError{Path: path, Message: err.Error()}
	}
	return &p, nil
}
