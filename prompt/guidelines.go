package prompt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// guidelinesFile is the on-disk shape of a style-guideline override file.
type guidelinesFile struct {
	Guidelines struct {
		Criteria []string `yaml:"criteria"`
	} `yaml:"guidelines"`
}

// LoadGuidelines reads optional style guidelines appended to every
// generation prompt. A missing path means no overrides.
func LoadGuidelines(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read guidelines file %s: %w", path, err)
	}

	var f guidelinesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse guidelines file %s: %w", path, err)
	}

	return f.Guidelines.Criteria, nil
}
