package params

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LoadForms reads a single YAML file containing the latest row of every
// parameter form. Both the one-shot CLI and the database-backed runner
// (cmd/runner) read their forms through it; there is no forms-table reader.
func LoadForms(path string) (Forms, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Forms{}, err
	}
	var f Forms
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Forms{}, err
	}
	return f, nil
}
