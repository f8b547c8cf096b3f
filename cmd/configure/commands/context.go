package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pawcare/pawcare-api/internal/models"
	"gopkg.in/yaml.v3"
)

// loadContext reads a ChatContext from a JSON or YAML file. YAML is converted
// to JSON first so both formats decode through the same model rules.
func loadContext(path string) (models.ChatContext, error) {
	var c models.ChatContext
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read context file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return c, fmt.Errorf("parse YAML context: %w", err)
		}
		if data, err = json.Marshal(raw); err != nil {
			return c, fmt.Errorf("convert YAML context: %w", err)
		}
	}

	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse context: %w", err)
	}
	return c, nil
}
