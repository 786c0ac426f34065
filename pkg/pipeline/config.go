package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/gangsheet/pkg/errors"
)

// LoadOptions reads run configuration from a .toml, .yaml/.yml or .json file.
// Unset fields keep their zero value; defaults are applied later by
// [Options.ValidateAndSetDefaults].
//
// A minimal TOML file:
//
//	roll_width  = 58
//	page_length = 150
//
//	[[categories]]
//	category = "sleeve"
//	width    = 9
//	aliases  = ["Manga (9 cm)"]
func LoadOptions(path string) (Options, error) {
	var opts Options

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &opts)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &opts)
	case ".json":
		err = json.Unmarshal(data, &opts)
	default:
		return opts, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q (want .toml, .yaml or .json)", ext)
	}
	if err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return opts, nil
}
