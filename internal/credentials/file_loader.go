package credentials

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type credentialsFile struct {
	Tokens map[string]string `toml:"tokens"`
}

// FileLoader reads a TOML file with a [tokens] table mapping credentials ids
// to tokens. A missing file or an empty path yields no entries.
func FileLoader(path string) Loader {
	return func() (map[string]string, error) {
		vals := map[string]string{}
		if path == "" {
			return vals, nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return vals, nil
			}
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		var parsed credentialsFile
		if err := toml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("parse credentials file %s: %w", path, err)
		}
		for id, token := range parsed.Tokens {
			if token != "" {
				vals[id] = token
			}
		}
		return vals, nil
	}
}
