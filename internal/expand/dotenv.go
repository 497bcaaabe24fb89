package expand

import (
	"fmt"

	"github.com/joho/godotenv"
)

// FromDotenv reads KEY=VALUE files in dotenv syntax. Later files override
// earlier ones for the same key.
func FromDotenv(paths ...string) (Lookup, error) {
	vars := map[string]string{}
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", path, err)
		}
		for k, v := range values {
			vars[k] = v
		}
	}
	return FromMap(vars), nil
}
