package cli

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from the given .env files (".env" when
// none are named). Missing files are ignored and variables that are already
// set are never overwritten, so the real environment always wins.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
