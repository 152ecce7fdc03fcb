package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/voidshard/era5d/pkg/errors"
)

const (
	DefaultURL = "https://cds.climate.copernicus.eu/api"

	envURL = "CDSAPI_URL"
	envKey = "CDSAPI_KEY"
	envRC  = "CDSAPI_RC"
	rcName = ".cdsapirc"
)

// Credentials for the archive API.
type Credentials struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

// LoadCredentials reads credentials from CDSAPI_URL / CDSAPI_KEY, falling back to
// the file named by CDSAPI_RC or ~/.cdsapirc. The key alone is enough; the URL
// defaults to DefaultURL.
func LoadCredentials() (*Credentials, error) {
	if key := os.Getenv(envKey); key != "" {
		return (&Credentials{URL: os.Getenv(envURL), Key: key}).sanitize(), nil
	}

	path := os.Getenv(envRC)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: no %s set and no home directory: %v", errors.ErrExternalService, envKey, err)
		}
		path = filepath.Join(home, rcName)
	}

	creds, err := readRC(path)
	if err != nil {
		return nil, err
	}
	if url := os.Getenv(envURL); url != "" {
		creds.URL = url
	}
	return creds.sanitize(), nil
}

// readRC parses a cdsapirc file, which is a flat "url: ..." / "key: ..." document.
func readRC(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: missing configuration file %s: %v", errors.ErrExternalService, path, err)
	}
	creds := &Credentials{}
	err = yaml.Unmarshal(data, creds)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot parse %s: %v", errors.ErrExternalService, path, err)
	}
	if creds.Key == "" {
		return nil, fmt.Errorf("%w: no key found in %s", errors.ErrExternalService, path)
	}
	return creds, nil
}

func (c *Credentials) sanitize() *Credentials {
	c.Key = strings.TrimSpace(c.Key)
	c.URL = strings.TrimRight(strings.TrimSpace(c.URL), "/")
	if c.URL == "" {
		c.URL = DefaultURL
	}
	return c
}
