package mapping

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed profiles/*.yaml
var embeddedProfiles embed.FS

// DDIProfileName is the name of the embedded DDI mapping profile.
const DDIProfileName = "ddi"

// LoadEmbedded loads one of the profiles shipped with the binary.
func LoadEmbedded(name string) (*Profile, error) {
	data, err := embeddedProfiles.ReadFile("profiles/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown embedded profile %q", name)
	}
	return parseProfile(data)
}

// LoadProfile loads a profile from a file path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}
	return parseProfile(data)
}

// DefaultFieldSet compiles the embedded DDI profile.
func DefaultFieldSet() (*FieldSet, error) {
	p, err := LoadEmbedded(DDIProfileName)
	if err != nil {
		return nil, err
	}
	return p.Build()
}

func parseProfile(data []byte) (*Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing profile YAML: %w", err)
	}
	if len(profile.Fields) == 0 {
		return nil, fmt.Errorf("profile declares no fields")
	}
	return &profile, nil
}
