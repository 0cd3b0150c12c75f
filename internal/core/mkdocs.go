package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MkDocsFileName is the site generator's configuration file.
const MkDocsFileName = "mkdocs.yml"

// ReadSiteDir returns the site_dir setting from a mkdocs.yml file.
// Returns "" if the file does not exist or does not set site_dir.
//
// The file is walked as a yaml.Node rather than decoded into a struct:
// MkDocs configs routinely carry Python-specific tags
// (!!python/name:...) that a typed decode would choke on.
func ReadSiteDir(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", MkDocsFileName, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("parsing %s: %w", MkDocsFileName, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return "", nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return "", nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if key.Value == "site_dir" && val.Kind == yaml.ScalarNode {
			return val.Value, nil
		}
	}
	return "", nil
}
