// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LocalDir is one server-local directory users may analyze files from.
type LocalDir struct {
	Label string `yaml:"label" json:"label"`
	Path  string `yaml:"path"  json:"path"`
}

// LocalDirDoc is the parsed local-directory config plus its raw content,
// which the UI renders verbatim.
type LocalDirDoc struct {
	Path    string     `json:"path"`
	Content string     `json:"content"`
	Dirs    []LocalDir `json:"dirs"`
}

type localDirFile struct {
	Dirs []LocalDir `yaml:"dirs"`
}

// LoadLocalDirs reads and parses the local-directory config file.
func LoadLocalDirs(path string) (*LocalDirDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read local dir config: %w", err)
	}

	var parsed localDirFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse local dir config: %w", err)
	}

	return &LocalDirDoc{
		Path:    path,
		Content: string(data),
		Dirs:    parsed.Dirs,
	}, nil
}
