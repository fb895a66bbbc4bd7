// Package config loads the optional upp.yaml configuration file of
// SPEC_FULL.md §4.9 and merges it with CLI-supplied flags.
//
// Grounded on the teacher ecosystem's general pattern of a thin
// yaml.v3-backed settings struct (the corpus's Go projects that ship a
// config file all reach for gopkg.in/yaml.v3, already in the teacher's
// go.mod); there is no protobuf-flavored config loader in
// bufbuild-protocompile itself to adapt, since protoc plugins take their
// configuration as CLI flags only.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// File is the shape of upp.yaml.
type File struct {
	Defines     []string `yaml:"defines"`
	IncludeDirs []string `yaml:"include_dirs"`
}

// Load reads and parses path. Absence of the file is not an error: Load
// returns a zero File and ok=false so the caller can distinguish "no
// config" from "config present but empty" without treating either as
// fatal.
func Load(path string) (File, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, false, nil
		}
		return File{}, false, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, false, err
	}
	return f, true, nil
}

// Merge combines a config file's lists with CLI-supplied ones. CLI
// entries are appended after file entries so that, for defines, a CLI
// -D of the same name takes precedence on the macro table's
// redefinition-replaces rule (§4.3): whichever definition the directive
// state machine processes last wins, and the driver processes defines
// in the order Merge returns them.
func Merge(f File, cliDefines, cliIncludeDirs []string) (defines, includeDirs []string) {
	defines = append(append([]string{}, f.Defines...), cliDefines...)
	includeDirs = append(append([]string{}, f.IncludeDirs...), cliIncludeDirs...)
	return defines, includeDirs
}
