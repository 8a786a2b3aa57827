// Package configs provides embedded configuration templates for devmind.
//
// Templates are embedded at build time via go:embed so they are
// available from every distribution channel (go install, binary
// release, package manager) without relying on a file living next to
// the binary.
//
// Configuration hierarchy (see internal/config/config.go Load()):
//  1. Hardcoded defaults (internal/config/config.go NewConfig())
//  2. User config (~/.config/devmind/config.yaml)
//  3. Project config (.devmind.yaml)
//  4. Environment variables (DEVMIND_*)
package configs

import _ "embed"

// UserConfigTemplate is an example of ~/.config/devmind/config.yaml. It
// holds machine-wide settings: embedding model choice, keyword backend,
// performance tuning.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is an example of .devmind.yaml in a project root.
// It holds project-specific settings such as ignored patterns and quality
// threshold, meant to be version-controlled.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
