package detect

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ProjectInfo returns the permanently-cached project metadata for
// canonicalPath, computing it on first request. Detection order: go.mod,
// then package.json, then pyproject.toml, then a directory-name fallback
// typed "unknown". Never returns nil.
func (d *Detector) ProjectInfo(canonicalPath string) *ProjectInfo {
	d.projectMu.Lock()
	if cached, ok := d.projectCache[canonicalPath]; ok {
		d.projectMu.Unlock()
		return cached
	}
	d.projectMu.Unlock()

	info := d.computeProjectInfo(canonicalPath)

	d.projectMu.Lock()
	d.projectCache[canonicalPath] = info
	d.projectMu.Unlock()

	return info
}

func (d *Detector) computeProjectInfo(rootPath string) *ProjectInfo {
	if info := d.detectGoMod(rootPath); info != nil {
		return info
	}
	if info := d.detectPackageJSON(rootPath); info != nil {
		return info
	}
	if info := d.detectPyproject(rootPath); info != nil {
		return info
	}
	return &ProjectInfo{
		Name: filepath.Base(rootPath),
		Type: "unknown",
	}
}

var goModuleRegexp = regexp.MustCompile(`^module\s+(.+)$`)

func (d *Detector) detectGoMod(rootPath string) *ProjectInfo {
	file, err := os.Open(filepath.Join(rootPath, "go.mod"))
	if err != nil {
		return nil
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if matches := goModuleRegexp.FindStringSubmatch(line); len(matches) > 1 {
			return &ProjectInfo{
				Name: filepath.Base(matches[1]),
				Type: "go",
			}
		}
	}
	return nil
}

func (d *Detector) detectPackageJSON(rootPath string) *ProjectInfo {
	data, err := os.ReadFile(filepath.Join(rootPath, "package.json"))
	if err != nil {
		return nil
	}

	var pkg struct {
		Name        string `json:"name"`
		Version     string `json:"version"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		d.logger.Warn("package.json parse failed", "path", rootPath, "error", err)
		return nil
	}
	if pkg.Name == "" {
		return nil
	}

	name := pkg.Name
	if strings.HasPrefix(name, "@") {
		if parts := strings.SplitN(name, "/", 2); len(parts) == 2 {
			name = parts[1]
		}
	}

	return &ProjectInfo{
		Name:        name,
		Version:     pkg.Version,
		Description: pkg.Description,
		Type:        "node",
	}
}

var (
	pyNameRegexp    = regexp.MustCompile(`^\s*name\s*=\s*["']([^"']+)["']`)
	pyVersionRegexp = regexp.MustCompile(`^\s*version\s*=\s*["']([^"']+)["']`)
)

func (d *Detector) detectPyproject(rootPath string) *ProjectInfo {
	file, err := os.Open(filepath.Join(rootPath, "pyproject.toml"))
	if err != nil {
		return nil
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	inProjectSection := false
	info := &ProjectInfo{Type: "python"}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") {
			inProjectSection = trimmed == "[project]" || trimmed == "[tool.poetry]"
			continue
		}
		if !inProjectSection {
			continue
		}
		if matches := pyNameRegexp.FindStringSubmatch(line); len(matches) > 1 {
			info.Name = matches[1]
		}
		if matches := pyVersionRegexp.FindStringSubmatch(line); len(matches) > 1 {
			info.Version = matches[1]
		}
	}

	if info.Name == "" {
		return nil
	}
	return info
}
