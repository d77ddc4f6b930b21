package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/types"
)

// Default priorities for the built-in checks. Lower runs (and reports) first.
const (
	PriorityLint     = 1
	PriorityTest     = 2
	PriorityBuild    = 3
	PrioritySecurity = 4
	PriorityBundle   = 5
)

// Detect builds the default registry for a project root by probing for tool
// marker files. Checks whose tool is not detected keep an empty command and
// are reported as skipped by the executor, so callers can see the coverage
// gap instead of silently getting a smaller registry.
func Detect(projectRoot string) (*Registry, error) {
	pkg := loadPackageJSON(projectRoot)

	descriptors := []types.CheckDescriptor{
		{
			ID:       "lint",
			Priority: PriorityLint,
			Class:    types.ClassBlocking,
			Command:  detectLintCommand(projectRoot, pkg),
		},
		{
			ID:       "test",
			Priority: PriorityTest,
			Class:    types.ClassBlocking,
			Command:  detectTestCommand(projectRoot, pkg),
		},
		{
			ID:       "build",
			Priority: PriorityBuild,
			Class:    types.ClassBlocking,
			Command:  detectBuildCommand(projectRoot, pkg),
		},
		{
			ID:           "security",
			Priority:     PrioritySecurity,
			Class:        types.ClassWarning,
			Command:      detectSecurityCommand(projectRoot),
			RetryOnError: true,
		},
		{
			ID:       "bundle",
			Priority: PriorityBundle,
			Class:    types.ClassWarning,
			Command:  detectBundleCommand(pkg),
		},
	}

	return New(descriptors)
}

// detectLintCommand probes for a configured linter.
func detectLintCommand(root string, pkg map[string]interface{}) []string {
	if hasScript(pkg, "lint") {
		return []string{"npm", "run", "lint"}
	}
	if hasAny(root, ".eslintrc", ".eslintrc.json", ".eslintrc.js", ".eslintrc.yml", "eslint.config.js", "eslint.config.mjs") {
		return []string{"npx", "eslint", "."}
	}
	if hasAny(root, "biome.json") {
		return []string{"npx", "biome", "check", "."}
	}
	if hasAny(root, ".golangci.yml", ".golangci.yaml") {
		return []string{"golangci-lint", "run"}
	}
	if hasAny(root, ".flake8") {
		return []string{"flake8", "."}
	}
	if pyprojectContains(root, "[tool.ruff]") {
		return []string{"ruff", "check", "."}
	}
	return nil
}

// detectTestCommand probes for a configured test runner.
func detectTestCommand(root string, pkg map[string]interface{}) []string {
	if hasScript(pkg, "test") {
		return []string{"npm", "test"}
	}
	if hasAny(root, "jest.config.js", "jest.config.ts", "jest.config.mjs") {
		return []string{"npx", "jest", "--passWithNoTests"}
	}
	if hasAny(root, "vitest.config.js", "vitest.config.ts", "vitest.config.mts") {
		return []string{"npx", "vitest", "run"}
	}
	if hasAny(root, "pytest.ini", "conftest.py") || pyprojectContains(root, "[tool.pytest") {
		return []string{"pytest"}
	}
	if hasAny(root, "Cargo.toml") {
		return []string{"cargo", "test"}
	}
	if hasAny(root, "go.mod") {
		return []string{"go", "test", "./..."}
	}
	return nil
}

// detectBuildCommand probes for a build step.
func detectBuildCommand(root string, pkg map[string]interface{}) []string {
	if hasAny(root, "go.mod") {
		return []string{"go", "build", "./..."}
	}
	if hasAny(root, "Cargo.toml") {
		return []string{"cargo", "build"}
	}
	if hasScript(pkg, "build") {
		return []string{"npm", "run", "build"}
	}
	return nil
}

// detectSecurityCommand probes for a secret scanner.
func detectSecurityCommand(root string) []string {
	if hasAny(root, ".gitleaks.toml") {
		return []string{"gitleaks", "detect", "--no-banner", "--exit-code", "1"}
	}
	return nil
}

// detectBundleCommand probes for a bundle-size check script.
func detectBundleCommand(pkg map[string]interface{}) []string {
	if hasScript(pkg, "bundle:check") {
		return []string{"npm", "run", "bundle:check"}
	}
	return nil
}

func hasAny(root string, names ...string) bool {
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			return true
		}
	}
	return false
}

// loadPackageJSON reads package.json, returning nil on any error. Detection
// is best effort; a malformed manifest just means no npm checks.
func loadPackageJSON(root string) map[string]interface{} {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return nil
	}
	var pkg map[string]interface{}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil
	}
	return pkg
}

func hasScript(pkg map[string]interface{}, name string) bool {
	if pkg == nil {
		return false
	}
	scripts, ok := pkg["scripts"].(map[string]interface{})
	if !ok {
		return false
	}
	script, ok := scripts[name].(string)
	return ok && script != ""
}

func pyprojectContains(root, section string) bool {
	data, err := os.ReadFile(filepath.Join(root, "pyproject.toml"))
	if err != nil {
		return false
	}
	return strings.Contains(string(data), section)
}
