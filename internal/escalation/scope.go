package escalation

import (
	"context"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/Bang-isme/CodexAI---Skills-sub001/internal/types"
)

// maxGraphFiles caps the reference-graph walk. Beyond this the blast radius
// is reported as estimated rather than exhaustive.
const maxGraphFiles = 5000

// Classifier computes the scope of the current change from the set of
// touched files. The classification is recomputed on every call so a
// changed file set can never be paired with a stale blast radius.
type Classifier struct {
	projectRoot string
}

// NewClassifier creates a classifier rooted at the project directory.
func NewClassifier(projectRoot string) *Classifier {
	if projectRoot == "" {
		projectRoot = "."
	}
	return &Classifier{projectRoot: projectRoot}
}

// Classify computes a ScopeClassification for the changed files. When the
// caller supplies no file list, the change set comes from git. The blast
// radius is a best-effort count of files that import packages containing
// the changed files, built from a static reference graph of the project.
func (c *Classifier) Classify(ctx context.Context, changedFiles []string) (types.ScopeClassification, error) {
	if len(changedFiles) == 0 {
		detected, err := c.gitChangedFiles(ctx)
		if err == nil {
			changedFiles = detected
		}
		// No git or no repo: an empty change set classifies as small with
		// zero blast radius, which never escalates.
	}

	blast, estimated := c.blastRadius(changedFiles)

	scope := types.ScopeClassification{
		FileCount:   len(changedFiles),
		BlastRadius: blast,
		Estimated:   estimated,
	}
	scope.Tier = types.ClassifyTier(scope.FileCount, scope.BlastRadius)
	return scope, nil
}

// gitChangedFiles lists files touched relative to HEAD.
func (c *Classifier) gitChangedFiles(ctx context.Context) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--name-only", "HEAD")
	cmd.Dir = c.projectRoot
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// blastRadius counts the files that directly depend on the packages holding
// the changed files. Returns (0, true) when no reference graph can be built
// for the project, so callers see an estimate rather than a false zero.
func (c *Classifier) blastRadius(changedFiles []string) (int, bool) {
	modulePath := c.modulePath()
	if modulePath == "" {
		return 0, true
	}

	changedDirs := make(map[string]bool)
	changedSet := make(map[string]bool)
	for _, file := range changedFiles {
		rel := filepath.ToSlash(filepath.Clean(file))
		changedSet[rel] = true
		if strings.HasSuffix(rel, ".go") {
			changedDirs[dirOf(rel)] = true
		}
	}
	if len(changedDirs) == 0 {
		return 0, false
	}

	// Import paths of every package containing a changed file.
	changedPkgs := make(map[string]bool)
	for dir := range changedDirs {
		if dir == "." {
			changedPkgs[modulePath] = true
		} else {
			changedPkgs[modulePath+"/"+dir] = true
		}
	}

	fset := token.NewFileSet()
	dependents := make(map[string]bool)
	visited := 0
	truncated := false

	_ = filepath.WalkDir(c.projectRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if name == ".git" || name == "vendor" || name == "node_modules" || strings.HasPrefix(name, "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		if visited >= maxGraphFiles {
			truncated = true
			return filepath.SkipAll
		}
		visited++

		rel, relErr := filepath.Rel(c.projectRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if changedSet[rel] {
			return nil
		}

		src, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			return nil
		}

		for _, imp := range src.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if changedPkgs[importPath] {
				dependents[rel] = true
				break
			}
		}
		return nil
	})

	return len(dependents), truncated
}

// modulePath reads the module path from go.mod, or "" for non-Go projects.
func (c *Classifier) modulePath() string {
	data, err := os.ReadFile(filepath.Join(c.projectRoot, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}

func dirOf(rel string) string {
	dir := filepath.ToSlash(filepath.Dir(rel))
	if dir == "" {
		return "."
	}
	return dir
}
