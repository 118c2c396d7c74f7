package parser

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// SourceExtension is appended to import names that lack it.
const SourceExtension = ".sophia"

// PreprocessImports splices every `import "name";` line with the contents
// of name relative to baseDir. Imports inside imported files are resolved
// against their own directory, and a file is spliced at most once.
func PreprocessImports(code string, baseDir string) (string, error) {
	return preprocess(code, baseDir, map[string]bool{})
}

func preprocess(code string, baseDir string, seen map[string]bool) (string, error) {
	lines := strings.Split(code, "\n")
	var result []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "import ") && !strings.HasPrefix(trimmed, "import\"") {
			result = append(result, line)
			continue
		}

		filename := strings.Trim(strings.TrimPrefix(trimmed, "import"), " \";")
		if !strings.HasSuffix(filename, SourceExtension) {
			filename += SourceExtension
		}

		importPath := filepath.Join(baseDir, filename)
		abs, err := filepath.Abs(importPath)
		if err != nil {
			return "", errors.Wrapf(err, "failed to import %s", filename)
		}
		if seen[abs] {
			result = append(result, "")
			continue
		}
		seen[abs] = true

		content, err := os.ReadFile(importPath)
		if err != nil {
			return "", errors.Wrapf(err, "failed to import %s", filename)
		}
		spliced, err := preprocess(string(content), filepath.Dir(importPath), seen)
		if err != nil {
			return "", err
		}
		result = append(result, spliced)
	}

	return strings.Join(result, "\n"), nil
}
