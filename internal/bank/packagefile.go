package bank

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// packageFiles are the manifest names looked up for the package section, in priority order.
var packageFiles = []string{
	"Cargo.toml",
	"pyproject.toml",
	"setup.py",
	"requirements.txt",
	"package.json",
	"CMakeLists.txt",
	"Makefile",
	"go.mod",
}

// maxPackageFileDepth is how many parent directories above the root are searched.
const maxPackageFileDepth = 3

// packageFileFence maps a manifest name to its code fence tag.
func packageFileFence(name string) string {
	switch name {
	case "Cargo.toml", "pyproject.toml":
		return "toml"
	case "setup.py":
		return "python"
	case "requirements.txt":
		return "text"
	case "package.json":
		return "json"
	case "CMakeLists.txt":
		return "cmake"
	case "Makefile":
		return "makefile"
	case "go.mod":
		return "go.mod"
	default:
		return ""
	}
}

// findPackageFile returns the path of the first manifest found in rootDir or
// one of its parents, or "" when there is none. Parents of a relative root
// are only visited as far as the path spells them out.
func findPackageFile(fs afero.Fs, rootDir string) string {
	dir := filepath.Clean(rootDir)
	for depth := 0; depth <= maxPackageFileDepth; depth++ {
		for _, name := range packageFiles {
			candidate := filepath.Join(dir, name)
			info, err := fs.Stat(candidate)
			if err == nil && !info.IsDir() {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
