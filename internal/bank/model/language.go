package model

import "path/filepath"

// LanguageType is the closed set of languages the pipeline understands.
type LanguageType int

const (
	Unknown LanguageType = iota
	Rust
	Python
	TypeScript
	C
	Cpp
	Go
)

// Languages lists every supported language, Unknown excluded.
var Languages = []LanguageType{Rust, Python, TypeScript, C, Cpp, Go}

var extensionLanguages = map[string]LanguageType{
	".rs":  Rust,
	".py":  Python,
	".ts":  TypeScript,
	".tsx": TypeScript,
	".js":  TypeScript,
	".jsx": TypeScript,
	".c":   C,
	".h":   C,
	".cpp": Cpp,
	".cc":  Cpp,
	".cxx": Cpp,
	".hpp": Cpp,
	".go":  Go,
}

// DetectLanguage maps a path's extension to its language.
func DetectLanguage(path string) LanguageType {
	return extensionLanguages[filepath.Ext(path)]
}

// Extensions returns the file extensions mapped to lang.
func Extensions(lang LanguageType) []string {
	var exts []string
	for ext, l := range extensionLanguages {
		if l == lang {
			exts = append(exts, ext)
		}
	}
	return exts
}

// AllExtensions returns every recognized source extension.
func AllExtensions() []string {
	exts := make([]string, 0, len(extensionLanguages))
	for ext := range extensionLanguages {
		exts = append(exts, ext)
	}
	return exts
}

// FenceTag is the Markdown code fence tag for the language.
func (l LanguageType) FenceTag() string {
	switch l {
	case Rust:
		return "rust"
	case Python:
		return "python"
	case TypeScript:
		return "typescript"
	case C:
		return "c"
	case Cpp:
		return "cpp"
	case Go:
		return "go"
	default:
		return ""
	}
}

func (l LanguageType) String() string {
	if l == Unknown {
		return "unknown"
	}
	return l.FenceTag()
}
