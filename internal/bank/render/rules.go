package render

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tyrchen/codebank-sub000/internal/bank/model"
)

// Rules is the per-language token table used while rendering.
type Rules struct {
	SummaryEllipsis string
	BodyStart       string
	BodyEnd         string
	DocMarker       string
	// TestMarkers are attribute substrings that mark a test case.
	TestMarkers []string
	// TestModuleMarkers are module-name prefixes or attribute substrings that mark a test module.
	TestModuleMarkers []string
	// TestNamePrefixes mark tests by function name where the language has no test attributes.
	TestNamePrefixes []string
	// TestFilePatterns are base-name globs of files holding only tests.
	TestFilePatterns []string
	// FieldSeparator is appended to field sources in a summarized type body.
	FieldSeparator string
}

var (
	rustRules = Rules{
		SummaryEllipsis:   " { ... }",
		BodyStart:         "{",
		BodyEnd:           "}",
		DocMarker:         "///",
		TestMarkers:       []string{"#[test]", "#[cfg(test)]"},
		TestModuleMarkers: []string{"#[cfg(test)]", "tests"},
		FieldSeparator:    ",",
	}

	pythonRules = Rules{
		SummaryEllipsis:   ": ...",
		BodyStart:         ":",
		BodyEnd:           "",
		DocMarker:         "#",
		TestMarkers:       []string{"@pytest", "test_"},
		TestModuleMarkers: []string{"test_"},
		TestFilePatterns:  []string{"test_*.py", "*_test.py"},
	}

	typeScriptRules = Rules{
		SummaryEllipsis:   " { ... }",
		BodyStart:         "{",
		BodyEnd:           "}",
		DocMarker:         "//",
		TestMarkers:       []string{"@test", "test_"},
		TestModuleMarkers: []string{"test_"},
		TestFilePatterns:  []string{"*.test.*", "*.spec.*"},
		FieldSeparator:    ";",
	}

	cRules = Rules{
		SummaryEllipsis:   " { ... }",
		BodyStart:         "{",
		BodyEnd:           "}",
		DocMarker:         "//",
		TestMarkers:       []string{"@test", "test_"},
		TestModuleMarkers: []string{"test_"},
		FieldSeparator:    ";",
	}

	goRules = Rules{
		SummaryEllipsis:  " { ... }",
		BodyStart:        "{",
		BodyEnd:          "}",
		DocMarker:        "//",
		TestNamePrefixes: []string{"Test", "Benchmark", "Fuzz", "Example"},
		TestFilePatterns: []string{"*_test.go"},
	}

	unknownRules = Rules{
		SummaryEllipsis: "...",
		DocMarker:       "//",
	}
)

// RulesFor returns the rules of lang.
func RulesFor(lang model.LanguageType) Rules {
	switch lang {
	case model.Rust:
		return rustRules
	case model.Python:
		return pythonRules
	case model.TypeScript:
		return typeScriptRules
	case model.C, model.Cpp:
		return cRules
	case model.Go:
		return goRules
	default:
		return unknownRules
	}
}

// IsTestFunction reports whether any attribute contains a test marker.
func (r Rules) IsTestFunction(attrs []string) bool {
	for _, attr := range attrs {
		for _, marker := range r.TestMarkers {
			if strings.Contains(attr, marker) {
				return true
			}
		}
	}
	return false
}

// IsTestFunctionNamed extends IsTestFunction with the language's test-name
// conventions (e.g. Go's TestXxx).
func (r Rules) IsTestFunctionNamed(name string, attrs []string) bool {
	if r.IsTestFunction(attrs) {
		return true
	}
	for _, prefix := range r.TestNamePrefixes {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := name[len(prefix):]
		if rest == "" || rest[0] == '_' {
			return true
		}
		first, _ := utf8.DecodeRuneInString(rest)
		if !unicode.IsLower(first) {
			return true
		}
	}
	return false
}

// IsTestModule reports whether a module is a test module by name prefix or attribute.
func (r Rules) IsTestModule(name string, attrs []string) bool {
	for _, marker := range r.TestModuleMarkers {
		if strings.HasPrefix(name, marker) {
			return true
		}
		for _, attr := range attrs {
			if strings.Contains(attr, marker) {
				return true
			}
		}
	}
	return false
}

// IsTestFile reports whether path names a file that only holds tests.
func (r Rules) IsTestFile(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range r.TestFilePatterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// isTestAttribute reports whether attr is exactly one of the test markers.
func (r Rules) isTestAttribute(attr string) bool {
	for _, marker := range r.TestMarkers {
		if attr == marker {
			return true
		}
	}
	return false
}

// FormatSignature returns the signature followed by the summary ellipsis. When
// signature is empty it is derived from source by cutting before the first
// body-open marker outside of brackets. A bodiless declaration ending in ';'
// is returned as written.
func (r Rules) FormatSignature(source, signature string) string {
	if decl := strings.TrimSpace(source); strings.HasSuffix(decl, ";") && findBodyStart(decl, r.BodyStart) < 0 {
		return decl
	}
	sig := strings.TrimSpace(signature)
	if sig == "" {
		sig = strings.TrimSpace(source)
		if idx := findBodyStart(sig, r.BodyStart); idx >= 0 {
			sig = strings.TrimRight(sig[:idx], " \t\r\n")
		}
	}
	return sig + r.SummaryEllipsis
}

// findBodyStart returns the index of marker at bracket depth zero, or -1.
func findBodyStart(s, marker string) int {
	if marker == "" {
		return -1
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
			continue
		case ')', ']':
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth == 0 && strings.HasPrefix(s[i:], marker) {
			return i
		}
	}
	return -1
}
