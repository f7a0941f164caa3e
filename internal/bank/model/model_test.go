package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for the structural model:
// - DetectLanguage maps every known extension and falls back to Unknown
// - FenceTag matches the Markdown tags used in the digest
// - Visibility zero value is Public and projects per language
// - ImplUnit distinguishes trait impls by " for "
// - DeclareKind renders its tag name

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path  string
		lang  LanguageType
		fence string
	}{
		{"src/lib.rs", Rust, "rust"},
		{"app.py", Python, "python"},
		{"index.ts", TypeScript, "typescript"},
		{"view.tsx", TypeScript, "typescript"},
		{"main.js", TypeScript, "typescript"},
		{"comp.jsx", TypeScript, "typescript"},
		{"lib.c", C, "c"},
		{"lib.h", C, "c"},
		{"shape.cpp", Cpp, "cpp"},
		{"shape.cc", Cpp, "cpp"},
		{"shape.cxx", Cpp, "cpp"},
		{"shape.hpp", Cpp, "cpp"},
		{"main.go", Go, "go"},
		{"README.md", Unknown, ""},
		{"Makefile", Unknown, ""},
		{"upper.RS", Unknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			lang := DetectLanguage(tt.path)
			assert.Equal(t, tt.lang, lang)
			assert.Equal(t, tt.fence, lang.FenceTag())
		})
	}
}

func TestExtensions(t *testing.T) {
	t.Parallel()

	assert.ElementsMatch(t, []string{".ts", ".tsx", ".js", ".jsx"}, Extensions(TypeScript))
	assert.ElementsMatch(t, []string{".go"}, Extensions(Go))
	assert.Len(t, AllExtensions(), 13)
}

func TestVisibility(t *testing.T) {
	t.Parallel()

	var zero Visibility
	assert.True(t, zero.IsPublic())
	assert.Equal(t, Public, zero)

	assert.Equal(t, "pub", Public.AsStr(Rust))
	assert.Equal(t, "pub(crate)", Crate.AsStr(Rust))
	assert.Equal(t, "pub(in crate::model)", Restricted("in crate::model").AsStr(Rust))
	assert.Equal(t, "", Private.AsStr(Rust))

	assert.Equal(t, "", Public.AsStr(Python))
	assert.Equal(t, "", Private.AsStr(Go))
	assert.Equal(t, "private", Private.AsStr(TypeScript))
	assert.Equal(t, "protected", Protected.AsStr(Cpp))

	assert.Equal(t, "restricted(super)", Restricted("super").String())
	assert.False(t, Crate.IsPublic())
}

func TestImplUnit_IsTraitImpl(t *testing.T) {
	t.Parallel()

	inherent := ImplUnit{Head: "impl<T> Wrapper<T>"}
	trait := ImplUnit{Head: "impl Display for Wrapper"}
	goMethods := ImplUnit{Head: "methods for Server"}

	assert.False(t, inherent.IsTraitImpl())
	assert.True(t, trait.IsTraitImpl())
	// Go receiver groups carry " for " in their head too.
	assert.True(t, goMethods.IsTraitImpl())
}

func TestDeclareKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "import", DeclareImport.String())
	assert.Equal(t, "use", DeclareUse.String())
	assert.Equal(t, "mod", DeclareMod.String())
	assert.Equal(t, "macro", DeclareOther("macro").String())
	assert.Equal(t, DeclareOther("const"), DeclareKind{Tag: DeclareKindOther, Name: "const"})
}

func TestModuleUnit_IsEmpty(t *testing.T) {
	t.Parallel()

	m := ModuleUnit{Name: "empty"}
	assert.True(t, m.IsEmpty())

	m.Functions = append(m.Functions, FunctionUnit{Name: "f"})
	assert.False(t, m.IsEmpty())
}
