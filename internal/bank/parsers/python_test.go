package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyrchen/codebank-sub000/internal/bank/model"
	"github.com/tyrchen/codebank-sub000/internal/bank/render"
)

// Test Plan for PythonParser:
// - Module docstring becomes the file doc
// - Imports become declares; module-level assignments are skipped
// - Functions carry docstrings, decorators and underscore visibility
// - Classes carry heads with bases and type parameters, methods and decorators
// - Nested sources are dedented to column zero
// - Comments above a definition are used when there is no docstring
// - Class-level assignments become fields
// - Summary rendering drops private classes

func TestPythonParser_FileLevel(t *testing.T) {
	t.Parallel()

	file := parseFixture(t, NewPythonParser, "../../../testdata/code/python/sample.py")

	assert.Equal(t, "This is a module docstring", file.Doc)
	require.Len(t, file.Declares, 3)
	assert.Equal(t, "import os", file.Declares[0].Source)
	assert.Equal(t, "from abc import ABC, abstractmethod", file.Declares[2].Source)
	for _, decl := range file.Declares {
		assert.Equal(t, model.DeclareImport, decl.Kind)
	}

	var functions []string
	for _, fn := range file.Functions {
		functions = append(functions, fn.Name)
	}
	assert.Equal(t, []string{
		"public_function", "_private_function", "decorator", "decorated_function",
		"async_function", "match_example", "type_hints_example", "f_string_example",
		"comprehensions_example",
	}, functions)

	var classes []string
	for _, st := range file.Structs {
		classes = append(classes, st.Name)
	}
	assert.Equal(t, []string{
		"BaseClass", "PublicClass", "GenericClass", "ContextManager", "PropertyExample", "MethodExample",
	}, classes)
}

func TestPythonParser_Functions(t *testing.T) {
	t.Parallel()

	file := parseFixture(t, NewPythonParser, "../../../testdata/code/python/sample.py")

	public := findFunction(file.Functions, "public_function")
	require.NotNil(t, public)
	assert.Equal(t, model.Public, public.Visibility)
	assert.Equal(t, "Public function documentation", public.Doc)
	assert.Equal(t, "def public_function(param1: str, param2: int = 0) -> str", public.Signature)
	assert.True(t, strings.HasPrefix(public.Body, ":"))
	assert.Contains(t, public.Body, `return f"{param1} {param2}"`)

	private := findFunction(file.Functions, "_private_function")
	require.NotNil(t, private)
	assert.Equal(t, model.Private, private.Visibility)

	decorated := findFunction(file.Functions, "decorated_function")
	require.NotNil(t, decorated)
	assert.Equal(t, []string{"@decorator"}, decorated.Attributes)
	assert.Equal(t, "Decorated function documentation", decorated.Doc)

	async := findFunction(file.Functions, "async_function")
	require.NotNil(t, async)
	assert.Equal(t, "async def async_function() -> None", async.Signature)

	hints := findFunction(file.Functions, "type_hints_example")
	require.NotNil(t, hints)
	assert.True(t, strings.HasPrefix(hints.Signature, "def type_hints_example("))
	assert.True(t, strings.HasSuffix(hints.Signature, ") -> None"))
}

func TestPythonParser_Classes(t *testing.T) {
	t.Parallel()

	file := parseFixture(t, NewPythonParser, "../../../testdata/code/python/sample.py")

	base := findStruct(file.Structs, "BaseClass")
	require.NotNil(t, base)
	assert.Equal(t, "class BaseClass(ABC)", base.Head)
	assert.Equal(t, "Base class with documentation", base.Doc)
	require.Len(t, base.Methods, 1)
	assert.Equal(t, "abstract_method", base.Methods[0].Name)
	assert.Equal(t, []string{"@abstractmethod"}, base.Methods[0].Attributes)
	assert.Equal(t, "Abstract method documentation", base.Methods[0].Doc)

	public := findStruct(file.Structs, "PublicClass")
	require.NotNil(t, public)
	assert.Equal(t, "class PublicClass(BaseClass)", public.Head)
	require.Len(t, public.Methods, 3)
	assert.Equal(t, model.Private, public.Methods[0].Visibility, "dunder methods start with an underscore")
	assert.Equal(t, model.Public, public.Methods[1].Visibility)
	assert.Equal(t, model.Private, public.Methods[2].Visibility)
	assert.True(t, strings.HasPrefix(public.Methods[1].Source, "def public_method"))
	assert.NotContains(t, public.Methods[1].Source, "\n    def", "method sources are dedented")
	assert.Contains(t, public.Methods[1].Source, "\n    return f\"Hello {param}\"")

	generic := findStruct(file.Structs, "GenericClass")
	require.NotNil(t, generic)
	assert.Equal(t, "class GenericClass[T]", generic.Head)

	props := findStruct(file.Structs, "PropertyExample")
	require.NotNil(t, props)
	require.Len(t, props.Methods, 2)
	assert.Equal(t, []string{"@property"}, props.Methods[0].Attributes)
	assert.Equal(t, []string{"@value.setter"}, props.Methods[1].Attributes)

	methods := findStruct(file.Structs, "MethodExample")
	require.NotNil(t, methods)
	require.Len(t, methods.Methods, 2)
	assert.Equal(t, []string{"@classmethod"}, methods.Methods[0].Attributes)
	assert.Equal(t, []string{"@staticmethod"}, methods.Methods[1].Attributes)
}

func TestPythonParser_CommentDocsAndFields(t *testing.T) {
	t.Parallel()

	source := `import sys

# Adds numbers.
def add(a, b):
    return a + b


class Config:
    port = 8080
    name: str = "svc"

    def run(self):
        pass
`
	file := parseSource(t, NewPythonParser, "app.py", source)
	assert.Empty(t, file.Doc)

	add := findFunction(file.Functions, "add")
	require.NotNil(t, add)
	assert.Equal(t, "Adds numbers.", add.Doc)
	assert.Equal(t, "def add(a, b)", add.Signature)
	assert.Equal(t, ":\n    return a + b", add.Body)

	config := findStruct(file.Structs, "Config")
	require.NotNil(t, config)
	require.Len(t, config.Fields, 2)
	assert.Equal(t, "port", config.Fields[0].Name)
	assert.Equal(t, "port = 8080", config.Fields[0].Source)
	assert.Equal(t, "name", config.Fields[1].Name)
	require.Len(t, config.Methods, 1)
}

func TestPythonParser_SummaryRendering(t *testing.T) {
	t.Parallel()

	source := `class _Priv:
    pass


class Pub:
    def m(self):
        pass
`
	file := parseSource(t, NewPythonParser, "mod.py", source)
	out := render.New(model.Python).RenderFile(file, render.Summary)

	assert.Contains(t, out, "class Pub:")
	assert.Contains(t, out, "def m(self): ...")
	assert.NotContains(t, out, "_Priv")
}

func TestPythonParser_NoTestsRendering(t *testing.T) {
	t.Parallel()

	source := `import pytest


def helper():
    return 1


@pytest.mark.parametrize("x", [1])
def check(x):
    assert x
`
	file := parseSource(t, NewPythonParser, "mod.py", source)
	out := render.New(model.Python).RenderFile(file, render.NoTests)

	assert.Contains(t, out, "def helper():\n    return 1")
	assert.NotContains(t, out, "def check")
}

func TestPythonParser_NoTestsDocstrings(t *testing.T) {
	t.Parallel()

	source := `"""Shapes."""


class Shape:
    """A drawable shape."""

    sides = 0
`
	file := parseSource(t, NewPythonParser, "shapes.py", source)
	require.Equal(t, "Shapes.", file.Doc)

	renderer := render.New(model.Python)
	out := renderer.RenderFile(file, render.NoTests)
	assert.True(t, strings.HasPrefix(out, "\"\"\"Shapes.\"\"\"\n"), out)
	assert.Equal(t, 1, strings.Count(out, "A drawable shape."))
	assert.NotContains(t, out, "# A drawable shape.")

	again := parseSource(t, NewPythonParser, "shapes.py", out)
	assert.Equal(t, "Shapes.", again.Doc)
	shape := findStruct(again.Structs, "Shape")
	require.NotNil(t, shape)
	assert.Equal(t, "A drawable shape.", shape.Doc)
	assert.Equal(t, out, renderer.RenderFile(again, render.NoTests))
}
