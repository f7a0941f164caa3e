package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tyrchen/codebank-sub000/internal/bank/model"
	"github.com/tyrchen/codebank-sub000/internal/bank/render"
)

// Test Plan for C and C++ parsers:
// - Includes, defines and prototypes become declares
// - typedefs become aliases, classes and structs become structs
// - Access specifiers drive method visibility; classes start private
// - Pure virtual and inline methods are both recorded
// - Multi-declarator members split into one field each
// - Templates keep their prefix in the function signature
// - Namespaces flatten into the file with a namespace declare
// - static functions are private
// - Class sources keep their closing ';' so NoTests output parses back the same
// - Pure virtual methods summarize as written

func TestCppParser_Sample(t *testing.T) {
	t.Parallel()

	file := parseFixture(t, NewCppParser, "../../../testdata/code/cpp/sample.cpp")

	require.Len(t, file.Declares, 11)
	assert.Equal(t, "#include <stdio.h>", file.Declares[0].Source)
	assert.Equal(t, model.DeclareImport, file.Declares[0].Kind)
	assert.Equal(t, model.DeclareOther("define"), file.Declares[3].Kind)
	assert.Equal(t, "#define MAX_SIZE 100", file.Declares[3].Source)
	assert.Equal(t, model.DeclareOther("function_declaration"), file.Declares[5].Kind)
	assert.Equal(t, "void print_hello(void);", file.Declares[5].Source)

	var functions []string
	for _, fn := range file.Functions {
		functions = append(functions, fn.Name)
	}
	assert.Equal(t, []string{
		"main", "print_hello", "add_numbers", "process_array", "handle_pointers",
		"use_control_flow", "demonstrate_memory_allocation", "max", "demonstrate_cpp_features",
	}, functions)

	var structs []string
	for _, st := range file.Structs {
		structs = append(structs, st.Name)
	}
	assert.Equal(t, []string{"Point", "Color", "Shape", "Circle", "Rectangle"}, structs)

	mainFn := findFunction(file.Functions, "main")
	require.NotNil(t, mainFn)
	assert.Equal(t, "Main function", mainFn.Doc)
	assert.Equal(t, "int main(void)", mainFn.Signature)

	point := findStruct(file.Structs, "Point")
	require.NotNil(t, point)
	assert.Equal(t, point.Source, point.Head)
	assert.Equal(t, "Type definitions", point.Doc)
}

func TestCppParser_Classes(t *testing.T) {
	t.Parallel()

	file := parseFixture(t, NewCppParser, "../../../testdata/code/cpp/sample.cpp")

	shape := findStruct(file.Structs, "Shape")
	require.NotNil(t, shape)
	assert.Equal(t, "class Shape", shape.Head)
	require.Len(t, shape.Methods, 2)
	assert.Equal(t, "area", shape.Methods[0].Name)
	assert.Empty(t, shape.Methods[0].Body)
	assert.Equal(t, model.Public, shape.Methods[0].Visibility)
	assert.Equal(t, "~Shape", shape.Methods[1].Name)

	circle := findStruct(file.Structs, "Circle")
	require.NotNil(t, circle)
	assert.Equal(t, "class Circle : public Shape", circle.Head)
	require.Len(t, circle.Fields, 1)
	assert.Equal(t, "radius", circle.Fields[0].Name)
	assert.Equal(t, "double radius;", circle.Fields[0].Source)
	require.Len(t, circle.Methods, 2)
	assert.Equal(t, "Circle", circle.Methods[0].Name)
	assert.Equal(t, "Circle(double r) : radius(r)", circle.Methods[0].Signature)
	assert.Equal(t, model.Public, circle.Methods[1].Visibility)

	rect := findStruct(file.Structs, "Rectangle")
	require.NotNil(t, rect)
	require.Len(t, rect.Fields, 2)
	assert.Equal(t, "width", rect.Fields[0].Name)
	assert.Equal(t, "double width;", rect.Fields[0].Source)
	assert.Equal(t, "height", rect.Fields[1].Name)
	assert.Equal(t, "double height;", rect.Fields[1].Source)
}

func TestCppParser_Template(t *testing.T) {
	t.Parallel()

	file := parseFixture(t, NewCppParser, "../../../testdata/code/cpp/sample.cpp")

	maxFn := findFunction(file.Functions, "max")
	require.NotNil(t, maxFn)
	assert.Contains(t, maxFn.Signature, "template<typename T>")
	assert.Contains(t, maxFn.Signature, "T max(T a, T b)")
	assert.Equal(t, "{\n    return (a > b) ? a : b;\n}", maxFn.Body)

	inline := parseSource(t, NewCppParser, "max.cpp", "template<typename T> T max(T a,T b){return a>b?a:b;}\n")
	require.Len(t, inline.Functions, 1)
	assert.Equal(t, "max", inline.Functions[0].Name)
	assert.Equal(t, "template<typename T> T max(T a,T b)", inline.Functions[0].Signature)
	assert.Equal(t, "{return a>b?a:b;}", inline.Functions[0].Body)
}

func TestCppParser_AccessSpecifiers(t *testing.T) {
	t.Parallel()

	file := parseFixture(t, NewCppParser, "../../../testdata/code/cpp/sample_with_fields.cpp")
	assert.Equal(t, []string{"#include <string>", "#include <vector>"}, []string{file.Declares[0].Source, file.Declares[1].Source})

	class := findStruct(file.Structs, "MyClass")
	require.NotNil(t, class)
	assert.Equal(t, "A sample class with fields in different access specifiers", class.Doc)

	require.Len(t, class.Fields, 3)
	assert.Equal(t, "public_data", class.Fields[0].Name)
	assert.Equal(t, "Public integer data.\nCan be accessed from anywhere.", class.Fields[0].Doc)
	assert.Equal(t, "protected_flag", class.Fields[1].Name)
	assert.Equal(t, "private_name", class.Fields[2].Name)
	assert.Equal(t, "Private string name.", class.Fields[2].Doc)

	require.Len(t, class.Methods, 3)
	assert.Equal(t, "MyClass", class.Methods[0].Name)
	assert.Equal(t, "Constructor", class.Methods[0].Doc)
	assert.Equal(t, model.Public, class.Methods[0].Visibility)
	assert.Equal(t, "public_method", class.Methods[1].Name)
	assert.Equal(t, model.Public, class.Methods[1].Visibility)
	assert.Equal(t, "private_method", class.Methods[2].Name)
	assert.Equal(t, model.Private, class.Methods[2].Visibility)

	plain := findStruct(file.Structs, "MyStruct")
	require.NotNil(t, plain)
	assert.Equal(t, "struct MyStruct", plain.Head)
	require.Len(t, plain.Fields, 2)
}

func TestCppParser_ClassDefaultsToPrivate(t *testing.T) {
	t.Parallel()

	source := `class Counter {
    int count;
    void bump() { count++; }
public:
    int get() const { return count; }
};
`
	file := parseSource(t, NewCppParser, "counter.hpp", source)
	require.Len(t, file.Structs, 1)
	counter := file.Structs[0]
	require.Len(t, counter.Methods, 2)
	assert.Equal(t, model.Private, counter.Methods[0].Visibility)
	assert.Equal(t, model.Public, counter.Methods[1].Visibility)

	out := render.New(model.Cpp).RenderStruct(&counter, render.Summary)
	assert.Contains(t, out, "class Counter {")
	assert.Contains(t, out, "int get() const { ... }")
	assert.NotContains(t, out, "bump")
	assert.Contains(t, out, "};")
}

func TestCppParser_Namespace(t *testing.T) {
	t.Parallel()

	source := `namespace geo {

// Distance between points.
double dist(double a, double b) { return a - b; }

}
`
	file := parseSource(t, NewCppParser, "geo.cpp", source)
	require.Len(t, file.Declares, 1)
	assert.Equal(t, model.DeclareOther("namespace"), file.Declares[0].Kind)
	assert.Equal(t, "namespace geo", file.Declares[0].Source)

	require.Len(t, file.Functions, 1)
	assert.Equal(t, "dist", file.Functions[0].Name)
	assert.Equal(t, "Distance between points.", file.Functions[0].Doc)
}

func TestCParser_Sample(t *testing.T) {
	t.Parallel()

	file := parseFixture(t, NewCParser, "../../../testdata/code/c/sample.c")

	require.Len(t, file.Declares, 11)
	assert.Equal(t, "#define MIN(a, b) ((a) < (b) ? (a) : (b))", file.Declares[4].Source)

	var functions []string
	for _, fn := range file.Functions {
		functions = append(functions, fn.Name)
	}
	assert.Equal(t, []string{
		"main", "print_hello", "add_numbers", "process_array", "handle_pointers",
		"use_control_flow", "demonstrate_memory_allocation",
	}, functions)

	require.Len(t, file.Structs, 2)
	assert.Equal(t, "Point", file.Structs[0].Name)
	assert.Equal(t, "Color", file.Structs[1].Name)

	add := findFunction(file.Functions, "add_numbers")
	require.NotNil(t, add)
	assert.Equal(t, "int add_numbers(int a, int b)", add.Signature)
}

func TestCParser_StaticIsPrivate(t *testing.T) {
	t.Parallel()

	source := `static int helper(void) { return 1; }

int api(void) { return helper(); }
`
	file := parseSource(t, NewCParser, "lib.c", source)
	require.Len(t, file.Functions, 2)
	assert.Equal(t, model.Private, file.Functions[0].Visibility)
	assert.Equal(t, model.Public, file.Functions[1].Visibility)

	out := render.New(model.C).RenderFile(file, render.Summary)
	assert.Contains(t, out, "int api(void) { ... }")
	assert.NotContains(t, out, "helper(void)")
}

func TestCppParser_NoTestsKeepsClassTerminator(t *testing.T) {
	t.Parallel()

	source := `class Shape {
public:
    virtual double area() const = 0;
};

enum Kind { Round, Square };

class Box : public Shape {
public:
    double area() const override { return 1.0; }
};
`
	file := parseSource(t, NewCppParser, "shapes.hpp", source)
	require.Len(t, file.Structs, 3)
	for _, st := range file.Structs {
		assert.True(t, strings.HasSuffix(st.Source, ";"), st.Name)
	}

	renderer := render.New(model.Cpp)
	first := renderer.RenderFile(file, render.NoTests)
	assert.Contains(t, first, "class Shape {")
	assert.Contains(t, first, "enum Kind { Round, Square };")
	assert.Equal(t, 2, strings.Count(first, "\n};"))

	again := parseSource(t, NewCppParser, "shapes.hpp", first)
	require.Len(t, again.Structs, 3)
	assert.Equal(t, []string{"Shape", "Kind", "Box"},
		[]string{again.Structs[0].Name, again.Structs[1].Name, again.Structs[2].Name})
	assert.Equal(t, first, renderer.RenderFile(again, render.NoTests))
}

func TestCppParser_PureVirtualSummary(t *testing.T) {
	t.Parallel()

	file := parseFixture(t, NewCppParser, "../../../testdata/code/cpp/sample.cpp")
	shape := findStruct(file.Structs, "Shape")
	require.NotNil(t, shape)

	out := render.New(model.Cpp).RenderStruct(shape, render.Summary)
	assert.Contains(t, out, "virtual double area() const = 0;")
	assert.NotContains(t, out, "= 0 { ... }")
	assert.Contains(t, out, "virtual ~Shape() { ... }")
}
