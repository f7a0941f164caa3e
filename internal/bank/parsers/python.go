package parsers

import (
	"context"
	"strings"

	"github.com/spf13/afero"
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/tyrchen/codebank-sub000/internal/bank/model"
)

// pythonParser parses Python files.
type pythonParser struct {
	*treeSitterParser
}

// NewPythonParser creates a new Python parser reading through fsys.
func NewPythonParser(fsys afero.Fs) (Parser, error) {
	base, err := newTreeSitterParser(fsys, sitter.NewLanguage(python.Language()), model.Python)
	if err != nil {
		return nil, err
	}
	return &pythonParser{treeSitterParser: base}, nil
}

// Parse parses a Python source file.
func (p *pythonParser) Parse(ctx context.Context, path string) (*model.FileUnit, error) {
	source, tree, err := p.parseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	file := model.NewFileUnit(path)
	file.Source = string(source)
	file.Doc = pythonDocstring(root, source)
	if file.Doc == "" {
		file.Doc = leadingFileDoc(root, source)
	}

	var sc scope
	for _, n := range namedChildren(root) {
		switch n.Kind() {
		case "import_statement", "import_from_statement", "future_import_statement":
			sc.declare(extractNodeText(n, source), model.DeclareImport)
		case "function_definition":
			if fn, ok := p.function(n, n, nil, source); ok {
				sc.functions = append(sc.functions, fn)
			}
		case "class_definition":
			if st, ok := p.class(n, n, nil, source); ok {
				sc.structs = append(sc.structs, st)
			}
		case "decorated_definition":
			p.decorated(n, source, &sc)
		}
	}
	sc.fillFile(file)
	return file, nil
}

func (p *pythonParser) decorated(n *sitter.Node, source []byte, sc *scope) {
	def := n.ChildByFieldName("definition")
	if def == nil {
		return
	}
	decorators := pythonDecorators(n, source)
	switch def.Kind() {
	case "function_definition":
		if fn, ok := p.function(def, n, decorators, source); ok {
			sc.functions = append(sc.functions, fn)
		}
	case "class_definition":
		if st, ok := p.class(def, n, decorators, source); ok {
			sc.structs = append(sc.structs, st)
		}
	}
}

// function extracts a function_definition. outer is the node comments attach
// to: the decorated_definition when decorators are present.
func (p *pythonParser) function(n, outer *sitter.Node, decorators []string, source []byte) (model.FunctionUnit, bool) {
	name := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	if name == nil || body == nil {
		return model.FunctionUnit{}, false
	}
	fnName := extractNodeText(name, source)
	column := n.StartPosition().Column

	fn := model.FunctionUnit{
		Name:       fnName,
		Visibility: pythonVisibility(fnName),
		Doc:        pythonDocstring(body, source),
		Attributes: decorators,
		Source:     dedentContinuation(extractNodeText(n, source), column),
	}
	if fn.Doc == "" {
		fn.Doc, _ = leadingDocs(outer, source, nil, nil)
	}
	if colon := bodyColon(n, body); colon != nil {
		fn.Signature = textBetween(n, colon, source)
		fn.Body = dedentContinuation(string(source[colon.StartByte():n.EndByte()]), column)
	}
	return fn, true
}

func (p *pythonParser) class(n, outer *sitter.Node, decorators []string, source []byte) (model.StructUnit, bool) {
	name := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	if name == nil || body == nil {
		return model.StructUnit{}, false
	}
	className := extractNodeText(name, source)
	st := model.StructUnit{
		Name:       className,
		Visibility: pythonVisibility(className),
		Doc:        pythonDocstring(body, source),
		Attributes: decorators,
		Source:     dedentContinuation(extractNodeText(n, source), n.StartPosition().Column),
	}
	if st.Doc == "" {
		st.Doc, _ = leadingDocs(outer, source, nil, nil)
	}
	if colon := bodyColon(n, body); colon != nil {
		st.Head = headText(n, colon, source)
	} else {
		st.Head = "class " + className
	}

	for _, item := range namedChildren(body) {
		switch item.Kind() {
		case "function_definition":
			if fn, ok := p.function(item, item, nil, source); ok {
				st.Methods = append(st.Methods, fn)
			}
		case "decorated_definition":
			def := item.ChildByFieldName("definition")
			if def == nil || def.Kind() != "function_definition" {
				continue
			}
			if fn, ok := p.function(def, item, pythonDecorators(item, source), source); ok {
				st.Methods = append(st.Methods, fn)
			}
		case "expression_statement":
			if field, ok := pythonField(item, source); ok {
				st.Fields = append(st.Fields, field)
			}
		}
	}
	return st, true
}

// pythonField turns a class-level assignment into a field.
func pythonField(stmt *sitter.Node, source []byte) (model.FieldUnit, bool) {
	assignment := findChildByType(stmt, "assignment")
	if assignment == nil {
		return model.FieldUnit{}, false
	}
	left := assignment.ChildByFieldName("left")
	if left == nil || left.Kind() != "identifier" {
		return model.FieldUnit{}, false
	}
	doc, _ := leadingDocs(stmt, source, nil, nil)
	return model.FieldUnit{
		Name:   extractNodeText(left, source),
		Doc:    doc,
		Source: strings.TrimSpace(extractNodeText(assignment, source)),
	}, true
}

// bodyColon finds the ':' that opens the body of a definition.
func bodyColon(n, body *sitter.Node) *sitter.Node {
	var colon *sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child.StartByte() >= body.StartByte() {
			break
		}
		if child.Kind() == ":" {
			colon = child
		}
	}
	return colon
}

func pythonDecorators(n *sitter.Node, source []byte) []string {
	var decorators []string
	for _, d := range findChildrenByType(n, "decorator") {
		decorators = append(decorators, strings.TrimSpace(extractNodeText(d, source)))
	}
	return decorators
}

// pythonDocstring returns the string literal opening a module or block.
func pythonDocstring(block *sitter.Node, source []byte) string {
	if block == nil {
		return ""
	}
	for _, child := range namedChildren(block) {
		if isComment(child) {
			continue
		}
		if child.Kind() != "expression_statement" || child.NamedChildCount() != 1 {
			return ""
		}
		str := child.NamedChild(0)
		if str.Kind() != "string" {
			return ""
		}
		return cleanDocstring(extractNodeText(str, source))
	}
	return ""
}

// cleanDocstring strips the prefix and quotes of a string literal and the
// indentation of its lines.
func cleanDocstring(literal string) string {
	text := strings.TrimLeft(literal, "rRuUbBfF")
	for _, quote := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(text, quote) && strings.HasSuffix(text, quote) && len(text) >= 2*len(quote) {
			text = text[len(quote) : len(text)-len(quote)]
			break
		}
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, strings.TrimSpace(line))
	}
	return strings.Join(trimBlankLines(lines), "\n")
}

func pythonVisibility(name string) model.Visibility {
	if strings.HasPrefix(name, "_") {
		return model.Private
	}
	return model.Public
}
