package parsers

import (
	"context"
	"strings"

	"github.com/spf13/afero"
	sitter "github.com/tree-sitter/go-tree-sitter"
	cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"github.com/tyrchen/codebank-sub000/internal/bank/model"
)

// cppParser parses C++ files. The C parser reuses its extraction on trees
// built by the C grammar.
type cppParser struct {
	*treeSitterParser
}

// NewCppParser creates a new C++ parser reading through fsys.
func NewCppParser(fsys afero.Fs) (Parser, error) {
	base, err := newTreeSitterParser(fsys, sitter.NewLanguage(cpp.Language()), model.Cpp)
	if err != nil {
		return nil, err
	}
	return &cppParser{treeSitterParser: base}, nil
}

// Parse parses a C++ source file.
func (p *cppParser) Parse(ctx context.Context, path string) (*model.FileUnit, error) {
	return parseCFamily(ctx, p.treeSitterParser, path)
}

// parseCFamily extracts a C or C++ file with the given grammar handle.
func parseCFamily(ctx context.Context, p *treeSitterParser, path string) (*model.FileUnit, error) {
	source, tree, err := p.parseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	file := model.NewFileUnit(path)
	file.Source = string(source)
	file.Doc = leadingFileDoc(root, source)

	var sc scope
	cCollect(root, source, &sc)
	sc.fillFile(file)
	return file, nil
}

// cCollect extracts the top-level items of container, flattening namespaces,
// linkage blocks and preprocessor conditionals into sc.
func cCollect(container *sitter.Node, source []byte, sc *scope) {
	for _, n := range namedChildren(container) {
		switch n.Kind() {
		case "preproc_include":
			sc.declare(strings.TrimSpace(extractNodeText(n, source)), model.DeclareImport)
		case "preproc_def", "preproc_function_def":
			sc.declare(strings.TrimSpace(extractNodeText(n, source)), model.DeclareOther("define"))
		case "preproc_ifdef", "preproc_if", "preproc_else", "preproc_elif", "preproc_elifdef":
			cCollect(n, source, sc)
		case "namespace_definition":
			body := n.ChildByFieldName("body")
			if body == nil {
				continue
			}
			sc.declare(headText(n, body, source), model.DeclareOther("namespace"))
			cCollect(body, source, sc)
		case "linkage_specification":
			if body := n.ChildByFieldName("body"); body != nil && body.Kind() == "declaration_list" {
				cCollect(body, source, sc)
			} else if body != nil {
				cItem(body, body, source, sc)
			}
		case "using_declaration":
			sc.declare(strings.TrimSpace(extractNodeText(n, source)), model.DeclareUse)
		default:
			cItem(n, n, source, sc)
		}
	}
}

// cItem extracts one declaration. outer carries the comments and, for
// templates, the template prefix.
func cItem(n, outer *sitter.Node, source []byte, sc *scope) {
	switch n.Kind() {
	case "function_definition":
		if fn, ok := cFunction(n, outer, source); ok {
			sc.functions = append(sc.functions, fn)
		}
	case "class_specifier", "struct_specifier", "union_specifier":
		if st, ok := cClass(n, outer, source); ok {
			sc.structs = append(sc.structs, st)
		}
	case "enum_specifier":
		if st, ok := cEnum(n, outer, source); ok {
			sc.structs = append(sc.structs, st)
		}
	case "type_definition", "alias_declaration":
		if st, ok := cTypeAlias(n, outer, source); ok {
			sc.structs = append(sc.structs, st)
		}
	case "declaration":
		cDeclaration(n, outer, source, sc)
	case "template_declaration":
		cTemplate(n, source, sc)
	}
}

// cTemplate unwraps a template: functions keep `template<...>` in their
// signature, classes in their head.
func cTemplate(n *sitter.Node, source []byte, sc *scope) {
	for _, child := range namedChildren(n) {
		switch child.Kind() {
		case "function_definition", "class_specifier", "struct_specifier", "union_specifier", "alias_declaration":
			cItem(child, n, source, sc)
			return
		case "declaration":
			if typ := child.ChildByFieldName("type"); typ != nil && isClassSpecifier(typ) && typ.ChildByFieldName("body") != nil {
				cItem(typ, n, source, sc)
				return
			}
			sc.declare(strings.TrimSpace(extractNodeText(n, source)), model.DeclareOther("template"))
			return
		}
	}
}

func isClassSpecifier(n *sitter.Node) bool {
	switch n.Kind() {
	case "class_specifier", "struct_specifier", "union_specifier":
		return true
	}
	return false
}

// cDeclaration handles prototypes, globals and class definitions that carry a declarator.
func cDeclaration(n, outer *sitter.Node, source []byte, sc *scope) {
	text := strings.TrimSpace(extractNodeText(outer, source))
	if typ := n.ChildByFieldName("type"); typ != nil && typ.ChildByFieldName("body") != nil {
		switch {
		case isClassSpecifier(typ):
			cItem(typ, outer, source, sc)
			return
		case typ.Kind() == "enum_specifier":
			cItem(typ, outer, source, sc)
			return
		}
	}
	if functionDeclarator(n) != nil {
		sc.declare(text, model.DeclareOther("function_declaration"))
		return
	}
	sc.declare(text, model.DeclareOther("variable"))
}

func cDocs(outer *sitter.Node, source []byte) string {
	doc, _ := leadingDocs(outer, source, nil, nil)
	return doc
}

func cFunction(n, outer *sitter.Node, source []byte) (model.FunctionUnit, bool) {
	declarator := functionDeclarator(n)
	body := n.ChildByFieldName("body")
	if declarator == nil || body == nil {
		return model.FunctionUnit{}, false
	}
	name := declarator.ChildByFieldName("declarator")
	if name == nil {
		return model.FunctionUnit{}, false
	}
	vis := model.Public
	if hasStorageClass(n, "static", source) {
		vis = model.Private
	}
	return model.FunctionUnit{
		Name:       extractNodeText(name, source),
		Visibility: vis,
		Doc:        cDocs(outer, source),
		Signature:  textBetween(outer, body, source),
		Body:       extractNodeText(body, source),
		Source:     extractNodeText(outer, source),
	}, true
}

// functionDeclarator follows the declarator chain of n to its function_declarator.
func functionDeclarator(n *sitter.Node) *sitter.Node {
	d := n.ChildByFieldName("declarator")
	for d != nil {
		if d.Kind() == "function_declarator" {
			return d
		}
		next := d.ChildByFieldName("declarator")
		if next == nil && d.NamedChildCount() > 0 {
			// reference_declarator has no declarator field.
			next = d.NamedChild(d.NamedChildCount() - 1)
		}
		d = next
	}
	return nil
}

func hasStorageClass(n *sitter.Node, class string, source []byte) bool {
	for _, s := range findChildrenByType(n, "storage_class_specifier") {
		if strings.TrimSpace(extractNodeText(s, source)) == class {
			return true
		}
	}
	return false
}

// cClass extracts a class, struct or union with a body. Access sections
// start private for classes and public otherwise.
func cClass(n, outer *sitter.Node, source []byte) (model.StructUnit, bool) {
	name := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	if name == nil || body == nil {
		return model.StructUnit{}, false
	}
	st := model.StructUnit{
		Name:       extractNodeText(name, source),
		Visibility: model.Public,
		Doc:        cDocs(outer, source),
		Head:       headText(outer, body, source),
		Source:     withTerminator(outer, source),
	}

	access := model.Public
	if n.Kind() == "class_specifier" {
		access = model.Private
	}
	for _, member := range namedChildren(body) {
		switch member.Kind() {
		case "access_specifier":
			access = cAccess(extractNodeText(member, source))
		case "function_definition":
			if fn, ok := cMethod(member, member, access, source); ok {
				st.Methods = append(st.Methods, fn)
			}
		case "template_declaration":
			if def := findChildByType(member, "function_definition"); def != nil {
				if fn, ok := cMethod(def, member, access, source); ok {
					st.Methods = append(st.Methods, fn)
				}
			}
		case "field_declaration", "declaration":
			if functionDeclarator(member) != nil {
				if fn, ok := cMethodDeclaration(member, access, source); ok {
					st.Methods = append(st.Methods, fn)
				}
				continue
			}
			if member.Kind() == "field_declaration" {
				st.Fields = append(st.Fields, cFields(member, source)...)
			}
		}
	}
	return st, true
}

// withTerminator returns the text of n with the ';' that closes a bare
// class or enum definition, which the grammar leaves as the next sibling.
func withTerminator(n *sitter.Node, source []byte) string {
	text := extractNodeText(n, source)
	if next := n.NextSibling(); next != nil && next.Kind() == ";" && !strings.HasSuffix(strings.TrimSpace(text), ";") {
		return text + ";"
	}
	return text
}

func cAccess(text string) model.Visibility {
	switch strings.TrimSpace(text) {
	case "private":
		return model.Private
	case "protected":
		return model.Protected
	}
	return model.Public
}

func cMethod(n, outer *sitter.Node, access model.Visibility, source []byte) (model.FunctionUnit, bool) {
	fn, ok := cFunction(n, outer, source)
	if !ok {
		// Defaulted, deleted and pure virtual definitions have no body.
		return cMethodDeclaration(n, access, source)
	}
	fn.Visibility = access
	return fn, true
}

// cMethodDeclaration records a method declared without a body.
func cMethodDeclaration(n *sitter.Node, access model.Visibility, source []byte) (model.FunctionUnit, bool) {
	declarator := functionDeclarator(n)
	if declarator == nil {
		return model.FunctionUnit{}, false
	}
	name := declarator.ChildByFieldName("declarator")
	if name == nil {
		return model.FunctionUnit{}, false
	}
	text := strings.TrimSpace(extractNodeText(n, source))
	return model.FunctionUnit{
		Name:       extractNodeText(name, source),
		Visibility: access,
		Doc:        cDocs(n, source),
		Signature:  strings.TrimSpace(strings.TrimSuffix(text, ";")),
		Source:     text,
	}, true
}

// cFields splits a data member declaration into one field per declarator.
func cFields(n *sitter.Node, source []byte) []model.FieldUnit {
	doc := cDocs(n, source)
	text := strings.TrimSpace(extractNodeText(n, source))
	var declarators []*sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		if n.FieldNameForChild(uint32(i)) == "declarator" {
			declarators = append(declarators, n.Child(i))
		}
	}
	if len(declarators) <= 1 {
		name := ""
		if len(declarators) == 1 {
			name = declaratorName(declarators[0], source)
		}
		return []model.FieldUnit{{Name: name, Doc: doc, Source: text}}
	}

	prefix := textBetween(n, declarators[0], source)
	fields := make([]model.FieldUnit, 0, len(declarators))
	for _, d := range declarators {
		fields = append(fields, model.FieldUnit{
			Name:   declaratorName(d, source),
			Doc:    doc,
			Source: prefix + " " + strings.TrimSpace(extractNodeText(d, source)) + ";",
		})
	}
	return fields
}

// declaratorName finds the identifier inside a (possibly nested) declarator.
func declaratorName(d *sitter.Node, source []byte) string {
	for d != nil {
		switch d.Kind() {
		case "identifier", "field_identifier", "type_identifier":
			return extractNodeText(d, source)
		}
		next := d.ChildByFieldName("declarator")
		if next == nil && d.NamedChildCount() > 0 {
			next = d.NamedChild(0)
		}
		d = next
	}
	return ""
}

func cEnum(n, outer *sitter.Node, source []byte) (model.StructUnit, bool) {
	name := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	if name == nil || body == nil {
		return model.StructUnit{}, false
	}
	st := model.StructUnit{
		Name:       extractNodeText(name, source),
		Visibility: model.Public,
		Doc:        cDocs(outer, source),
		Head:       headText(outer, body, source),
		Source:     withTerminator(outer, source),
	}
	for _, enumerator := range findChildrenByType(body, "enumerator") {
		enumName := enumerator.ChildByFieldName("name")
		if enumName == nil {
			continue
		}
		st.Fields = append(st.Fields, model.FieldUnit{
			Name:   extractNodeText(enumName, source),
			Doc:    cDocs(enumerator, source),
			Source: withListSeparator(enumerator, source),
		})
	}
	return st, true
}

// cTypeAlias records typedefs and using-aliases; the name is the last declarator.
func cTypeAlias(n, outer *sitter.Node, source []byte) (model.StructUnit, bool) {
	var name string
	if n.Kind() == "alias_declaration" {
		name = extractNodeText(n.ChildByFieldName("name"), source)
	} else {
		for i := uint(0); i < n.ChildCount(); i++ {
			if n.FieldNameForChild(uint32(i)) == "declarator" {
				name = declaratorName(n.Child(i), source)
			}
		}
	}
	if name == "" {
		return model.StructUnit{}, false
	}
	text := strings.TrimSpace(extractNodeText(outer, source))
	return model.StructUnit{
		Name:       name,
		Visibility: model.Public,
		Doc:        cDocs(outer, source),
		Head:       text,
		Source:     text,
	}, true
}
