package parsers

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/tyrchen/codebank-sub000/internal/bank/model"
)

// typeScriptParser parses TypeScript and JavaScript files. JSX dialects go
// through the TSX grammar.
type typeScriptParser struct {
	ts  *treeSitterParser
	tsx *treeSitterParser
}

// NewTypeScriptParser creates a new TypeScript parser reading through fsys.
func NewTypeScriptParser(fsys afero.Fs) (Parser, error) {
	ts, err := newTreeSitterParser(fsys, sitter.NewLanguage(typescript.LanguageTypescript()), model.TypeScript)
	if err != nil {
		return nil, err
	}
	tsx, err := newTreeSitterParser(fsys, sitter.NewLanguage(typescript.LanguageTSX()), model.TypeScript)
	if err != nil {
		ts.Close()
		return nil, err
	}
	return &typeScriptParser{ts: ts, tsx: tsx}, nil
}

// Close releases both grammar handles.
func (p *typeScriptParser) Close() {
	p.ts.Close()
	p.tsx.Close()
}

func (p *typeScriptParser) grammarFor(path string) *treeSitterParser {
	switch filepath.Ext(path) {
	case ".tsx", ".jsx":
		return p.tsx
	}
	return p.ts
}

// Parse parses a TypeScript or JavaScript source file.
func (p *typeScriptParser) Parse(ctx context.Context, path string) (*model.FileUnit, error) {
	source, tree, err := p.grammarFor(path).parseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	file := model.NewFileUnit(path)
	file.Source = string(source)
	file.Doc = leadingFileDoc(root, source)

	exported := exportedNames(root, source)
	var sc scope
	for _, n := range namedChildren(root) {
		switch n.Kind() {
		case "import_statement":
			sc.declare(extractNodeText(n, source), model.DeclareImport)
		case "export_statement":
			decl := n.ChildByFieldName("declaration")
			if decl == nil {
				sc.declare(extractNodeText(n, source), model.DeclareOther("export"))
				continue
			}
			p.declaration(decl, n, true, source, &sc)
		default:
			p.declaration(n, n, false, source, &sc)
		}
	}
	p.applyExports(&sc, exported)
	sc.fillFile(file)
	return file, nil
}

// declaration extracts one top-level declaration. outer is the export
// statement wrapping it, or the declaration itself.
func (p *typeScriptParser) declaration(n, outer *sitter.Node, exported bool, source []byte, sc *scope) {
	vis := model.Private
	if exported {
		vis = model.Public
	}
	switch n.Kind() {
	case "function_declaration", "generator_function_declaration", "function_signature":
		if fn, ok := tsFunction(n, outer, vis, source); ok {
			sc.functions = append(sc.functions, fn)
		}
	case "lexical_declaration", "variable_declaration":
		sc.functions = append(sc.functions, tsBoundFunctions(n, outer, vis, source)...)
	case "class_declaration", "abstract_class_declaration", "class":
		if st, ok := tsClass(n, outer, vis, source); ok {
			sc.structs = append(sc.structs, st)
		}
	case "interface_declaration":
		if tr, ok := tsInterface(n, outer, vis, source); ok {
			sc.traits = append(sc.traits, tr)
		}
	case "type_alias_declaration":
		if st, ok := tsTypeAlias(n, outer, vis, source); ok {
			sc.structs = append(sc.structs, st)
		}
	case "enum_declaration":
		if st, ok := tsEnum(n, outer, vis, source); ok {
			sc.structs = append(sc.structs, st)
		}
	}
}

// applyExports marks declarations named by `export { ... }` or `export default Name` public.
func (p *typeScriptParser) applyExports(sc *scope, exported map[string]bool) {
	if len(exported) == 0 {
		return
	}
	for i := range sc.functions {
		if exported[sc.functions[i].Name] {
			sc.functions[i].Visibility = model.Public
		}
	}
	for i := range sc.structs {
		if exported[sc.structs[i].Name] {
			sc.structs[i].Visibility = model.Public
		}
	}
	for i := range sc.traits {
		if exported[sc.traits[i].Name] {
			sc.traits[i].Visibility = model.Public
		}
	}
}

// exportedNames collects local names exported by export clauses and default exports.
func exportedNames(root *sitter.Node, source []byte) map[string]bool {
	names := make(map[string]bool)
	for _, n := range findChildrenByType(root, "export_statement") {
		if n.ChildByFieldName("declaration") != nil || n.ChildByFieldName("source") != nil {
			continue
		}
		if clause := findChildByType(n, "export_clause"); clause != nil {
			for _, spec := range findChildrenByType(clause, "export_specifier") {
				if name := spec.ChildByFieldName("name"); name != nil {
					names[extractNodeText(name, source)] = true
				}
			}
			continue
		}
		if value := n.ChildByFieldName("value"); value != nil && value.Kind() == "identifier" {
			names[extractNodeText(value, source)] = true
		}
	}
	return names
}

func tsDocs(outer *sitter.Node, source []byte) (string, []string) {
	return leadingDocs(outer, source, isKind("decorator"), nil)
}

func tsFunction(n, outer *sitter.Node, vis model.Visibility, source []byte) (model.FunctionUnit, bool) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return model.FunctionUnit{}, false
	}
	doc, attrs := tsDocs(outer, source)
	fn := model.FunctionUnit{
		Name:       extractNodeText(name, source),
		Visibility: vis,
		Doc:        doc,
		Attributes: attrs,
		Source:     extractNodeText(outer, source),
	}
	if body := n.ChildByFieldName("body"); body != nil {
		fn.Signature = textBetween(outer, body, source)
		fn.Body = extractNodeText(body, source)
	} else {
		fn.Signature = strings.TrimSuffix(strings.TrimSpace(fn.Source), ";")
	}
	return fn, true
}

// tsBoundFunctions extracts arrow functions and function expressions bound
// by const, let or var.
func tsBoundFunctions(n, outer *sitter.Node, vis model.Visibility, source []byte) []model.FunctionUnit {
	var fns []model.FunctionUnit
	for _, declarator := range findChildrenByType(n, "variable_declarator") {
		name := declarator.ChildByFieldName("name")
		value := declarator.ChildByFieldName("value")
		if name == nil || value == nil {
			continue
		}
		switch value.Kind() {
		case "arrow_function", "function_expression", "function", "generator_function":
		default:
			continue
		}
		doc, attrs := tsDocs(outer, source)
		fn := model.FunctionUnit{
			Name:       extractNodeText(name, source),
			Visibility: vis,
			Doc:        doc,
			Attributes: attrs,
			Source:     extractNodeText(outer, source),
		}
		if body := value.ChildByFieldName("body"); body != nil {
			fn.Signature = textBetween(outer, body, source)
			fn.Body = extractNodeText(body, source)
		}
		fns = append(fns, fn)
	}
	return fns
}

func tsClass(n, outer *sitter.Node, vis model.Visibility, source []byte) (model.StructUnit, bool) {
	name := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	if name == nil || body == nil {
		return model.StructUnit{}, false
	}
	doc, attrs := tsDocs(outer, source)
	decorators := tsDecorators(n, outer)
	for _, d := range decorators {
		attrs = append(attrs, strings.TrimSpace(extractNodeText(d, source)))
	}
	st := model.StructUnit{
		Name:       extractNodeText(name, source),
		Visibility: vis,
		Doc:        doc,
		Attributes: attrs,
		Head:       tsHead(outer, body, decorators, source),
		Source:     extractNodeText(outer, source),
	}

	for _, member := range namedChildren(body) {
		switch member.Kind() {
		case "method_definition", "method_signature", "abstract_method_signature":
			if fn, ok := tsMethod(member, source); ok {
				st.Methods = append(st.Methods, fn)
			}
		case "public_field_definition":
			fieldName := member.ChildByFieldName("name")
			if fieldName == nil {
				continue
			}
			fieldDoc, fieldAttrs := tsDocs(member, source)
			st.Fields = append(st.Fields, model.FieldUnit{
				Name:       extractNodeText(fieldName, source),
				Doc:        fieldDoc,
				Attributes: fieldAttrs,
				Source:     strings.TrimSpace(extractNodeText(member, source)),
			})
		}
	}
	return st, true
}

// tsDecorators returns the decorators of a class, including those written
// before its export keyword.
func tsDecorators(n, outer *sitter.Node) []*sitter.Node {
	var decorators []*sitter.Node
	if outer != n {
		decorators = append(decorators, findChildrenByType(outer, "decorator")...)
	}
	return append(decorators, findChildrenByType(n, "decorator")...)
}

// tsHead is the class prefix of outer up to body, without decorators.
func tsHead(outer, body *sitter.Node, decorators []*sitter.Node, source []byte) string {
	head := headText(outer, body, source)
	for _, d := range decorators {
		decorator := strings.Join(strings.Fields(extractNodeText(d, source)), " ")
		head = strings.Replace(head, decorator, "", 1)
	}
	return strings.Join(strings.Fields(head), " ")
}

func tsMethod(m *sitter.Node, source []byte) (model.FunctionUnit, bool) {
	name := m.ChildByFieldName("name")
	if name == nil {
		return model.FunctionUnit{}, false
	}
	doc, attrs := tsDocs(m, source)
	methodName := extractNodeText(name, source)
	fn := model.FunctionUnit{
		Name:       methodName,
		Visibility: tsMemberVisibility(m, methodName, source),
		Doc:        doc,
		Attributes: attrs,
		Source:     strings.TrimSpace(extractNodeText(m, source)),
	}
	if body := m.ChildByFieldName("body"); body != nil {
		fn.Signature = textBetween(m, body, source)
		fn.Body = extractNodeText(body, source)
	} else {
		fn.Signature = strings.TrimSuffix(fn.Source, ";")
	}
	return fn, true
}

// tsMemberVisibility applies accessibility modifiers; members default to public.
func tsMemberVisibility(m *sitter.Node, name string, source []byte) model.Visibility {
	if strings.HasPrefix(name, "#") {
		return model.Private
	}
	if modifier := findChildByType(m, "accessibility_modifier"); modifier != nil {
		switch strings.TrimSpace(extractNodeText(modifier, source)) {
		case "private":
			return model.Private
		case "protected":
			return model.Protected
		}
	}
	return model.Public
}

func tsInterface(n, outer *sitter.Node, vis model.Visibility, source []byte) (model.TraitUnit, bool) {
	name := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	if name == nil || body == nil {
		return model.TraitUnit{}, false
	}
	doc, attrs := tsDocs(outer, source)
	tr := model.TraitUnit{
		Name:       extractNodeText(name, source),
		Visibility: vis,
		Doc:        doc,
		Attributes: attrs,
		Head:       headText(outer, body, source),
		Source:     extractNodeText(outer, source),
	}
	for _, member := range findChildrenByType(body, "method_signature") {
		methodName := member.ChildByFieldName("name")
		if methodName == nil {
			continue
		}
		methodDoc, _ := tsDocs(member, source)
		text := strings.TrimSpace(extractNodeText(member, source))
		tr.Methods = append(tr.Methods, model.FunctionUnit{
			Name:       extractNodeText(methodName, source),
			Visibility: model.Public,
			Doc:        methodDoc,
			Signature:  strings.TrimRight(text, ";,"),
			Source:     text,
		})
	}
	return tr, true
}

// tsTypeAlias records a type alias as a struct whose head is its full text.
func tsTypeAlias(n, outer *sitter.Node, vis model.Visibility, source []byte) (model.StructUnit, bool) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return model.StructUnit{}, false
	}
	doc, attrs := tsDocs(outer, source)
	text := strings.TrimSpace(extractNodeText(outer, source))
	return model.StructUnit{
		Name:       extractNodeText(name, source),
		Visibility: vis,
		Doc:        doc,
		Attributes: attrs,
		Head:       text,
		Source:     text,
	}, true
}

func tsEnum(n, outer *sitter.Node, vis model.Visibility, source []byte) (model.StructUnit, bool) {
	name := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	if name == nil || body == nil {
		return model.StructUnit{}, false
	}
	doc, attrs := tsDocs(outer, source)
	st := model.StructUnit{
		Name:       extractNodeText(name, source),
		Visibility: vis,
		Doc:        doc,
		Attributes: attrs,
		Head:       headText(outer, body, source),
		Source:     extractNodeText(outer, source),
	}
	for _, member := range namedChildren(body) {
		var memberName *sitter.Node
		switch member.Kind() {
		case "property_identifier", "string":
			memberName = member
		case "enum_assignment":
			memberName = member.ChildByFieldName("name")
		default:
			continue
		}
		if memberName == nil {
			continue
		}
		memberDoc, _ := tsDocs(member, source)
		st.Fields = append(st.Fields, model.FieldUnit{
			Name:   extractNodeText(memberName, source),
			Doc:    memberDoc,
			Source: withListSeparator(member, source),
		})
	}
	return st, true
}

// withListSeparator returns the member text followed by its ',' separator when present.
func withListSeparator(member *sitter.Node, source []byte) string {
	text := strings.TrimSpace(extractNodeText(member, source))
	if next := member.NextSibling(); next != nil && next.Kind() == "," {
		return text + ","
	}
	return text
}
