package parsers

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/afero"
	sitter "github.com/tree-sitter/go-tree-sitter"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/tyrchen/codebank-sub000/internal/bank/model"
)

// goParser parses Go files.
type goParser struct {
	*treeSitterParser
}

// NewGoParser creates a new Go parser reading through fsys.
func NewGoParser(fsys afero.Fs) (Parser, error) {
	base, err := newTreeSitterParser(fsys, sitter.NewLanguage(golang.Language()), model.Go)
	if err != nil {
		return nil, err
	}
	return &goParser{treeSitterParser: base}, nil
}

// receiverGroup collects the methods declared on one receiver type.
type receiverGroup struct {
	typeName string
	methods  []model.FunctionUnit
}

// Parse parses a Go source file.
func (p *goParser) Parse(ctx context.Context, path string) (*model.FileUnit, error) {
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
	var groups []*receiverGroup
	byType := make(map[string]*receiverGroup)

	for _, n := range namedChildren(root) {
		switch n.Kind() {
		case "package_clause":
			if module, ok := goPackage(n, source); ok {
				sc.modules = append(sc.modules, module)
			}
		case "import_declaration":
			for _, spec := range goImportSpecs(n) {
				sc.declare("import "+strings.TrimSpace(extractNodeText(spec, source)), model.DeclareImport)
			}
		case "const_declaration":
			sc.declare(extractNodeText(n, source), model.DeclareOther("const"))
		case "var_declaration":
			sc.declare(extractNodeText(n, source), model.DeclareOther("var"))
		case "type_declaration":
			p.typeDeclaration(n, source, &sc)
		case "function_declaration":
			if fn, ok := goFunction(n, source); ok {
				sc.functions = append(sc.functions, fn)
			}
		case "method_declaration":
			fn, ok := goFunction(n, source)
			if !ok {
				continue
			}
			typeName := goReceiverType(n, source)
			group, seen := byType[typeName]
			if !seen {
				group = &receiverGroup{typeName: typeName}
				byType[typeName] = group
				groups = append(groups, group)
			}
			group.methods = append(group.methods, fn)
		}
	}

	for _, group := range groups {
		sc.impls = append(sc.impls, model.ImplUnit{
			Head:    "methods for " + group.typeName,
			Methods: group.methods,
		})
		for i := range sc.structs {
			if sc.structs[i].Name == group.typeName {
				sc.structs[i].Methods = append(sc.structs[i].Methods, group.methods...)
			}
		}
	}

	sc.fillFile(file)
	return file, nil
}

func goPackage(n *sitter.Node, source []byte) (model.ModuleUnit, bool) {
	name := findChildByType(n, "package_identifier")
	if name == nil {
		return model.ModuleUnit{}, false
	}
	doc, _ := leadingDocs(n, source, nil, nil)
	return model.ModuleUnit{
		Name:       extractNodeText(name, source),
		Doc:        doc,
		Visibility: model.Public,
		Source:     extractNodeText(n, source),
	}, true
}

func goImportSpecs(n *sitter.Node) []*sitter.Node {
	if list := findChildByType(n, "import_spec_list"); list != nil {
		return findChildrenByType(list, "import_spec")
	}
	return findChildrenByType(n, "import_spec")
}

func goFunction(n *sitter.Node, source []byte) (model.FunctionUnit, bool) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return model.FunctionUnit{}, false
	}
	fnName := extractNodeText(name, source)
	doc, _ := leadingDocs(n, source, nil, nil)
	fn := model.FunctionUnit{
		Name:       fnName,
		Visibility: goVisibility(fnName),
		Doc:        doc,
		Source:     extractNodeText(n, source),
	}
	if body := n.ChildByFieldName("body"); body != nil {
		fn.Signature = textBetween(n, body, source)
		fn.Body = extractNodeText(body, source)
	} else {
		fn.Signature = strings.TrimSpace(fn.Source)
	}
	return fn, true
}

// goReceiverType returns the receiver's base type name without pointer or type arguments.
func goReceiverType(n *sitter.Node, source []byte) string {
	receiver := n.ChildByFieldName("receiver")
	if ident := findDescendantByType(receiver, "type_identifier"); ident != nil {
		return extractNodeText(ident, source)
	}
	return ""
}

// typeDeclaration extracts the specs of a `type` declaration. A single
// ungrouped spec keeps the declaration's comments and full source.
func (p *goParser) typeDeclaration(n *sitter.Node, source []byte, sc *scope) {
	specs := namedChildren(n)
	grouped := findChildByType(n, "(") != nil
	for _, spec := range specs {
		if spec.Kind() != "type_spec" && spec.Kind() != "type_alias" {
			continue
		}
		outer := n
		if grouped {
			outer = spec
		}
		p.typeSpec(spec, outer, grouped, source, sc)
	}
}

func (p *goParser) typeSpec(spec, outer *sitter.Node, grouped bool, source []byte, sc *scope) {
	name := spec.ChildByFieldName("name")
	if name == nil {
		return
	}
	typeName := extractNodeText(name, source)
	doc, _ := leadingDocs(outer, source, nil, nil)
	text := strings.TrimSpace(extractNodeText(outer, source))
	if grouped {
		text = "type " + text
	}

	typ := spec.ChildByFieldName("type")
	kind := ""
	if typ != nil && spec.Kind() == "type_spec" {
		kind = typ.Kind()
	}

	switch kind {
	case "struct_type":
		fieldList := findChildByType(typ, "field_declaration_list")
		st := model.StructUnit{
			Name:       typeName,
			Visibility: goVisibility(typeName),
			Doc:        doc,
			Head:       goHead(spec, fieldList, grouped, outer, source),
			Source:     text,
		}
		for _, field := range findChildrenByType(fieldList, "field_declaration") {
			st.Fields = append(st.Fields, goFields(field, source)...)
		}
		sc.structs = append(sc.structs, st)
	case "interface_type":
		tr := model.TraitUnit{
			Name:       typeName,
			Visibility: goVisibility(typeName),
			Doc:        doc,
			Head:       goHead(spec, findChildByType(typ, "{"), grouped, outer, source),
			Source:     text,
		}
		for _, elem := range findChildrenByType(typ, "method_elem") {
			methodName := elem.ChildByFieldName("name")
			if methodName == nil {
				continue
			}
			methodDoc, _ := leadingDocs(elem, source, nil, nil)
			sig := strings.TrimSpace(extractNodeText(elem, source))
			tr.Methods = append(tr.Methods, model.FunctionUnit{
				Name:       extractNodeText(methodName, source),
				Visibility: goVisibility(extractNodeText(methodName, source)),
				Doc:        methodDoc,
				Signature:  sig,
				Source:     sig,
			})
		}
		sc.traits = append(sc.traits, tr)
	default:
		sc.structs = append(sc.structs, model.StructUnit{
			Name:       typeName,
			Visibility: goVisibility(typeName),
			Doc:        doc,
			Head:       text,
			Source:     text,
		})
	}
}

// goHead renders "type Name[...] struct" or "type Name interface".
func goHead(spec, body *sitter.Node, grouped bool, outer *sitter.Node, source []byte) string {
	if grouped {
		return "type " + headText(spec, body, source)
	}
	return headText(outer, body, source)
}

// goFields yields one field per declared name; embedded fields are named by type.
func goFields(field *sitter.Node, source []byte) []model.FieldUnit {
	doc, _ := leadingDocs(field, source, nil, nil)
	typ := field.ChildByFieldName("type")
	typeText := extractNodeText(typ, source)
	tag := ""
	if t := field.ChildByFieldName("tag"); t != nil {
		tag = " " + extractNodeText(t, source)
	}

	names := findChildrenByType(field, "field_identifier")
	if len(names) == 0 {
		text := strings.TrimSpace(extractNodeText(field, source))
		embedded := typeText
		if i := strings.LastIndex(embedded, "."); i >= 0 {
			embedded = embedded[i+1:]
		}
		if i := strings.Index(embedded, "["); i >= 0 {
			embedded = embedded[:i]
		}
		return []model.FieldUnit{{Name: embedded, Doc: doc, Source: text}}
	}

	fields := make([]model.FieldUnit, 0, len(names))
	for _, name := range names {
		fieldName := extractNodeText(name, source)
		fields = append(fields, model.FieldUnit{
			Name:   fieldName,
			Doc:    doc,
			Source: fieldName + " " + typeText + tag,
		})
	}
	return fields
}

func goVisibility(name string) model.Visibility {
	r, _ := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(r) {
		return model.Public
	}
	return model.Private
}
