package parsers

import (
	"context"
	"strings"

	"github.com/spf13/afero"
	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/tyrchen/codebank-sub000/internal/bank/model"
)

// rustParser parses Rust files.
type rustParser struct {
	*treeSitterParser
}

// NewRustParser creates a new Rust parser reading through fsys.
func NewRustParser(fsys afero.Fs) (Parser, error) {
	base, err := newTreeSitterParser(fsys, sitter.NewLanguage(rust.Language()), model.Rust)
	if err != nil {
		return nil, err
	}
	return &rustParser{treeSitterParser: base}, nil
}

// Parse parses a Rust source file.
func (p *rustParser) Parse(ctx context.Context, path string) (*model.FileUnit, error) {
	source, tree, err := p.parseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	file := model.NewFileUnit(path)
	file.Source = string(source)
	file.Doc = rustInnerDoc(root, source)

	var sc scope
	p.collect(root, source, &sc)
	sc.fillFile(file)
	return file, nil
}

// collect extracts the items directly inside container.
func (p *rustParser) collect(container *sitter.Node, source []byte, sc *scope) {
	for _, n := range namedChildren(container) {
		switch n.Kind() {
		case "use_declaration":
			sc.declare(extractNodeText(n, source), model.DeclareUse)
		case "extern_crate_declaration":
			sc.declare(extractNodeText(n, source), model.DeclareOther("extern_crate"))
		case "macro_definition":
			sc.declare(extractNodeText(n, source), model.DeclareOther("macro"))
		case "const_item":
			sc.declare(extractNodeText(n, source), model.DeclareOther("const"))
		case "static_item":
			sc.declare(extractNodeText(n, source), model.DeclareOther("static"))
		case "mod_item":
			if n.ChildByFieldName("body") == nil {
				sc.declare(extractNodeText(n, source), model.DeclareMod)
				continue
			}
			if module, ok := p.module(n, source); ok {
				sc.modules = append(sc.modules, module)
			}
		case "function_item":
			if fn, ok := p.function(n, source, false); ok {
				sc.functions = append(sc.functions, fn)
			}
		case "struct_item", "union_item":
			if st, ok := p.structUnit(n, source); ok {
				sc.structs = append(sc.structs, st)
			}
		case "enum_item":
			if st, ok := p.enum(n, source); ok {
				sc.structs = append(sc.structs, st)
			}
		case "type_item":
			if st, ok := p.typeAlias(n, source); ok {
				sc.structs = append(sc.structs, st)
			}
		case "trait_item":
			if tr, ok := p.trait(n, source); ok {
				sc.traits = append(sc.traits, tr)
			}
		case "impl_item":
			if impl, ok := p.impl(n, source); ok {
				sc.impls = append(sc.impls, impl)
			}
		}
	}
}

func (p *rustParser) module(n *sitter.Node, source []byte) (model.ModuleUnit, bool) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return model.ModuleUnit{}, false
	}
	body := n.ChildByFieldName("body")
	doc, attrs := rustDocs(n, source)
	if doc == "" {
		doc = rustInnerDoc(body, source)
	}

	module := model.ModuleUnit{
		Name:       extractNodeText(name, source),
		Doc:        doc,
		Attributes: attrs,
		Visibility: rustVisibility(n, source),
		Source:     extractNodeText(n, source),
	}
	var sc scope
	p.collect(body, source, &sc)
	sc.fillModule(&module)
	return module, true
}

func (p *rustParser) function(n *sitter.Node, source []byte, forcePublic bool) (model.FunctionUnit, bool) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return model.FunctionUnit{}, false
	}
	doc, attrs := rustDocs(n, source)
	fn := model.FunctionUnit{
		Name:       extractNodeText(name, source),
		Visibility: rustVisibility(n, source),
		Doc:        doc,
		Attributes: attrs,
		Source:     extractNodeText(n, source),
	}
	if forcePublic {
		fn.Visibility = model.Public
	}
	if body := n.ChildByFieldName("body"); body != nil {
		fn.Signature = textBetween(n, body, source)
		fn.Body = extractNodeText(body, source)
	} else {
		fn.Signature = strings.TrimSuffix(strings.TrimSpace(fn.Source), ";")
	}
	return fn, true
}

func (p *rustParser) structUnit(n *sitter.Node, source []byte) (model.StructUnit, bool) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return model.StructUnit{}, false
	}
	doc, attrs := rustDocs(n, source)
	st := model.StructUnit{
		Name:       extractNodeText(name, source),
		Visibility: rustVisibility(n, source),
		Doc:        doc,
		Attributes: attrs,
		Source:     extractNodeText(n, source),
	}

	body := n.ChildByFieldName("body")
	if body == nil || body.Kind() != "field_declaration_list" {
		// Unit and tuple structs end with ';' and summarize as their full text.
		st.Head = headText(n, nil, source)
		return st, true
	}
	st.Head = headText(n, body, source)
	for _, field := range findChildrenByType(body, "field_declaration") {
		fieldName := field.ChildByFieldName("name")
		if fieldName == nil {
			continue
		}
		fieldDoc, fieldAttrs := rustDocs(field, source)
		st.Fields = append(st.Fields, model.FieldUnit{
			Name:       extractNodeText(fieldName, source),
			Doc:        fieldDoc,
			Attributes: fieldAttrs,
			Source:     strings.TrimSpace(extractNodeText(field, source)),
		})
	}
	return st, true
}

func (p *rustParser) enum(n *sitter.Node, source []byte) (model.StructUnit, bool) {
	name := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	if name == nil || body == nil {
		return model.StructUnit{}, false
	}
	doc, attrs := rustDocs(n, source)
	st := model.StructUnit{
		Name:       extractNodeText(name, source),
		Visibility: rustVisibility(n, source),
		Doc:        doc,
		Attributes: attrs,
		Head:       headText(n, body, source),
		Source:     extractNodeText(n, source),
	}
	for _, variant := range findChildrenByType(body, "enum_variant") {
		variantName := variant.ChildByFieldName("name")
		if variantName == nil {
			continue
		}
		variantDoc, variantAttrs := rustDocs(variant, source)
		st.Fields = append(st.Fields, model.FieldUnit{
			Name:       extractNodeText(variantName, source),
			Doc:        variantDoc,
			Attributes: variantAttrs,
			Source:     strings.TrimSpace(extractNodeText(variant, source)),
		})
	}
	return st, true
}

// typeAlias records `type X = Y;` as a struct whose head is its whole text.
func (p *rustParser) typeAlias(n *sitter.Node, source []byte) (model.StructUnit, bool) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return model.StructUnit{}, false
	}
	doc, attrs := rustDocs(n, source)
	text := extractNodeText(n, source)
	return model.StructUnit{
		Name:       extractNodeText(name, source),
		Visibility: rustVisibility(n, source),
		Doc:        doc,
		Attributes: attrs,
		Head:       text,
		Source:     text,
	}, true
}

func (p *rustParser) trait(n *sitter.Node, source []byte) (model.TraitUnit, bool) {
	name := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	if name == nil || body == nil {
		return model.TraitUnit{}, false
	}
	doc, attrs := rustDocs(n, source)
	tr := model.TraitUnit{
		Name:       extractNodeText(name, source),
		Visibility: rustVisibility(n, source),
		Doc:        doc,
		Attributes: attrs,
		Head:       headText(n, body, source),
		Source:     extractNodeText(n, source),
	}
	for _, item := range namedChildren(body) {
		switch item.Kind() {
		case "function_item", "function_signature_item":
			if fn, ok := p.function(item, source, true); ok {
				tr.Methods = append(tr.Methods, fn)
			}
		}
	}
	return tr, true
}

func (p *rustParser) impl(n *sitter.Node, source []byte) (model.ImplUnit, bool) {
	body := n.ChildByFieldName("body")
	if body == nil {
		return model.ImplUnit{}, false
	}
	doc, attrs := rustDocs(n, source)
	impl := model.ImplUnit{
		Doc:        doc,
		Attributes: attrs,
		Head:       headText(n, body, source),
		Source:     extractNodeText(n, source),
	}
	traitImpl := n.ChildByFieldName("trait") != nil
	for _, item := range findChildrenByType(body, "function_item") {
		if fn, ok := p.function(item, source, traitImpl); ok {
			impl.Methods = append(impl.Methods, fn)
		}
	}
	return impl, true
}

// rustDocs returns the outer doc comments and attributes above n.
func rustDocs(n *sitter.Node, source []byte) (string, []string) {
	return leadingDocs(n, source, isKind("attribute_item"), isRustOuterDoc)
}

func isRustOuterDoc(text string) bool {
	switch {
	case strings.HasPrefix(text, "////"):
		return false
	case strings.HasPrefix(text, "///"):
		return true
	case strings.HasPrefix(text, "/**") && !strings.HasPrefix(text, "/**/"):
		return true
	}
	return false
}

func isRustInnerDoc(text string) bool {
	return strings.HasPrefix(text, "//!") || strings.HasPrefix(text, "/*!")
}

// rustInnerDoc collects the //! and /*! comments opening a file or module body.
func rustInnerDoc(container *sitter.Node, source []byte) string {
	var docs []string
	for _, child := range namedChildren(container) {
		if !isComment(child) {
			break
		}
		if text := extractNodeText(child, source); isRustInnerDoc(text) {
			docs = append(docs, text)
		}
	}
	return joinComments(docs)
}

// rustVisibility maps the item's visibility_modifier.
func rustVisibility(n *sitter.Node, source []byte) model.Visibility {
	modifier := findChildByType(n, "visibility_modifier")
	if modifier == nil {
		return model.Private
	}
	text := strings.TrimSpace(extractNodeText(modifier, source))
	switch {
	case text == "pub":
		return model.Public
	case text == "crate":
		return model.Crate
	case strings.HasPrefix(text, "pub(") && strings.HasSuffix(text, ")"):
		inner := strings.TrimSpace(text[len("pub(") : len(text)-1])
		if inner == "crate" {
			return model.Crate
		}
		return model.Restricted(inner)
	}
	return model.Private
}
