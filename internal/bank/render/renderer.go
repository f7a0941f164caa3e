package render

import (
	"strings"

	"github.com/tyrchen/codebank-sub000/internal/bank/model"
)

const indentUnit = "    "

// Renderer turns structural units back into source fragments for one language.
// Every Render method returns either "" (omit) or a block ending in exactly one newline.
type Renderer struct {
	lang  model.LanguageType
	rules Rules
}

// New creates a renderer for lang.
func New(lang model.LanguageType) *Renderer {
	return &Renderer{lang: lang, rules: RulesFor(lang)}
}

// Rules returns the formatter rules the renderer applies.
func (r *Renderer) Rules() Rules {
	return r.rules
}

// RenderFile renders a whole file body.
func (r *Renderer) RenderFile(file *model.FileUnit, strategy Strategy) string {
	if file == nil {
		return ""
	}
	if strategy == Default {
		return file.Source
	}

	var blocks []string

	if file.Doc != "" {
		blocks = append(blocks, r.fileDoc(file.Doc))
	}

	// A Go package clause leads the file, ahead of its imports.
	if r.lang == model.Go {
		for i := range file.Modules {
			blocks = appendBlock(blocks, r.RenderModule(&file.Modules[i], strategy))
		}
	}

	if len(file.Declares) > 0 {
		var sb strings.Builder
		for _, decl := range file.Declares {
			sb.WriteString(decl.Source)
			sb.WriteString("\n")
		}
		blocks = append(blocks, sb.String())
	}

	if r.lang != model.Go {
		for i := range file.Modules {
			blocks = appendBlock(blocks, r.RenderModule(&file.Modules[i], strategy))
		}
	}
	for i := range file.Functions {
		blocks = appendBlock(blocks, r.RenderFunction(&file.Functions[i], strategy))
	}
	for i := range file.Structs {
		blocks = appendBlock(blocks, r.RenderStruct(&file.Structs[i], strategy))
	}
	for i := range file.Traits {
		blocks = appendBlock(blocks, r.RenderTrait(&file.Traits[i], strategy))
	}
	for i := range file.Impls {
		blocks = appendBlock(blocks, r.RenderImpl(&file.Impls[i], strategy))
	}

	return strings.Join(blocks, "\n")
}

// RenderModule renders a module and, recursively, its contents.
func (r *Renderer) RenderModule(module *model.ModuleUnit, strategy Strategy) string {
	if strategy == Default {
		return terminate(module.Source)
	}
	if r.rules.IsTestModule(module.Name, module.Attributes) {
		return ""
	}
	if strategy == Summary && !module.Visibility.IsPublic() && r.lang != model.Go {
		return ""
	}

	if r.lang == model.Go {
		return r.docLines(module.Doc) + "package " + module.Name + "\n"
	}

	var children []string
	if len(module.Declares) > 0 {
		var sb strings.Builder
		for _, decl := range module.Declares {
			sb.WriteString(decl.Source)
			sb.WriteString("\n")
		}
		children = append(children, sb.String())
	}
	for i := range module.Functions {
		children = appendBlock(children, r.RenderFunction(&module.Functions[i], strategy))
	}
	for i := range module.Structs {
		children = appendBlock(children, r.RenderStruct(&module.Structs[i], strategy))
	}
	for i := range module.Traits {
		children = appendBlock(children, r.RenderTrait(&module.Traits[i], strategy))
	}
	for i := range module.Impls {
		children = appendBlock(children, r.RenderImpl(&module.Impls[i], strategy))
	}
	for i := range module.Submodules {
		children = appendBlock(children, r.RenderModule(&module.Submodules[i], strategy))
	}

	if strategy == Summary && len(children) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(r.docLines(module.Doc))
	for _, attr := range module.Attributes {
		if strategy == Summary && r.rules.IsTestModule("", []string{attr}) {
			continue
		}
		sb.WriteString(attr)
		sb.WriteString("\n")
	}

	opening, closing := r.moduleDelimiters(module)
	if opening == "" {
		sb.WriteString(strings.Join(children, "\n"))
		return sb.String()
	}
	sb.WriteString(opening)
	sb.WriteString("\n")
	sb.WriteString(indent(strings.Join(children, "\n")))
	sb.WriteString(closing)
	sb.WriteString("\n")
	return sb.String()
}

func (r *Renderer) moduleDelimiters(module *model.ModuleUnit) (string, string) {
	switch r.lang {
	case model.Rust:
		head := "mod " + module.Name
		if vis := module.Visibility.AsStr(model.Rust); vis != "" {
			head = vis + " " + head
		}
		return head + " {", "}"
	case model.Cpp, model.C:
		return "namespace " + module.Name + " {", "}"
	default:
		return "", ""
	}
}

// RenderFunction renders a top-level function. Under Summary non-public
// functions are dropped.
func (r *Renderer) RenderFunction(fn *model.FunctionUnit, strategy Strategy) string {
	if strategy == Summary && !fn.Visibility.IsPublic() {
		return ""
	}
	return r.renderFunction(fn, strategy)
}

func (r *Renderer) renderFunction(fn *model.FunctionUnit, strategy Strategy) string {
	if strategy == Default {
		return terminate(fn.Source)
	}
	if r.rules.IsTestFunctionNamed(fn.Name, fn.Attributes) {
		return ""
	}

	doc := fn.Doc
	var text string
	switch strategy {
	case NoTests:
		text = r.functionSource(fn)
		if r.carriesDocstring(text, doc) {
			doc = ""
		}
	case Summary:
		if fn.Signature == "" && fn.Source == "" {
			text = fn.Name + r.rules.SummaryEllipsis
		} else {
			text = r.rules.FormatSignature(fn.Source, fn.Signature)
		}
	}

	var sb strings.Builder
	sb.WriteString(r.docLines(doc))
	for _, attr := range fn.Attributes {
		if r.rules.isTestAttribute(attr) {
			continue
		}
		sb.WriteString(attr)
		sb.WriteString("\n")
	}
	sb.WriteString(text)
	return terminate(sb.String())
}

// functionSource joins signature and body, falling back to the verbatim source.
func (r *Renderer) functionSource(fn *model.FunctionUnit) string {
	return r.dedent(r.joinedSource(fn))
}

func (r *Renderer) joinedSource(fn *model.FunctionUnit) string {
	switch {
	case fn.Signature != "" && fn.Body != "" && !(fn.Source != "" && endsInLineComment(fn.Signature)):
		sig := strings.TrimRight(fn.Signature, " \t")
		if strings.HasPrefix(fn.Body, ":") {
			return sig + fn.Body
		}
		return sig + " " + fn.Body
	case fn.Source != "":
		return fn.Source
	default:
		return fn.Signature
	}
}

// endsInLineComment reports whether the last line of sig carries a // comment,
// which would swallow a body joined onto that line.
func endsInLineComment(sig string) bool {
	return strings.Contains(sig[strings.LastIndex(sig, "\n")+1:], "//")
}

// colocatesMethods reports whether methods are written inside the type body.
func (r *Renderer) colocatesMethods() bool {
	switch r.lang {
	case model.Python, model.TypeScript, model.Cpp, model.C:
		return true
	}
	return false
}

// RenderStruct renders a struct, class, enum or type alias.
func (r *Renderer) RenderStruct(st *model.StructUnit, strategy Strategy) string {
	if strategy == Default {
		return terminate(st.Source)
	}
	if strategy == Summary && !st.Visibility.IsPublic() {
		return ""
	}

	verbatim := strategy == NoTests && st.Source != "" && !(r.colocatesMethods() && r.hasTestMethod(st.Methods))
	doc := st.Doc
	if verbatim && r.carriesDocstring(st.Source, doc) {
		doc = ""
	}

	var sb strings.Builder
	sb.WriteString(r.docLines(doc))
	for _, attr := range st.Attributes {
		sb.WriteString(attr)
		sb.WriteString("\n")
	}

	if strategy == NoTests {
		if verbatim {
			sb.WriteString(r.dedent(st.Source))
			return terminate(sb.String())
		}
		var members []string
		for _, field := range st.Fields {
			members = append(members, r.fieldLine(field))
		}
		if r.colocatesMethods() {
			for i := range st.Methods {
				members = appendBlock(members, r.renderFunction(&st.Methods[i], NoTests))
			}
		}
		sb.WriteString(r.typeBody(st.Head, members))
		return terminate(sb.String())
	}

	// Summary
	if strings.HasSuffix(strings.TrimSpace(st.Head), ";") || r.isAlias(st) {
		sb.WriteString(st.Head)
		return terminate(sb.String())
	}
	var members []string
	for _, field := range st.Fields {
		members = append(members, r.fieldLine(field))
	}
	if r.colocatesMethods() {
		for i := range st.Methods {
			if !st.Methods[i].Visibility.IsPublic() {
				continue
			}
			members = appendBlock(members, r.renderFunction(&st.Methods[i], Summary))
		}
	}
	if len(members) == 0 {
		sb.WriteString(st.Head)
		sb.WriteString(r.rules.SummaryEllipsis)
		return terminate(sb.String())
	}
	sb.WriteString(r.typeBody(st.Head, members))
	return terminate(sb.String())
}

// isAlias reports whether the unit is a type alias whose head is its full source.
func (r *Renderer) isAlias(st *model.StructUnit) bool {
	return st.Source != "" && st.Head == st.Source && len(st.Fields) == 0 && len(st.Methods) == 0
}

func (r *Renderer) hasTestMethod(methods []model.FunctionUnit) bool {
	for _, m := range methods {
		if r.rules.IsTestFunctionNamed(m.Name, m.Attributes) {
			return true
		}
	}
	return false
}

// fieldLine renders one field with its doc, attributes and separator.
func (r *Renderer) fieldLine(field model.FieldUnit) string {
	var sb strings.Builder
	sb.WriteString(r.docLines(field.Doc))
	for _, attr := range field.Attributes {
		sb.WriteString(attr)
		sb.WriteString("\n")
	}
	src := strings.TrimSpace(field.Source)
	if src == "" {
		src = field.Name
	}
	sb.WriteString(src)
	if sep := r.rules.FieldSeparator; sep != "" && !strings.HasSuffix(src, sep) && !strings.HasSuffix(src, ",") && !strings.HasSuffix(src, ";") {
		sb.WriteString(sep)
	}
	sb.WriteString("\n")
	return sb.String()
}

// typeBody wraps members in the language's body delimiters.
func (r *Renderer) typeBody(head string, members []string) string {
	var sb strings.Builder
	sb.WriteString(head)
	if r.lang == model.Python {
		sb.WriteString(":\n")
	} else {
		sb.WriteString(" {\n")
	}
	sb.WriteString(indent(strings.Join(members, "")))
	if r.lang != model.Python {
		sb.WriteString(r.rules.BodyEnd)
		if r.lang == model.Cpp || r.lang == model.C {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderTrait renders a trait or interface.
func (r *Renderer) RenderTrait(tr *model.TraitUnit, strategy Strategy) string {
	if strategy == Default {
		return terminate(tr.Source)
	}
	if strategy == Summary && !tr.Visibility.IsPublic() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(r.docLines(tr.Doc))
	for _, attr := range tr.Attributes {
		sb.WriteString(attr)
		sb.WriteString("\n")
	}

	head := r.traitHead(tr)
	if strategy == Summary {
		sb.WriteString(head)
		sb.WriteString(r.rules.SummaryEllipsis)
		return terminate(sb.String())
	}

	if tr.Source != "" && !r.hasTestMethod(tr.Methods) {
		sb.WriteString(r.dedent(tr.Source))
		return terminate(sb.String())
	}
	var members []string
	for i := range tr.Methods {
		members = appendBlock(members, r.renderFunction(&tr.Methods[i], NoTests))
	}
	sb.WriteString(head)
	sb.WriteString(" {\n")
	sb.WriteString(indent(strings.Join(members, "")))
	sb.WriteString(r.rules.BodyEnd)
	sb.WriteString("\n")
	return sb.String()
}

func (r *Renderer) traitHead(tr *model.TraitUnit) string {
	if tr.Head != "" {
		return tr.Head
	}
	head := "trait " + tr.Name
	if vis := tr.Visibility.AsStr(r.lang); vis != "" {
		head = vis + " " + head
	}
	return head
}

// RenderImpl renders an impl block. Under Summary inherent blocks keep only
// public methods and trait impls keep every non-test method.
func (r *Renderer) RenderImpl(impl *model.ImplUnit, strategy Strategy) string {
	if strategy == Default {
		return terminate(impl.Source)
	}

	traitImpl := r.isTraitImpl(impl)
	var methods []*model.FunctionUnit
	for i := range impl.Methods {
		m := &impl.Methods[i]
		if r.rules.IsTestFunctionNamed(m.Name, m.Attributes) {
			continue
		}
		if strategy == Summary && !traitImpl && !m.Visibility.IsPublic() {
			continue
		}
		methods = append(methods, m)
	}
	if strategy == Summary && !traitImpl && len(methods) == 0 {
		return ""
	}

	var rendered []string
	for _, m := range methods {
		rendered = appendBlock(rendered, r.renderFunction(m, strategy))
	}

	// Go receiver groups are synthesized; their methods render at file level.
	if r.lang == model.Go {
		if len(rendered) == 0 {
			return ""
		}
		return strings.Join(rendered, "\n")
	}

	var sb strings.Builder
	sb.WriteString(r.docLines(impl.Doc))
	for _, attr := range impl.Attributes {
		sb.WriteString(attr)
		sb.WriteString("\n")
	}
	sb.WriteString(impl.Head)
	sb.WriteString(" {\n")
	sb.WriteString(indent(strings.Join(rendered, "\n")))
	sb.WriteString(r.rules.BodyEnd)
	sb.WriteString("\n")
	return sb.String()
}

// isTraitImpl applies the " for " rule; Go receiver groups are inherent.
func (r *Renderer) isTraitImpl(impl *model.ImplUnit) bool {
	if r.lang == model.Go {
		return false
	}
	return impl.IsTraitImpl()
}

// docLines renders doc with one marker per line.
func (r *Renderer) docLines(doc string) string {
	return markLines(doc, r.rules.DocMarker)
}

// fileDoc renders a file-level doc in the form the parser reads back as the
// file's own doc: inner doc comments for Rust, a module docstring for Python.
func (r *Renderer) fileDoc(doc string) string {
	switch r.lang {
	case model.Rust:
		return markLines(doc, "//!")
	case model.Python:
		if !strings.Contains(doc, `"""`) && !strings.HasSuffix(doc, `"`) {
			return `"""` + doc + `"""` + "\n"
		}
	}
	return r.docLines(doc)
}

// carriesDocstring reports whether a verbatim Python source already holds
// doc as the string literal opening its body.
func (r *Renderer) carriesDocstring(source, doc string) bool {
	if r.lang != model.Python || doc == "" {
		return false
	}
	first := strings.TrimSpace(strings.SplitN(doc, "\n", 2)[0])
	if first == "" {
		return false
	}
	idx := strings.Index(source, first)
	if idx < 0 {
		return false
	}
	before := strings.TrimRight(source[:idx], " \t\r\n")
	return strings.HasSuffix(before, `"`) || strings.HasSuffix(before, `'`)
}

func markLines(doc, marker string) string {
	if doc == "" {
		return ""
	}
	var sb strings.Builder
	for _, line := range strings.Split(doc, "\n") {
		sb.WriteString(marker)
		if line != "" {
			sb.WriteString(" ")
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// dedent strips the indentation a nested node's source keeps on its
// continuation lines, measured by the closing line of brace languages.
func (r *Renderer) dedent(s string) string {
	if r.lang == model.Python || !strings.Contains(s, "\n") {
		return s
	}
	lines := strings.Split(s, "\n")
	last := strings.TrimRight(lines[len(lines)-1], " \t")
	trimmed := strings.TrimLeft(last, " \t")
	width := len(last) - len(trimmed)
	if width == 0 || !strings.HasPrefix(trimmed, r.rules.BodyEnd) || r.rules.BodyEnd == "" {
		return s
	}
	prefix := last[:width]
	for i := 1; i < len(lines); i++ {
		lines[i] = strings.TrimPrefix(lines[i], prefix)
	}
	return strings.Join(lines, "\n")
}

// appendBlock appends a non-empty block.
func appendBlock(blocks []string, block string) []string {
	if block == "" {
		return blocks
	}
	return append(blocks, block)
}

// terminate ensures s ends with exactly one newline; "" stays "".
func terminate(s string) string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return ""
	}
	return s + "\n"
}

// indent prefixes every non-empty line with four spaces.
func indent(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.SplitAfter(s, "\n")
	var sb strings.Builder
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			sb.WriteString(indentUnit)
		}
		sb.WriteString(line)
	}
	return sb.String()
}
