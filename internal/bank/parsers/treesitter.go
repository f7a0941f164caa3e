package parsers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/spf13/afero"
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/tyrchen/codebank-sub000/internal/bank/model"
)

// Parser extracts the structural model of one source file.
type Parser interface {
	Parse(ctx context.Context, path string) (*model.FileUnit, error)
	Close()
}

// treeSitterParser owns one tree-sitter parser handle bound to a grammar.
// The handle is not safe for concurrent use, so parse serializes on mu.
type treeSitterParser struct {
	mu     sync.Mutex
	fs     afero.Fs
	lang   model.LanguageType
	parser *sitter.Parser
}

// newTreeSitterParser creates a parser handle for the given grammar.
func newTreeSitterParser(fsys afero.Fs, language *sitter.Language, lang model.LanguageType) (*treeSitterParser, error) {
	parser := sitter.NewParser()
	if err := parser.SetLanguage(language); err != nil {
		parser.Close()
		return nil, fmt.Errorf("%w: %s: %w", model.ErrGrammarInit, lang, err)
	}
	return &treeSitterParser{
		fs:     fsys,
		lang:   lang,
		parser: parser,
	}, nil
}

// readSource loads path through the parser's filesystem.
func (p *treeSitterParser) readSource(path string) ([]byte, error) {
	source, err := afero.ReadFile(p.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w: %s", model.ErrIO, model.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: read %s: %w", model.ErrIO, path, err)
	}
	return source, nil
}

// parseFile reads and parses path. The caller must close the returned tree.
func (p *treeSitterParser) parseFile(ctx context.Context, path string) ([]byte, *sitter.Tree, error) {
	source, err := p.readSource(path)
	if err != nil {
		return nil, nil, err
	}
	tree, err := p.parseSource(ctx, path, source)
	if err != nil {
		return nil, nil, err
	}
	return source, tree, nil
}

// parseSource builds a tree for source. Parsing stops early when ctx is cancelled.
func (p *treeSitterParser) parseSource(ctx context.Context, path string, source []byte) (*sitter.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	length := len(source)
	tree := p.parser.ParseWithOptions(func(i int, _ sitter.Point) []byte {
		if i < length {
			return source[i:]
		}
		return []byte{}
	}, nil, &sitter.ParseOptions{
		ProgressCallback: func(sitter.ParseState) bool {
			return ctx.Err() != nil
		},
	})
	if tree == nil {
		p.parser.Reset()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to parse %s file: %s", model.ErrParse, p.lang, path)
	}
	return tree, nil
}

// Close releases the tree-sitter handle.
func (p *treeSitterParser) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

// scope accumulates the units found in a file or module body.
type scope struct {
	declares  []model.DeclareStatement
	modules   []model.ModuleUnit
	functions []model.FunctionUnit
	structs   []model.StructUnit
	traits    []model.TraitUnit
	impls     []model.ImplUnit
}

func (s *scope) declare(source string, kind model.DeclareKind) {
	s.declares = append(s.declares, model.DeclareStatement{Source: source, Kind: kind})
}

func (s *scope) fillFile(file *model.FileUnit) {
	file.Declares = s.declares
	file.Modules = s.modules
	file.Functions = s.functions
	file.Structs = s.structs
	file.Traits = s.traits
	file.Impls = s.impls
}

func (s *scope) fillModule(module *model.ModuleUnit) {
	module.Declares = s.declares
	module.Submodules = s.modules
	module.Functions = s.functions
	module.Structs = s.structs
	module.Traits = s.traits
	module.Impls = s.impls
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// textBetween returns the source from the start of from up to the start of to,
// trimmed of surrounding whitespace.
func textBetween(from, to *sitter.Node, source []byte) string {
	if from == nil || to == nil || to.StartByte() < from.StartByte() {
		return ""
	}
	return strings.TrimSpace(string(source[from.StartByte():to.StartByte()]))
}

// headText is the declaration prefix of node up to body with comments removed
// and whitespace collapsed. A nil body takes the whole node.
func headText(node, body *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if body != nil {
		end = body.StartByte()
	}

	var sb strings.Builder
	pos := start
	walkTree(node, func(n *sitter.Node) bool {
		if n.StartByte() >= end {
			return false
		}
		if isComment(n) {
			if n.StartByte() > pos {
				sb.Write(source[pos:n.StartByte()])
			}
			pos = min(n.EndByte(), end)
			sb.WriteString(" ")
			return false
		}
		return true
	})
	if pos < end {
		sb.Write(source[pos:end])
	}

	head := strings.Join(strings.Fields(sb.String()), " ")
	return strings.TrimSpace(strings.TrimSuffix(head, ","))
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for each node.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		walkTree(child, visitor)
	}
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// findChildrenByType finds all child nodes with the given type.
func findChildrenByType(node *sitter.Node, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			results = append(results, child)
		}
	}
	return results
}

// namedChildren returns the named children of node in order.
func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	count := node.NamedChildCount()
	children := make([]*sitter.Node, 0, count)
	for i := uint(0); i < count; i++ {
		children = append(children, node.NamedChild(i))
	}
	return children
}

// findDescendantByType returns the first node of nodeType below node in pre-order.
func findDescendantByType(node *sitter.Node, nodeType string) *sitter.Node {
	var found *sitter.Node
	walkTree(node, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.Kind() == nodeType {
			found = n
			return false
		}
		return true
	})
	return found
}

func isComment(node *sitter.Node) bool {
	switch node.Kind() {
	case "comment", "line_comment", "block_comment":
		return true
	}
	return false
}

// lastRow is the row holding the last character of node. Line comments that
// swallow their newline end at column zero of the following row.
func lastRow(node *sitter.Node) uint {
	end := node.EndPosition()
	if end.Column == 0 && end.Row > 0 && node.EndByte() > node.StartByte() {
		return end.Row - 1
	}
	return end.Row
}

// isTrailingComment reports whether comment shares its line with the code before it.
func isTrailingComment(comment *sitter.Node) bool {
	prev := comment.PrevSibling()
	if prev == nil || isComment(prev) {
		return false
	}
	return lastRow(prev) == comment.StartPosition().Row
}

// leadingDocs walks back from node over comment and attribute siblings and
// returns the doc text and the attributes in source order. Comments rejected
// by keep are stepped over; a blank line or any other node ends the run.
func leadingDocs(node *sitter.Node, source []byte, isAttribute func(*sitter.Node) bool, keep func(string) bool) (string, []string) {
	var comments, attrs []string
	next := node
	for prev := node.PrevNamedSibling(); prev != nil; prev = prev.PrevNamedSibling() {
		if next.StartPosition().Row > lastRow(prev)+1 {
			break
		}
		switch {
		case isComment(prev):
			if isTrailingComment(prev) {
				next = prev
				continue
			}
			text := extractNodeText(prev, source)
			if keep == nil || keep(text) {
				comments = append(comments, text)
			}
		case isAttribute != nil && isAttribute(prev):
			attrs = append(attrs, strings.TrimSpace(extractNodeText(prev, source)))
		default:
			return joinComments(reverse(comments)), reverse(attrs)
		}
		next = prev
	}
	return joinComments(reverse(comments)), reverse(attrs)
}

// leadingFileDoc returns the comments at the top of root that are separated by
// a blank line from the first declaration, so they do not document it.
func leadingFileDoc(root *sitter.Node, source []byte) string {
	var comments []*sitter.Node
	var first *sitter.Node
	for _, child := range namedChildren(root) {
		if !isComment(child) {
			first = child
			break
		}
		comments = append(comments, child)
	}
	if len(comments) == 0 {
		return ""
	}
	last := comments[len(comments)-1]
	if first != nil && first.StartPosition().Row <= lastRow(last)+1 {
		return ""
	}
	texts := make([]string, 0, len(comments))
	for _, c := range comments {
		texts = append(texts, extractNodeText(c, source))
	}
	return joinComments(texts)
}

func reverse(items []string) []string {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// joinComments strips comment markers and joins the lines with "\n".
func joinComments(comments []string) string {
	var lines []string
	for _, c := range comments {
		lines = append(lines, cleanComment(c)...)
	}
	return strings.Join(trimBlankLines(lines), "\n")
}

var lineMarkers = []string{"///", "//!", "//", "#"}

// cleanComment removes the markers of one line or block comment.
func cleanComment(text string) []string {
	text = strings.TrimRight(text, " \t\r\n")
	if strings.HasPrefix(text, "/*") {
		text = strings.TrimSuffix(text, "*/")
		for _, marker := range []string{"/**", "/*!", "/*"} {
			if strings.HasPrefix(text, marker) {
				text = text[len(marker):]
				break
			}
		}
		var lines []string
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimLeft(line, " \t")
			if strings.HasPrefix(line, "*") {
				line = line[1:]
			}
			lines = append(lines, stripOneSpace(line))
		}
		return trimBlankLines(lines)
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(line, " \t")
		for _, marker := range lineMarkers {
			if strings.HasPrefix(line, marker) {
				line = line[len(marker):]
				break
			}
		}
		lines = append(lines, stripOneSpace(line))
	}
	return lines
}

func stripOneSpace(line string) string {
	line = strings.TrimRight(line, " \t\r")
	return strings.TrimPrefix(line, " ")
}

func trimBlankLines(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// dedentContinuation removes column characters of indentation from every line
// after the first, matching the first line which starts at column.
func dedentContinuation(text string, column uint) string {
	if column == 0 || !strings.Contains(text, "\n") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		n := uint(0)
		for n < column && int(n) < len(line) && (line[n] == ' ' || line[n] == '\t') {
			n++
		}
		lines[i] = line[n:]
	}
	return strings.Join(lines, "\n")
}

// isKind returns a predicate matching any of kinds.
func isKind(kinds ...string) func(*sitter.Node) bool {
	return func(n *sitter.Node) bool {
		for _, k := range kinds {
			if n.Kind() == k {
				return true
			}
		}
		return false
	}
}
