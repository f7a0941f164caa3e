package parsers

import (
	"context"

	"github.com/spf13/afero"
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"

	"github.com/tyrchen/codebank-sub000/internal/bank/model"
)

// cParser parses C files. Trees come from the C grammar; extraction treats C
// as the subset of C++ it shares node kinds with.
type cParser struct {
	*treeSitterParser
}

// NewCParser creates a new C parser reading through fsys.
func NewCParser(fsys afero.Fs) (Parser, error) {
	base, err := newTreeSitterParser(fsys, sitter.NewLanguage(c.Language()), model.C)
	if err != nil {
		return nil, err
	}
	return &cParser{treeSitterParser: base}, nil
}

// Parse parses a C source file.
func (p *cParser) Parse(ctx context.Context, path string) (*model.FileUnit, error) {
	return parseCFamily(ctx, p.treeSitterParser, path)
}
