package parsers

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/tyrchen/codebank-sub000/internal/bank/model"
)

// Registry routes files to the parser of their language. It holds one parser
// per language for its lifetime.
type Registry struct {
	parsers map[model.LanguageType]Parser
}

// NewRegistry creates a parser for every supported language. Grammar
// failures are returned wrapping model.ErrGrammarInit.
func NewRegistry(fsys afero.Fs) (*Registry, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	constructors := []struct {
		lang model.LanguageType
		new  func(afero.Fs) (Parser, error)
	}{
		{model.Rust, NewRustParser},
		{model.Python, NewPythonParser},
		{model.TypeScript, NewTypeScriptParser},
		{model.C, NewCParser},
		{model.Cpp, NewCppParser},
		{model.Go, NewGoParser},
	}

	r := &Registry{parsers: make(map[model.LanguageType]Parser, len(constructors))}
	for _, c := range constructors {
		parser, err := c.new(fsys)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.parsers[c.lang] = parser
	}
	return r, nil
}

// Supports reports whether lang has a parser.
func (r *Registry) Supports(lang model.LanguageType) bool {
	_, ok := r.parsers[lang]
	return ok
}

// Parse detects the language of path and parses it.
func (r *Registry) Parse(ctx context.Context, path string) (*model.FileUnit, error) {
	lang := model.DetectLanguage(path)
	parser, ok := r.parsers[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedLanguage, path)
	}
	return parser.Parse(ctx, path)
}

// Close releases every parser handle.
func (r *Registry) Close() {
	for lang, parser := range r.parsers {
		parser.Close()
		delete(r.parsers, lang)
	}
}
