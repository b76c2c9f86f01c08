// Package treesitter implements ports.ParseProvider using tree-sitter
// grammars. It parses a document from disk and converts the full parse tree
// — every node, in source order, with absolute byte spans — into
// syntax.Node trees for the synchronization engine.
//
// Twelve grammars are compiled in via CGo from go-sitter-forest. Additional
// grammars can be loaded at runtime from .so/.dylib files via purego.
package treesitter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corey/treescope/internal/domain/syntax"
)

// Provider parses source files into syntax trees.
type Provider struct {
	mu        sync.Mutex                       // guards languages: parses can overlap
	languages map[string]*tree_sitter.Language // lang name -> language
	extToLang map[string]string                // extension -> lang name
	loader    *DynamicLoader                   // optional: loads grammars from .so/.dylib
}

// NewProvider creates a provider with all built-in grammars registered.
func NewProvider() *Provider {
	p := &Provider{
		languages: make(map[string]*tree_sitter.Language),
		extToLang: make(map[string]string),
	}
	p.registerBuiltinLanguages()
	p.registerExtensions()
	return p
}

// addLang registers a language by name.
func (p *Provider) addLang(name string, lang *tree_sitter.Language) {
	if lang != nil {
		p.languages[name] = lang
	}
}

// addExt maps file extensions to a language name.
func (p *Provider) addExt(lang string, exts ...string) {
	for _, ext := range exts {
		p.extToLang[ext] = lang
	}
}

// ParseResult parses the document at path and returns the root of its
// syntax tree. Returns nil, nil for unknown languages and for languages
// whose grammar is neither compiled in nor loadable — not an error.
func (p *Provider) ParseResult(path string) (*syntax.Node, error) {
	langName := p.detectLanguage(path)
	if langName == "" {
		return nil, nil
	}

	lang, err := p.language(langName)
	if err != nil {
		return nil, nil // grammar not available, degrade gracefully
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang); err != nil {
		return nil, err
	}

	tree := parser.Parse(source, nil)
	defer tree.Close()

	return convert(tree.RootNode()), nil
}

// ContentType returns the language name declared for this document, or ""
// when the extension is not recognized.
func (p *Provider) ContentType(path string) string {
	return p.detectLanguage(path)
}

// SupportsExtension returns true if the provider recognizes this file
// extension. Extension includes the leading dot.
func (p *Provider) SupportsExtension(ext string) bool {
	_, ok := p.extToLang[strings.ToLower(ext)]
	return ok
}

// language resolves a language name to its grammar: compiled-in first,
// then a dynamic load through the configured search paths. Dynamically
// loaded grammars are memoized for subsequent parses.
func (p *Provider) language(name string) (*tree_sitter.Language, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if lang, ok := p.languages[name]; ok {
		return lang, nil
	}
	if p.loader == nil {
		return nil, fmt.Errorf("grammar %q: not compiled in and no search paths configured", name)
	}
	lang, err := p.loader.LoadGrammar(name)
	if err != nil {
		return nil, err
	}
	p.languages[name] = lang
	return lang, nil
}

// SupportsContentType returns true if a grammar exists (compiled in or
// loadable) for the given content type.
func (p *Provider) SupportsContentType(contentType string) bool {
	p.mu.Lock()
	_, ok := p.languages[contentType]
	p.mu.Unlock()
	if ok {
		return true
	}
	return p.loader != nil && p.loader.GrammarPath(contentType) != ""
}

// SupportedLanguages returns all language names with compiled-in grammars.
func (p *Provider) SupportedLanguages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	langs := make([]string, 0, len(p.languages))
	for name := range p.languages {
		langs = append(langs, name)
	}
	return langs
}

// SetGrammarPaths configures dynamic grammar loading from shared libraries
// found in the given directories, searched in order.
func (p *Provider) SetGrammarPaths(paths []string) {
	p.loader = NewDynamicLoader(paths)
}

// Loader returns the dynamic grammar loader, or nil if not configured.
func (p *Provider) Loader() *DynamicLoader {
	return p.loader
}

// Close releases the dynamic loader's library handles, if any.
func (p *Provider) Close() {
	if p.loader != nil {
		p.loader.Close()
	}
}

// detectLanguage determines the language from the file path.
func (p *Provider) detectLanguage(path string) string {
	base := filepath.Base(path)

	// Special filenames (no extension)
	if lang, ok := p.extToLang[base]; ok {
		return lang
	}

	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := p.extToLang[ext]; ok {
		return lang
	}
	return ""
}

// convert mirrors a tree-sitter node into a syntax.Node, all children in
// source order. Zero-width nodes (missing/inserted by error recovery) come
// through with Length 0.
func convert(n *tree_sitter.Node) *syntax.Node {
	node := &syntax.Node{
		Kind: n.Kind(),
		Span: syntax.Span{
			Start:  int(n.StartByte()),
			Length: int(n.EndByte() - n.StartByte()),
		},
	}
	for i := uint(0); i < uint(n.ChildCount()); i++ {
		node.Children = append(node.Children, convert(n.Child(i)))
	}
	return node
}
