package treesitter

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/treescope/internal/domain/syntax"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProvider_ParsesGoSource(t *testing.T) {
	p := NewProvider()
	src := "package main\n\nfunc main() {\n\tprintln(42)\n}\n"
	path := writeFixture(t, "main.go", src)

	root, err := p.ParseResult(path)
	require.NoError(t, err)
	require.NotNil(t, root)

	assert.Equal(t, "source_file", root.Kind)
	assert.Equal(t, 0, root.Span.Start)
	assert.Equal(t, len(src), root.Span.End())
	require.NotEmpty(t, root.Children)
	assert.Equal(t, "package_clause", root.Children[0].Kind)
}

func TestProvider_ChildSpansWithinParent(t *testing.T) {
	p := NewProvider()
	path := writeFixture(t, "main.go", "package main\n\nfunc main() {}\n")

	root, err := p.ParseResult(path)
	require.NoError(t, err)
	require.NotNil(t, root)

	root.Walk(func(n *syntax.Node) {
		for _, child := range n.Children {
			assert.GreaterOrEqual(t, child.Span.Start, n.Span.Start,
				"%s starts before parent %s", child.Kind, n.Kind)
			assert.LessOrEqual(t, child.Span.End(), n.Span.End(),
				"%s ends past parent %s", child.Kind, n.Kind)
		}
	})
}

func TestProvider_ChildrenInSourceOrder(t *testing.T) {
	p := NewProvider()
	path := writeFixture(t, "data.json", `{"a": 1, "b": [true, null]}`)

	root, err := p.ParseResult(path)
	require.NoError(t, err)
	require.NotNil(t, root)

	root.Walk(func(n *syntax.Node) {
		for i := 1; i < len(n.Children); i++ {
			assert.GreaterOrEqual(t, n.Children[i].Span.Start, n.Children[i-1].Span.Start,
				"children of %s out of source order", n.Kind)
		}
	})
}

func TestProvider_UnknownExtensionIsNotAnError(t *testing.T) {
	p := NewProvider()
	path := writeFixture(t, "notes.xyz", "hello")

	root, err := p.ParseResult(path)
	assert.NoError(t, err)
	assert.Nil(t, root)
}

func TestProvider_MissingFileIsAnError(t *testing.T) {
	p := NewProvider()

	root, err := p.ParseResult(filepath.Join(t.TempDir(), "gone.go"))
	assert.Error(t, err)
	assert.Nil(t, root)
}

func TestProvider_ContentType(t *testing.T) {
	p := NewProvider()

	assert.Equal(t, "go", p.ContentType("cmd/main.go"))
	assert.Equal(t, "python", p.ContentType("script.py"))
	assert.Equal(t, "yaml", p.ContentType("config.YML"))
	assert.Equal(t, "", p.ContentType("README"))
}

func TestProvider_SupportsExtension(t *testing.T) {
	p := NewProvider()

	assert.True(t, p.SupportsExtension(".go"))
	assert.True(t, p.SupportsExtension(".Rs"))
	assert.False(t, p.SupportsExtension(".xyz"))
}

func TestProvider_DynamicLanguageDetected(t *testing.T) {
	p := NewProvider()

	// Mapped extensions beyond the compiled-in set resolve to a language
	// name so the dynamic loader gets a chance at them.
	assert.Equal(t, "zig", p.ContentType("main.zig"))
	assert.Equal(t, "ruby", p.ContentType("app.rb"))
	assert.True(t, p.SupportsExtension(".java"))
	assert.NotContains(t, p.SupportedLanguages(), "zig", "zig has no compiled-in grammar")
}

func TestProvider_DynamicLoadAttempted(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "zig"+LibExtension())
	require.NoError(t, os.WriteFile(stub, []byte("not a shared library"), 0o644))

	p := NewProvider()
	p.SetGrammarPaths([]string{dir})

	// Resolution must reach dlopen: the stub is found but fails to load.
	_, err := p.language("zig")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dlopen")

	// A parse of a detected-but-unloadable language degrades to no data.
	path := writeFixture(t, "main.zig", "const x = 1;\n")
	root, err := p.ParseResult(path)
	assert.NoError(t, err)
	assert.Nil(t, root)
}

func TestProvider_DynamicLanguageWithoutLoader(t *testing.T) {
	p := NewProvider()

	_, err := p.language("zig")
	assert.Error(t, err)

	root, err := p.ParseResult(writeFixture(t, "main.zig", "const x = 1;\n"))
	assert.NoError(t, err)
	assert.Nil(t, root)
}

func TestProvider_ConcurrentParses(t *testing.T) {
	p := NewProvider()
	p.SetGrammarPaths([]string{t.TempDir()})
	goPath := writeFixture(t, "main.go", "package main\n")
	zigPath := writeFixture(t, "main.zig", "const x = 1;\n")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			root, err := p.ParseResult(goPath)
			assert.NoError(t, err)
			assert.NotNil(t, root)
			_, err = p.ParseResult(zigPath)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestProvider_CloseWithoutLoader(t *testing.T) {
	p := NewProvider()
	p.Close() // no loader configured: must be a no-op
}

func TestDynamicLoader_CloseResets(t *testing.T) {
	dl := NewDynamicLoader([]string{t.TempDir()})
	dl.Close()
	dl.Close() // idempotent

	assert.NotNil(t, dl.SearchPaths())
	_, err := dl.LoadGrammar("zig")
	assert.Error(t, err, "loader stays usable after close")
}

func TestDynamicLoader_MissingGrammar(t *testing.T) {
	dl := NewDynamicLoader([]string{t.TempDir()})

	_, err := dl.LoadGrammar("cobol")
	assert.Error(t, err)
	assert.Empty(t, dl.InstalledGrammars())
}

func TestCSymbolName(t *testing.T) {
	assert.Equal(t, "tree_sitter_go", CSymbolName("go"))
	assert.Equal(t, "tree_sitter_c_sharp", CSymbolName("c-sharp"))
}
