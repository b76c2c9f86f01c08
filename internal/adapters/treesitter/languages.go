package treesitter

// This file registers the built-in grammars and their extension mappings.
// Each grammar is a Go module from go-sitter-forest — the C source compiles
// into the binary via CGo.
//
// To add a new language:
// 1. go get github.com/alexaandru/go-sitter-forest/{lang}@latest
// 2. Add import + GetLanguage() call in registerBuiltinLanguages()
// 3. Add extension mappings in registerExtensions()

import (
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	forest_bash "github.com/alexaandru/go-sitter-forest/bash"
	forest_c "github.com/alexaandru/go-sitter-forest/c"
	forest_css "github.com/alexaandru/go-sitter-forest/css"
	forest_go "github.com/alexaandru/go-sitter-forest/go"
	forest_html "github.com/alexaandru/go-sitter-forest/html"
	forest_javascript "github.com/alexaandru/go-sitter-forest/javascript"
	forest_json "github.com/alexaandru/go-sitter-forest/json"
	forest_markdown "github.com/alexaandru/go-sitter-forest/markdown"
	forest_python "github.com/alexaandru/go-sitter-forest/python"
	forest_rust "github.com/alexaandru/go-sitter-forest/rust"
	forest_typescript "github.com/alexaandru/go-sitter-forest/typescript"
	forest_yaml "github.com/alexaandru/go-sitter-forest/yaml"
)

// langPtr wraps a GetLanguage() call that returns unsafe.Pointer.
func langPtr(p unsafe.Pointer) *tree_sitter.Language {
	return tree_sitter.NewLanguage(p)
}

// registerBuiltinLanguages adds all compiled-in grammars to the provider.
func (p *Provider) registerBuiltinLanguages() {
	p.addLang("go", langPtr(forest_go.GetLanguage()))
	p.addLang("python", langPtr(forest_python.GetLanguage()))
	p.addLang("javascript", langPtr(forest_javascript.GetLanguage()))
	p.addLang("typescript", langPtr(forest_typescript.GetLanguage()))
	p.addLang("rust", langPtr(forest_rust.GetLanguage()))
	p.addLang("c", langPtr(forest_c.GetLanguage()))
	p.addLang("json", langPtr(forest_json.GetLanguage()))
	p.addLang("yaml", langPtr(forest_yaml.GetLanguage()))
	p.addLang("bash", langPtr(forest_bash.GetLanguage()))
	p.addLang("html", langPtr(forest_html.GetLanguage()))
	p.addLang("css", langPtr(forest_css.GetLanguage()))
	p.addLang("markdown", langPtr(forest_markdown.GetLanguage()))
}

// registerExtensions maps file extensions (and special filenames) to
// language names. The table deliberately covers more languages than the
// compiled-in set: a mapped language without a built-in grammar resolves
// through the dynamic loader, so installing a grammar shared library is
// enough to make its files parseable.
func (p *Provider) registerExtensions() {
	// Compiled-in grammars.
	p.addExt("go", ".go")
	p.addExt("python", ".py", ".pyw")
	p.addExt("javascript", ".js", ".mjs", ".cjs", ".jsx")
	p.addExt("typescript", ".ts", ".mts", ".cts")
	p.addExt("rust", ".rs")
	p.addExt("c", ".c", ".h")
	p.addExt("json", ".json")
	p.addExt("yaml", ".yaml", ".yml")
	p.addExt("bash", ".sh", ".bash", ".bashrc", ".bash_profile")
	p.addExt("html", ".html", ".htm")
	p.addExt("css", ".css")
	p.addExt("markdown", ".md", ".markdown")

	// Dynamic-only grammars, loadable from shared libraries.
	p.addExt("tsx", ".tsx")
	p.addExt("java", ".java")
	p.addExt("cpp", ".cpp", ".hpp", ".cc", ".cxx", ".hxx")
	p.addExt("c-sharp", ".cs")
	p.addExt("ruby", ".rb")
	p.addExt("php", ".php")
	p.addExt("swift", ".swift")
	p.addExt("kotlin", ".kt", ".kts")
	p.addExt("scala", ".scala", ".sc")
	p.addExt("lua", ".lua")
	p.addExt("perl", ".pl", ".pm")
	p.addExt("r", ".r", ".R")
	p.addExt("julia", ".jl")
	p.addExt("elixir", ".ex", ".exs")
	p.addExt("erlang", ".erl", ".hrl")
	p.addExt("haskell", ".hs", ".lhs")
	p.addExt("ocaml", ".ml", ".mli")
	p.addExt("clojure", ".clj", ".cljs", ".cljc")
	p.addExt("zig", ".zig")
	p.addExt("nim", ".nim")
	p.addExt("toml", ".toml")
	p.addExt("sql", ".sql")
}
