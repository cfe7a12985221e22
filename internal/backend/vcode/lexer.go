package vcode

import "github.com/alecthomas/participle/v2/lexer"

// vcodeLexer tokenizes the VCode golden-file text format (spec.md
// §6.2), trimmed further than LPIR's lexer since VCode carries no
// types and no float literals.
var vcodeLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `;[^\n]*`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `-?(0x[0-9a-fA-F]+|[0-9]+)`, nil},
		{"Punct", `[%(){}:,=.]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
