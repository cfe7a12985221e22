package ir

import "github.com/alecthomas/participle/v2/lexer"

// lpirLexer tokenizes the textual LPIR format (§6.1): function and
// module declarations, block labels, and one instruction per line.
// Modeled on the teacher's stateful lexer, trimmed to LPIR's simpler
// token set (no string/char literals, no nested comments).
var lpirLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `;[^\n]*`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Float", `-?[0-9]+\.[0-9]+`, nil},
		{"Integer", `-?(0x[0-9a-fA-F]+|[0-9]+)`, nil},
		{"Arrow", `->`, nil},
		{"Punct", `[%(){}:,.=]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
