package lspsrv

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"lpc/internal/ir"
)

// convertParseError turns a single LPIR syntax error into one LSP
// diagnostic, the same shape kanso-lang-kanso's
// internal/lsp.ConvertParseErrors builds for its own parser errors.
func convertParseError(err *ir.ParseError) protocol.Diagnostic {
	line := uint32(0)
	if err.Line > 0 {
		line = uint32(err.Line - 1)
	}
	col := uint32(0)
	if err.Column > 0 {
		col = uint32(err.Column - 1)
	}
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: col},
			End:   protocol.Position{Line: line, Character: col + 5},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("lpc-parser"),
		Message:  err.Message,
	}
}

// convertVerifierErrors turns verifier.VerifyModule's batched errors
// into diagnostics. The verifier locates errors at a block (and
// optionally an instruction), not a source position, so every
// diagnostic is anchored at the top of the document — good enough to
// surface the message, not to underline the exact token.
func convertVerifierErrors(errs []error) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(errs))
	for _, e := range errs {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   protocol.Position{Line: 0, Character: 1},
			},
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("lpc-verifier"),
			Message:  e.Error(),
		})
	}
	return diagnostics
}

func ptrBool(b bool) *bool { return &b }

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }

func ptrString(s string) *string { return &s }
