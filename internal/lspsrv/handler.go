// Package lspsrv implements the LPIR language server's request
// handlers, grounded on kanso-lang-kanso/internal/lsp's handler shape:
// a glsp protocol.Handler backed by a mutex-guarded per-file cache,
// re-running the front end on every open/change notification rather
// than attempting incremental reparse (spec.md §9 supplemental LSP
// surface).
package lspsrv

import (
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"lpc/internal/ir"
	"lpc/internal/verifier"
)

// Handler implements the LPIR language server: parse + verify on every
// document change, publishing diagnostics back to the client.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
}

// NewHandler returns a handler with an empty document cache.
func NewHandler() *Handler {
	return &Handler{content: make(map[string]string)}
}

// Protocol wires h's methods into a glsp protocol.Handler, the same
// assembly kanso-lang-kanso/cmd/kanso-lsp does inline in main.
func (h *Handler) Protocol() protocol.Handler {
	return protocol.Handler{
		Initialize:            h.Initialize,
		Initialized:           h.Initialized,
		Shutdown:              h.Shutdown,
		TextDocumentDidOpen:   h.TextDocumentDidOpen,
		TextDocumentDidClose:  h.TextDocumentDidClose,
		TextDocumentDidChange: h.TextDocumentDidChange,
	}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("lpc-lsp: initialize")
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("lpc-lsp: initialized")
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Println("lpc-lsp: shutdown")
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.analyzeAndPublish(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.content, path)
	h.mu.Unlock()
	return nil
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// Full-document sync only: the last change event carries the whole
	// new text, same assumption kanso-lang-kanso's handler makes.
	last := params.ContentChanges[len(params.ContentChanges)-1]
	change, ok := last.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return fmt.Errorf("lpc-lsp: expected full-document sync, got incremental change event")
	}
	return h.analyzeAndPublish(ctx, params.TextDocument.URI, change.Text)
}

func (h *Handler) analyzeAndPublish(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.content[path] = text
	h.mu.Unlock()

	diagnostics := diagnoseDocument(path, text)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
	return nil
}

// diagnoseDocument re-runs the parser and verifier over text, the
// analogue of kanso-lang-kanso's updateAST: a module file is tried
// first, falling back to a bare function, each followed by a full
// verifier pass over whatever parsed.
func diagnoseDocument(path, text string) []protocol.Diagnostic {
	if mod, _, err := ir.ParseModule(path, text); err == nil {
		return convertVerifierErrors(verifier.VerifyModule(mod))
	} else if pe, ok := err.(*ir.ParseError); !ok || pe.Message != "expected a module, found a bare function" {
		if ok {
			return []protocol.Diagnostic{convertParseError(pe)}
		}
		return []protocol.Diagnostic{{Message: err.Error(), Severity: ptrSeverity(protocol.DiagnosticSeverityError)}}
	}

	fn, err := ir.ParseFunction(path, text)
	if err != nil {
		if pe, ok := err.(*ir.ParseError); ok {
			return []protocol.Diagnostic{convertParseError(pe)}
		}
		return []protocol.Diagnostic{{Message: err.Error(), Severity: ptrSeverity(protocol.DiagnosticSeverityError)}}
	}
	return convertVerifierErrors(verifier.VerifyFunction(fn, nil))
}

func uriToPath(rawURI protocol.DocumentUri) (string, error) {
	u, err := url.Parse(string(rawURI))
	if err != nil {
		return "", fmt.Errorf("lpc-lsp: invalid URI %s: %w", rawURI, err)
	}
	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 2 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}
