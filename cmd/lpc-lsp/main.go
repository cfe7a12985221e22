package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"lpc/internal/lspsrv"
)

const lsName = "lpc-lsp"

func main() {
	commonlog.Configure(1, nil)

	h := lspsrv.NewHandler()
	var handler protocol.Handler = h.Protocol()

	s := server.NewServer(&handler, lsName, false)

	log.Println("Starting lpc-lsp language server...")
	if err := s.RunStdio(); err != nil {
		log.Println("lpc-lsp: server error:", err)
		os.Exit(1)
	}
}
