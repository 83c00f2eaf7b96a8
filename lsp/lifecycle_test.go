package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

func TestWorkspaceRootFromParams_FallsBackToRootURI(t *testing.T) {
	params := protocol.InitializeParams{
		RootURI: protocol.DocumentURI(uri.File("/only/root")),
	}
	assert.Equal(t, "/only/root", workspaceRootFromParams(params))
}

func TestWorkspaceRootFromParams_FallsBackToRootPath(t *testing.T) {
	params := protocol.InitializeParams{RootPath: "/legacy/root"}
	assert.Equal(t, "/legacy/root", workspaceRootFromParams(params))
}

func TestWorkspaceRootFromParams_EmptyWhenNothingSet(t *testing.T) {
	assert.Equal(t, "", workspaceRootFromParams(protocol.InitializeParams{}))
}
