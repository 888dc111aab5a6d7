package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTypeRef(t *testing.T) {
	tests := []struct {
		raw        string
		modifiers  string
		importPath string
		name       string
		wantErr    bool
	}{
		{raw: "string", name: "string"},
		{raw: "*string", modifiers: "*", name: "string"},
		{raw: "[]byte", modifiers: "[]", name: "byte"},
		{raw: "*github.com/UnAfraid/dataloader/example.User", modifiers: "*", importPath: "github.com/UnAfraid/dataloader/example", name: "User"},
		{raw: "[]*github.com/UnAfraid/dataloader/example.User", modifiers: "[]*", importPath: "github.com/UnAfraid/dataloader/example", name: "User"},
		{raw: "", wantErr: true},
		{raw: "*", wantErr: true},
		{raw: "github.com/UnAfraid/dataloader/example", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			parsed, err := parseTypeRef(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.modifiers, parsed.modifiers)
			require.Equal(t, tt.importPath, parsed.importPath)
			require.Equal(t, tt.name, parsed.name)
		})
	}
}

func TestLocalRendering(t *testing.T) {
	parsed, err := parseTypeRef("*github.com/UnAfraid/dataloader/example.User")
	require.NoError(t, err)

	// a reference into the destination package itself needs no import
	local, importPath, err := parsed.local("", "github.com/UnAfraid/dataloader/example")
	require.NoError(t, err)
	require.Equal(t, "*User", local)
	require.Empty(t, importPath)
}

func TestSourceTemplate(t *testing.T) {
	var buf bytes.Buffer
	err := sourceTemplate.Execute(&buf, templateData{
		Package:   "example",
		Name:      "UserSource",
		VarName:   "userSource",
		GroupType: "string",
		KeyType:   "string",
		ValueType: "*User",
	})
	require.NoError(t, err)

	rendered := buf.String()
	require.Contains(t, rendered, "package example")
	require.Contains(t, rendered, "type UserSource = dataloader.BatchSource[string, string, *User]")
	require.Contains(t, rendered, "func NewUserSource(config UserSourceConfig) *UserSource {")
	require.Contains(t, rendered, "func UserSourceFromLoader(l *dataloader.Loader, name string) (*UserSource, error) {")
}
