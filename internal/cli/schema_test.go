package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema(t *testing.T) {
	root := &cobra.Command{Use: "ocrlabd", Short: "OCR Lab daemon"}
	serve := &cobra.Command{Use: "serve", Short: "Start the API server"}
	serve.Flags().StringP("port", "p", "8080", "Port to listen on")
	hidden := &cobra.Command{Use: "debug", Hidden: true}
	root.AddCommand(serve, hidden)
	AddHelpJSONFlag(root)

	schema := GenerateSchema(root)

	assert.Equal(t, "ocrlabd", schema.Name)
	assert.Equal(t, "OCR Lab daemon", schema.Description)
	require.Len(t, schema.Subcommands, 1)

	sub := schema.Subcommands[0]
	assert.Equal(t, "serve", sub.Name)
	require.Len(t, sub.Flags, 1)
	assert.Equal(t, "port", sub.Flags[0].Name)
	assert.Equal(t, "p", sub.Flags[0].Shorthand)
	assert.Equal(t, "8080", sub.Flags[0].Default)
}

func TestGenerateSchema_SkipsHelpFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "serve"}
	AddHelpJSONFlag(cmd)
	cmd.InitDefaultHelpFlag()

	schema := GenerateSchema(cmd)
	for _, f := range schema.Flags {
		assert.NotEqual(t, "help", f.Name)
		assert.NotEqual(t, "help-json", f.Name)
	}
}

func TestResolveCommand(t *testing.T) {
	root := &cobra.Command{Use: "ocrlabd"}
	serve := &cobra.Command{Use: "serve"}
	root.AddCommand(serve)

	assert.Equal(t, serve, resolveCommand(root, []string{"serve"}))
	assert.Equal(t, root, resolveCommand(root, []string{"unknown"}))
	assert.Equal(t, root, resolveCommand(root, nil))
}
