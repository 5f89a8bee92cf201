package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TFMV/flatjson/internal/schema"
)

// RootCmd is the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "flatjson",
	Short: "FlatJSON schema-driven converter",
	Long: `FlatJSON converts JSON text to FlatBuffers binaries and back using a
compiled schema, with no generated code involved.`,
}

// Execute executes the root command.
func Execute() error {
	return RootCmd.Execute()
}

// ExecuteWithContext executes the root command with the given context.
func ExecuteWithContext(ctx context.Context) error {
	// Set the context for the command
	RootCmd.SetContext(ctx)
	return RootCmd.Execute()
}

// Parsed schemas are cached across subcommand invocations.
var registry = schema.NewRegistry()

// loadSchemaType loads the schema binary at path and resolves the table to
// convert against, defaulting to the schema's root table.
func loadSchemaType(bfbs []byte, typeName string) (schema.Type, error) {
	s, err := registry.Load(bfbs)
	if err != nil {
		return nil, err
	}
	if typeName == "" {
		t, ok := s.Root()
		if !ok {
			return nil, fmt.Errorf("schema has no root table, use --type")
		}
		return t, nil
	}
	t, ok := s.Lookup(typeName)
	if !ok {
		return nil, fmt.Errorf("type %q not found in schema", typeName)
	}
	return t, nil
}
