package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TFMV/flatjson/internal/jsonfb"
	"github.com/TFMV/flatjson/internal/msgfile"
	"github.com/TFMV/flatjson/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <schema.bfbs>",
	Short: "Render a compiled schema binary as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		digestOnly, _ := cmd.Flags().GetBool("digest")
		multiline, _ := cmd.Flags().GetBool("multiline")

		bfbs, err := msgfile.Read(args[0])
		if err != nil {
			return err
		}
		if digestOnly {
			fmt.Printf("%016x\n", schema.Digest(bfbs))
			return nil
		}

		// Confirm the binary actually parses as a schema before printing it.
		if _, err := registry.Load(bfbs); err != nil {
			return fmt.Errorf("failed to parse %s: %w", args[0], err)
		}

		opts := jsonfb.Options{MultiLine: multiline}
		fmt.Println(jsonfb.ToJSON(bfbs, schema.ReflectionSchema(), opts))
		return nil
	},
}

func init() {
	schemaCmd.Flags().Bool("digest", false, "Print only the schema digest")
	schemaCmd.Flags().Bool("multiline", false, "Format one field per line")
	RootCmd.AddCommand(schemaCmd)
}
