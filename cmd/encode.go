package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	"github.com/TFMV/flatjson/internal/jsonfb"
	"github.com/TFMV/flatjson/internal/msgfile"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [input.json]",
	Short: "Serialize a JSON document to a FlatBuffers binary",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath, _ := cmd.Flags().GetString("schema")
		typeName, _ := cmd.Flags().GetString("type")
		output, _ := cmd.Flags().GetString("out")
		lenient, _ := cmd.Flags().GetBool("lenient")
		if schemaPath == "" || output == "" {
			return fmt.Errorf("both --schema and --out must be specified")
		}

		bfbs, err := msgfile.Read(schemaPath)
		if err != nil {
			return err
		}
		typ, err := loadSchemaType(bfbs, typeName)
		if err != nil {
			return err
		}

		input := "stdin"
		var data []byte
		if len(args) == 1 {
			input = args[0]
			data, err = msgfile.Read(input)
			if err != nil {
				return err
			}
		} else {
			data, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
		}
		if lenient {
			data = jsonc.ToJSON(data)
		}

		buf, err := jsonfb.Encode(data, typ)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", input, err)
		}
		if err := msgfile.Write(output, buf); err != nil {
			return err
		}
		fmt.Printf("Encoded %s as %s (%d bytes) to %s\n", input, typ.Name(), len(buf), output)
		return nil
	},
}

func init() {
	encodeCmd.Flags().String("schema", "", "Compiled schema binary (.bfbs, optionally .zst)")
	encodeCmd.Flags().String("type", "", "Table to encode against (default: schema root)")
	encodeCmd.Flags().String("out", "", "Output file (optionally .zst)")
	encodeCmd.Flags().Bool("lenient", false, "Strip comments and trailing commas before parsing")
	RootCmd.AddCommand(encodeCmd)
}
