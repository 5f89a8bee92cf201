package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TFMV/flatjson/internal/jsonfb"
	"github.com/TFMV/flatjson/internal/msgfile"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <input.bin>",
	Short: "Render a FlatBuffers binary as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath, _ := cmd.Flags().GetString("schema")
		typeName, _ := cmd.Flags().GetString("type")
		output, _ := cmd.Flags().GetString("out")
		multiline, _ := cmd.Flags().GetBool("multiline")
		maxVector, _ := cmd.Flags().GetInt("max-vector-size")
		standard, _ := cmd.Flags().GetBool("standard-json")
		precision, _ := cmd.Flags().GetInt("float-precision")
		if schemaPath == "" {
			return fmt.Errorf("--schema must be specified")
		}

		bfbs, err := msgfile.Read(schemaPath)
		if err != nil {
			return err
		}
		typ, err := loadSchemaType(bfbs, typeName)
		if err != nil {
			return err
		}

		buf, err := msgfile.Read(args[0])
		if err != nil {
			return err
		}

		opts := jsonfb.Options{
			MultiLine:       multiline,
			MaxVectorSize:   maxVector,
			UseStandardJSON: standard,
		}
		if precision >= 0 {
			opts.FloatPrecision = &precision
		}
		text := jsonfb.ToJSON(buf, typ, opts)

		if output == "" {
			fmt.Println(text)
			return nil
		}
		if err := msgfile.Write(output, []byte(text+"\n")); err != nil {
			return err
		}
		fmt.Printf("Decoded %s as %s to %s\n", args[0], typ.Name(), output)
		return nil
	},
}

func init() {
	decodeCmd.Flags().String("schema", "", "Compiled schema binary (.bfbs, optionally .zst)")
	decodeCmd.Flags().String("type", "", "Table to decode against (default: schema root)")
	decodeCmd.Flags().String("out", "", "Output file (default: stdout)")
	decodeCmd.Flags().Bool("multiline", false, "Format one field per line")
	decodeCmd.Flags().Int("max-vector-size", 0, "Collapse vectors above this size (0 = unlimited)")
	decodeCmd.Flags().Bool("standard-json", false, "Quote non-finite numbers and rewrite non-UTF-8 strings")
	decodeCmd.Flags().Int("float-precision", -1, "Decimal digits for floats (-1 = shortest)")
	RootCmd.AddCommand(decodeCmd)
}
