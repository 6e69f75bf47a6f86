package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dgallion1/ctidoc/internal/convert"
	"github.com/dgallion1/ctidoc/internal/parser"
	"github.com/dgallion1/ctidoc/internal/render"
	"github.com/dgallion1/ctidoc/internal/schema"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <file>",
	Short: "Print the detected format and object type of each record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		in, err := parser.ParseBytes(data, args[0])
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "INDEX\tFORMAT\tOBJECT TYPE\tATT&CK\tNAME")
		for i, rec := range in.Records {
			if !rec.IsObject() {
				fmt.Fprintf(tw, "%d\t-\t-\t-\t(skipped: %s)\n", i, rec.Kind())
				continue
			}
			_, name, tag := convert.Render(rec, render.ModeFields, in.Name)
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i, tag, schema.ObjectType(rec), schema.DetectMitre(rec, in.Name), name)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
