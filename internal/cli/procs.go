package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/rvconf/internal/derive/procs"
)

var procsCmd = &cobra.Command{
	Use:   "procs",
	Short: "List the registered derivation procedures",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := procs.Builtin()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tREADS\tWRITES\tSUMMARY")
		for _, d := range r.Describe() {
			p, err := d.New(nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Name, keyList(p.Requires()), keyList(p.Provides()), d.Summary)
		}
		return tw.Flush()
	},
}

func keyList(keys []string) string {
	if len(keys) == 0 {
		return "(per region)"
	}
	return strings.Join(keys, ",")
}
