package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/help-global/caseflow/internal/model"
	"github.com/help-global/caseflow/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the durable case states",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := state.NewFileStore(cfg.State.File, cfg.State.StatusFile)
		doc, err := st.Load()
		if err != nil {
			return eris.Wrap(err, "load state")
		}

		cases := make([]*model.CaseState, 0, len(doc.Cases))
		for _, c := range doc.Cases {
			cases = append(cases, c)
		}
		sort.Slice(cases, func(i, j int) bool {
			return cases[i].InvoiceNumber < cases[j].InvoiceNumber
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CASE\tSTATUS\tSTAGE\tYY-MM\tAMOUNT\tERROR")
		for _, c := range cases {
			amount := ""
			if c.Amount != 0 {
				amount = strconv.FormatFloat(c.Amount, 'f', 2, 64)
			}
			errText := ""
			if c.ErrKind != "" {
				errText = string(c.ErrKind)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				c.InvoiceNumber, c.Status, c.Stage, c.YYMM, amount, errText)
		}
		fmt.Fprintf(w, "\n%d message(s) seen, %d case(s)\n", len(doc.Messages), len(doc.Cases))
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
