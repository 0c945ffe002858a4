package commands

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-scanner/internal/categorizer"
	"github.com/insightdelivered/statement-scanner/internal/models"
)

func newLearnCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "learn <merchant> <category>",
		Short:   "Remember the category for a merchant",
		Example: `  statement-scanner learn "MARCO CARONTE" dining`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(false)
			if err != nil {
				return err
			}
			if err := svc.Categorizer().Learn(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], args[1])
			return nil
		},
	}
}

func newCategoriesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List budget categories and learned merchants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(false)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, t := range []models.TransactionType{models.TypeIncome, models.TypeExpense, models.TypeSavings} {
				fmt.Fprintf(tw, "%s\t%s\n", t, strings.Join(categorizer.Categories[t], ", "))
			}

			learned := svc.Categorizer().Learned()
			if len(learned) > 0 {
				merchants := make([]string, 0, len(learned))
				for m := range learned {
					merchants = append(merchants, m)
				}
				sort.Strings(merchants)

				fmt.Fprintln(tw)
				fmt.Fprintln(tw, "MERCHANT\tCATEGORY")
				for _, m := range merchants {
					fmt.Fprintf(tw, "%s\t%s\n", m, learned[m])
				}
			}
			return tw.Flush()
		},
	}
}
