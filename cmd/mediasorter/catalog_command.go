package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mediasorter/internal/metainfo"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	var groups bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the metainfo rules in match order",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := ctx.offlineEngine()
			if err != nil {
				return err
			}
			catalog := engine.Catalog()
			if groups {
				renderGroups(cmd, catalog)
				return nil
			}
			rules := catalog.Rules()
			rows := make([][]string, 0, len(rules))
			for i, rule := range rules {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					string(rule.Group),
					rule.Label,
					rule.Pattern.String(),
				})
			}
			columns := cols("#", "Group", "Label", "Pattern")
			columns[0].Right = true
			renderRows(cmd.OutOrStdout(), columns, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&groups, "groups", false, "Show groups in tag order instead of rules")
	return cmd
}

// renderGroups lists groups in the order their labels are emitted, followed
// by how a tag block is rendered.
func renderGroups(cmd *cobra.Command, catalog *metainfo.Catalog) {
	counts := make(map[metainfo.GroupKind]int)
	for _, rule := range catalog.Rules() {
		counts[rule.Group]++
	}
	order := catalog.Groups()
	rows := make([][]string, 0, len(order))
	for i, group := range order {
		rows = append(rows, []string{strconv.Itoa(i + 1), string(group), strconv.Itoa(counts[group])})
	}
	columns := cols("#", "Group", "Rules")
	columns[0].Right = true
	columns[2].Right = true
	renderRows(cmd.OutOrStdout(), columns, rows)

	format := catalog.Format()
	fmt.Fprintf(cmd.OutOrStdout(), "Tag block: %q\n", format.Prefix+format.Open+"label"+format.Delimiter+"label"+format.Close)
}
