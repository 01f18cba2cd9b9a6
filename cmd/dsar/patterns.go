package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dsar/internal/detection/catalog"
)

type patternView struct {
	Name      string           `json:"name"`
	Kind      catalog.Kind     `json:"kind"`
	Category  catalog.Category `json:"category"`
	PIIType   string           `json:"piiType,omitempty"`
	Validator string           `json:"validator,omitempty"`
	Special   bool             `json:"special"`
	Match     string           `json:"match"`
}

func newPatternsCmd(root *rootOptions) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List the detection catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			var filter catalog.Category
			if category != "" {
				filter = catalog.Category(strings.ToUpper(category))
				if !filter.IsValid() {
					return fmt.Errorf("unknown category %q", category)
				}
			}

			views := make([]patternView, 0, cat.Len())
			for _, p := range cat.Patterns() {
				if filter != "" && p.Category() != filter {
					continue
				}
				v := patternView{
					Name:      p.Name(),
					Kind:      p.Kind(),
					Category:  p.Category(),
					PIIType:   string(p.PIIType()),
					Validator: p.ValidatorName(),
					Special:   p.IsSpecial(),
				}
				if p.Kind() == catalog.KindKeyword {
					v.Match = strings.Join(p.Keywords(), ", ")
				} else {
					v.Match = p.Expression()
				}
				views = append(views, v)
			}

			if root.json {
				return writeJSON(cmd.OutOrStdout(), views)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tKIND\tCATEGORY\tPII TYPE\tVALIDATOR\tSPECIAL")
			for _, v := range views {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n", v.Name, v.Kind, v.Category, dash(v.PIIType), dash(v.Validator), v.Special)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list patterns of this category")
	return cmd
}
