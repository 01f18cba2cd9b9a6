package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dsar/internal/detection/masking"
)

func newMaskCmd(root *rootOptions) *cobra.Command {
	var piiType string
	cmd := &cobra.Command{
		Use:   "mask [value...]",
		Short: "Mask values with the rule for a PII type",
		Long: "mask prints each value masked with the rule for --type. With no arguments " +
			"values are read from stdin, one per line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := masking.PIIType(strings.ToUpper(piiType))
			if !t.IsValid() {
				names := make([]string, 0, len(masking.AllTypes()))
				for _, known := range masking.AllTypes() {
					names = append(names, string(known))
				}
				return fmt.Errorf("unknown PII type %q (want one of %s)", piiType, strings.Join(names, ", "))
			}

			values := args
			if len(values) == 0 {
				sc := bufio.NewScanner(cmd.InOrStdin())
				for sc.Scan() {
					if line := strings.TrimSpace(sc.Text()); line != "" {
						values = append(values, line)
					}
				}
				if err := sc.Err(); err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			}

			masked := make([]string, len(values))
			for i, v := range values {
				masked[i] = masking.Mask(v, t)
			}
			if root.json {
				return writeJSON(cmd.OutOrStdout(), masked)
			}
			for _, m := range masked {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&piiType, "type", "t", string(masking.TypeGeneric), "PII type whose masking rule applies")
	return cmd
}
