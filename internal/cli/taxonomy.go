package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/valuecompass/internal/compass"
	"github.com/ppiankov/valuecompass/internal/model"
)

var (
	taxonomyDimension string
	taxonomyJSON      bool
)

// taxonomyCmd prints the compass axes
var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "List the 40 compass axes and their keywords",
	Long: `List every axis of the compass with its support and oppose keywords.

Example:
  compass taxonomy
  compass taxonomy --dimension how
  compass taxonomy --json`,
	Args: cobra.NoArgs,
	RunE: runTaxonomy,
}

func init() {
	rootCmd.AddCommand(taxonomyCmd)

	taxonomyCmd.Flags().StringVar(&taxonomyDimension, "dimension", "", "only list one dimension (what, whence, how, whither)")
	taxonomyCmd.Flags().BoolVar(&taxonomyJSON, "json", false, "print JSON instead of a table")
}

func runTaxonomy(cmd *cobra.Command, args []string) error {
	tax := compass.Default()

	axes := tax.Axes()
	if taxonomyDimension != "" {
		d := model.Dimension(strings.ToLower(taxonomyDimension))
		if !d.Valid() {
			return fmt.Errorf("unknown dimension %q (want what, whence, how or whither)", taxonomyDimension)
		}
		axes = tax.Dimension(d)
	}

	out := cmd.OutOrStdout()

	if taxonomyJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(axes)
	}

	var current model.Dimension
	for _, a := range axes {
		if a.Key.Dimension != current {
			current = a.Key.Dimension
			fmt.Fprintf(out, "\n%s\n", strings.ToUpper(string(current)))
		}
		fmt.Fprintf(out, "  %-10s %s\n", a.Key, a.Name)
		fmt.Fprintf(out, "             + %s\n", strings.Join(a.Support, ", "))
		fmt.Fprintf(out, "             - %s\n", strings.Join(a.Oppose, ", "))
	}
	fmt.Fprintf(out, "\nCoercive phrases (force %s): %s\n", compass.EnforceKey, strings.Join(tax.CoerciveKeywords(), ", "))

	return nil
}
