package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/smartattend/smartattend-go/pkg/registry"
)

// resourceCmd represents the resource command
var resourceCmd = &cobra.Command{
	Use:   "resource",
	Short: "Inspect registered resource kinds",
	Long:  `Inspect the resource kinds the isolation layer knows about.`,
}

var resourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered resource kinds and their tables",
	Long: `List every registered resource kind together with the table it maps to
and the columns the isolation layer will accept from callers.

Example:
  smartattendctl resource list`,
	Run: func(cmd *cobra.Command, args []string) {
		listResources()
	},
}

func init() {
	rootCmd.AddCommand(resourceCmd)
	resourceCmd.AddCommand(resourceListCmd)
}

func listResources() {
	reg := registry.Default()

	kinds := reg.Kinds()
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	for _, kind := range kinds {
		d, ok := reg.Lookup(kind)
		if !ok {
			continue
		}
		fmt.Printf("%s\n", kind)
		fmt.Printf("  table:        %s\n", d.Table)
		fmt.Printf("  id column:    %s\n", d.IDColumn)
		fmt.Printf("  owner column: %s\n", d.OwnerColumn)
	}
}
