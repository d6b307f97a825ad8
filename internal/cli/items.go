package cli

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vaultcraft/vaultcraft/internal/vault/payload"
	"github.com/vaultcraft/vaultcraft/pkg/vaultsdk"
)

// Shared form flags for items add / edit.
var itemInput payload.Input

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Manage the logins, cards and notes in your vault",
}

func init() {
	itemsCmd.AddCommand(itemsListCmd)
	itemsCmd.AddCommand(itemsGetCmd)
	itemsCmd.AddCommand(itemsAddCmd)
	itemsCmd.AddCommand(itemsEditCmd)
	itemsCmd.AddCommand(itemsRmCmd)
}

func registerItemFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar((*string)(&itemInput.Kind), "kind", "login", "item kind: login, card or note")
	f.StringVar(&itemInput.Site, "site", "", "website or display title")
	f.StringVar(&itemInput.Notes, "notes", "", "free-form notes")
	f.StringVar(&itemInput.Username, "username", "", "login username")
	f.StringVar(&itemInput.Password, "password", "", "login password")
	f.StringVar(&itemInput.Cardholder, "cardholder", "", "cardholder name")
	f.StringVar(&itemInput.Number, "number", "", "card number")
	f.StringVar(&itemInput.ExpMonth, "exp-month", "", "card expiration month")
	f.StringVar(&itemInput.ExpYear, "exp-year", "", "card expiration year")
	f.StringVar(&itemInput.CVV, "cvv", "", "card CVV/CVC")
	f.StringVar(&itemInput.Network, "network", "", "card network, e.g. Visa")
}

// printItem renders one item with its fields in a stable order.
func printItem(item *vaultsdk.Item) {
	title := item.Fields["site"]
	if title == "" {
		title = item.ID
	}
	fmt.Printf("%s %s (%s)\n", color.YellowString(item.ID), title, item.Type)

	names := make([]string, 0, len(item.Fields))
	for name := range item.Fields {
		if name == "site" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-11s %s\n", name+":", item.Fields[name])
	}
}
