package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vaultcraft/vaultcraft/internal/vault/payload"
	"github.com/vaultcraft/vaultcraft/pkg/idx"
	"github.com/vaultcraft/vaultcraft/pkg/vaultsdk"
)

var itemsFilterType string

func init() {
	itemsListCmd.Flags().StringVarP(&itemsFilterType, "type", "t", "", "only list items of this kind")
	registerItemFlags(itemsAddCmd)
	registerItemFlags(itemsEditCmd)
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		sess, _, err := restoreSession(ctx, st)
		if err != nil {
			return err
		}

		s, cleanup := startSpinner("Fetching items...")
		items, err := sess.ListItems(ctx, vaultsdk.ItemFilter{Type: itemsFilterType})
		if err != nil {
			s.FinalMSG = failureMsg(err.Error())
			cleanup()
			return fmt.Errorf("list failed")
		}
		cleanup()

		if len(items) == 0 {
			fmt.Println(hintMsg("No items yet. Add one with " + color.YellowString("vaultcli items add")))
			return nil
		}
		for _, item := range items {
			title := item.Fields["site"]
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%s  %-8s %s\n", color.YellowString(item.ID), item.Type, title)
		}
		return nil
	},
}

var itemsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		sess, _, err := restoreSession(ctx, st)
		if err != nil {
			return err
		}

		item, err := sess.GetItem(ctx, args[0])
		if err != nil {
			fmt.Println(failureMsg(err.Error()))
			return fmt.Errorf("get failed")
		}
		printItem(item)
		return nil
	},
}

var itemsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an item to the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		item, err := payload.Build(itemInput)
		if err != nil {
			var verr *payload.ValidationError
			if errors.As(err, &verr) {
				fmt.Println(failureMsg(verr.Reason))
				return fmt.Errorf("validation failed")
			}
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		sess, _, err := restoreSession(ctx, st)
		if err != nil {
			return err
		}

		s, cleanup := startSpinner("Saving item...")
		created, err := sess.CreateItem(ctx, item, idx.NewIdempotencyKey())
		if err != nil {
			s.FinalMSG = failureMsg(err.Error())
			cleanup()
			return fmt.Errorf("add failed")
		}
		s.FinalMSG = successMsg("Saved " + color.YellowString(created.ID))
		cleanup()
		return nil
	},
}

var itemsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Replace an item's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		item, err := payload.Build(itemInput)
		if err != nil {
			var verr *payload.ValidationError
			if errors.As(err, &verr) {
				fmt.Println(failureMsg(verr.Reason))
				return fmt.Errorf("validation failed")
			}
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		sess, _, err := restoreSession(ctx, st)
		if err != nil {
			return err
		}

		s, cleanup := startSpinner("Updating item...")
		updated, err := sess.UpdateItem(ctx, args[0], item)
		if err != nil {
			s.FinalMSG = failureMsg(err.Error())
			cleanup()
			return fmt.Errorf("edit failed")
		}
		s.FinalMSG = successMsg("Updated " + color.YellowString(updated.ID))
		cleanup()
		return nil
	},
}

var itemsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		sess, _, err := restoreSession(ctx, st)
		if err != nil {
			return err
		}

		if err := sess.DeleteItem(ctx, args[0]); err != nil {
			fmt.Println(failureMsg(err.Error()))
			return fmt.Errorf("delete failed")
		}
		fmt.Println(successMsg("Deleted " + color.YellowString(args[0])))
		return nil
	},
}
