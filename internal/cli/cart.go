package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jrsteele09/go-storefront/cart"
	"github.com/jrsteele09/go-storefront/internal/i18n"
	"github.com/jrsteele09/go-storefront/pricing"
	"github.com/spf13/cobra"
)

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the store's cart",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the cart and its totals",
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.customer(cmd.Context())
				if err != nil {
					return err
				}
				return a.renderCart(cmd, c)
			},
		},
		&cobra.Command{
			Use:   "add <product-id>",
			Short: "Add a product from the store's catalog",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.customer(cmd.Context())
				if err != nil {
					return err
				}
				product, err := c.client.StoreProduct(cmd.Context(), c.tenant, args[0])
				if err != nil {
					return err
				}
				added, err := c.cart.AddItem(cmd.Context(), c.tenant, cart.ItemFromProduct(*product))
				if err != nil {
					return err
				}
				message := i18n.MsgCartAdded
				if !added {
					message = i18n.MsgCartDuplicate
				}
				fmt.Fprintln(cmd.ErrOrStderr(), i18n.Text(a.cfg.GetLocale(), message))
				return a.renderCart(cmd, c)
			},
		},
		&cobra.Command{
			Use:   "remove <product-id>",
			Short: "Remove a product from the cart",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.customer(cmd.Context())
				if err != nil {
					return err
				}
				if err := c.cart.RemoveItem(cmd.Context(), c.tenant, args[0]); err != nil {
					return err
				}
				return a.renderCart(cmd, c)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.customer(cmd.Context())
				if err != nil {
					return err
				}
				return c.cart.Clear(cmd.Context(), c.tenant)
			},
		},
	)
	return cmd
}

func (a *app) renderCart(cmd *cobra.Command, c *customer) error {
	summary, err := c.cart.Summary(cmd.Context(), c.tenant)
	if err != nil {
		return err
	}
	locale := a.cfg.GetLocale()
	return a.render(summary, func(w io.Writer) error {
		if summary.Count == 0 {
			_, err := fmt.Fprintf(w, "The %s cart is empty\n", summary.Tenant)
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tPRICE")
		for _, item := range summary.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.ID, item.Title, item.Type, pricing.FormatKRW(locale, item.EffectivePrice()))
		}
		fmt.Fprintf(tw, "\t\tDISCOUNT\t-%s\n", pricing.FormatKRW(locale, summary.DiscountTotal))
		fmt.Fprintf(tw, "\t\tTOTAL\t%s\n", pricing.FormatKRW(locale, summary.Total))
		return tw.Flush()
	})
}
