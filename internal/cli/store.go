package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/internal/utils"
	"github.com/jrsteele09/go-storefront/pricing"
	"github.com/spf13/cobra"
)

func newStoreCmd(a *app) *cobra.Command {
	var page api.Page

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Browse a store's public catalog",
	}

	products := &cobra.Command{
		Use:   "products",
		Short: "List the store's published products",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.customer(cmd.Context())
			if err != nil {
				return err
			}
			list, err := c.client.StoreProducts(cmd.Context(), c.tenant, page)
			if err != nil {
				return err
			}
			locale := a.cfg.GetLocale()
			return a.render(list, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tPRICE\tDISCOUNT")
				for _, p := range list {
					discount := ""
					if rate := pricing.DiscountRate(p.Price, p.DiscountPrice); rate > 0 {
						discount = fmt.Sprintf("%d%%", rate)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Type,
						pricing.FormatKRW(locale, pricing.EffectivePrice(p.Price, p.DiscountPrice)), discount)
				}
				return tw.Flush()
			})
		},
	}
	products.Flags().IntVar(&page.Skip, "skip", 0, "Products to skip")
	products.Flags().IntVar(&page.Limit, "limit", 100, "Products to list")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Show the store's profile",
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.customer(cmd.Context())
				if err != nil {
					return err
				}
				info, err := c.client.StoreInfo(cmd.Context(), c.tenant)
				if err != nil {
					return err
				}
				return a.render(info, func(w io.Writer) error {
					fmt.Fprintf(w, "%s (%s)\n", info.StoreName, info.Subdomain)
					fmt.Fprintf(w, "by %s\n", info.FullName)
					if info.Bio != nil {
						fmt.Fprintf(w, "\n%s\n", *info.Bio)
					}
					if info.CompanyName != nil {
						fmt.Fprintf(w, "\n%s  %s\n", *info.CompanyName, utils.Value(info.Contact))
					}
					return nil
				})
			},
		},
		products,
		&cobra.Command{
			Use:   "product <product-id>",
			Short: "Show one product with its price and offer countdown",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.customer(cmd.Context())
				if err != nil {
					return err
				}
				p, err := c.client.StoreProduct(cmd.Context(), c.tenant, args[0])
				if err != nil {
					return err
				}
				locale := a.cfg.GetLocale()
				return a.render(p, func(w io.Writer) error {
					fmt.Fprintf(w, "%s [%s]\n", p.Title, p.Type)
					fmt.Fprintf(w, "%s", pricing.FormatKRW(locale, pricing.EffectivePrice(p.Price, p.DiscountPrice)))
					if rate := pricing.DiscountRate(p.Price, p.DiscountPrice); rate > 0 {
						fmt.Fprintf(w, " (%d%% off %s)", rate, pricing.FormatKRW(locale, p.Price))
					}
					fmt.Fprintln(w)
					if left, ok := pricing.ModalCountdown(*p, time.Now()); ok && !left.Expired() {
						fmt.Fprintf(w, "Offer ends in %dd %02dh %02dm %02ds\n", left.Days, left.Hours, left.Minutes, left.Seconds)
					}
					if p.Description != nil {
						fmt.Fprintf(w, "\n%s\n", *p.Description)
					}
					return nil
				})
			},
		},
	)
	return cmd
}

func newOrdersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List the customer's orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.customer(cmd.Context())
			if err != nil {
				return err
			}
			orders, err := c.authorized(cmd.Context()).MyOrders(cmd.Context(), api.Page{})
			if err != nil {
				return err
			}
			locale := a.cfg.GetLocale()
			return a.render(orders, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ORDER\tPRODUCT\tSTATUS\tPAID")
				for _, o := range orders {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", o.OrderNumber, o.ProductID, o.Status, pricing.FormatKRW(locale, o.PaidPrice))
				}
				return tw.Flush()
			})
		},
	}
}
