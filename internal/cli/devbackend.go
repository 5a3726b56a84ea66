package cli

import (
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/backendfake"
	"github.com/jrsteele09/go-storefront/internal/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	demoTenant   = "demo"
	demoPassword = "secret123"
)

func newDevBackendCmd(a *app) *cobra.Command {
	var (
		addr string
		seed bool
	)

	cmd := &cobra.Command{
		Use:    "dev-backend",
		Short:  "Run an in-memory store backend for local development",
		Hidden: true,
		Example: `  storefront dev-backend --addr :8000
  storefront login --tenant demo --email reader@example.com --password secret123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := "/api/v1"
			if u, err := url.Parse(a.cfg.GetAPIURL()); err == nil && u.Path != "" {
				prefix = u.Path
			}

			backend := backendfake.New()
			if seed {
				if err := seedDemo(backend); err != nil {
					return err
				}
			}

			mux := http.NewServeMux()
			mux.Handle(prefix+"/", http.StripPrefix(prefix, backend.Handler()))
			srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
			log.Info().Str("prefix", prefix).Str("tenant", demoTenant).Msg("development backend")
			return listenUntilDone(cmd.Context(), srv)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8000", "Listen address")
	cmd.Flags().BoolVar(&seed, "seed", true, "Create the demo store, customer and e-book")
	return cmd
}

// seedDemo creates a store with one customer who owns a two chapter e-book.
func seedDemo(b *backendfake.Backend) error {
	owner, err := b.AddInstructor("owner@example.com", demoPassword, demoTenant, "Demo Academy")
	if err != nil {
		return errors.Wrap(err, "[seedDemo] instructor")
	}
	customer, err := b.AddCustomer(demoTenant, "reader@example.com", demoPassword, "Demo Reader")
	if err != nil {
		return errors.Wrap(err, "[seedDemo] customer")
	}

	ebook := b.AddProduct(owner.ID, api.Product{
		Title:         "Go in Practice",
		Price:         30000,
		DiscountPrice: utils.Ptr[int64](19900),
		Type:          api.ProductTypeEbook,
		IsPublished:   true,
	})
	b.AddProduct(owner.ID, api.Product{
		Title:       "Concurrency Workshop",
		Price:       50000,
		Type:        api.ProductTypeVideo,
		IsPublished: true,
	})
	if _, err := b.AddPaidOrder(customer.ID, ebook.ID); err != nil {
		return errors.Wrap(err, "[seedDemo] order")
	}

	for i, chapter := range []struct {
		title    string
		sections []string
	}{
		{"Getting started", []string{"Installing Go", "Modules"}},
		{"Concurrency", []string{"Goroutines", "Channels", "Context"}},
	} {
		c := b.AddChapter(ebook.ID, chapter.title, i, true)
		for j, title := range chapter.sections {
			b.AddSection(c.ID, title, j, true)
		}
	}
	return nil
}
