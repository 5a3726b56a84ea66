package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/reading"
	"github.com/spf13/cobra"
)

func newReadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read a purchased e-book",
	}

	// section runs fn against a loaded tracker and prints the reader.
	section := func(use, short string, fn func(ctx context.Context, t *reading.Tracker, sectionID string) (*api.Section, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <product-id> <section-id>",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				tracker, err := a.tracker(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := tracker.Load(cmd.Context()); err != nil {
					return err
				}
				selected, err := fn(cmd.Context(), tracker, args[1])
				if err != nil {
					return err
				}
				return a.renderReader(tracker, selected)
			},
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "progress <product-id>",
			Short: "Show chapters, section states and completion",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				tracker, err := a.tracker(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := tracker.Load(cmd.Context()); err != nil {
					return err
				}
				return a.renderReader(tracker, nil)
			},
		},
		&cobra.Command{
			Use:   "open <product-id>",
			Short: "Open the book at its first section",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				tracker, err := a.tracker(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				selected, err := tracker.Open(cmd.Context())
				if err != nil {
					return err
				}
				return a.renderReader(tracker, selected)
			},
		},
		section("select", "Open a section and record the visit", func(ctx context.Context, t *reading.Tracker, id string) (*api.Section, error) {
			return t.SelectSection(ctx, id)
		}),
		section("complete", "Toggle a section between read and completed", func(ctx context.Context, t *reading.Tracker, id string) (*api.Section, error) {
			_, err := t.ToggleCompletion(ctx, id)
			return nil, err
		}),
		section("bookmark", "Toggle the bookmark on a section", func(ctx context.Context, t *reading.Tracker, id string) (*api.Section, error) {
			_, err := t.ToggleBookmark(ctx, id)
			return nil, err
		}),
	)
	return cmd
}

func (a *app) tracker(ctx context.Context, productID string) (*reading.Tracker, error) {
	c, err := a.customer(ctx)
	if err != nil {
		return nil, err
	}
	return reading.NewTracker(c.authorized(ctx), productID), nil
}

type readerOutput struct {
	reading.View `yaml:",inline"`
	Section      *api.Section `json:"section,omitempty" yaml:"section,omitempty"`
}

func (a *app) renderReader(tracker *reading.Tracker, selected *api.Section) error {
	out := readerOutput{View: tracker.View(), Section: selected}
	return a.render(out, func(w io.Writer) error {
		fmt.Fprintf(w, "%s  %d%% complete\n\n", out.ProductTitle, out.Percentage)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "\tSECTION\tTITLE\tSTATE\t")
		for _, s := range out.Sections {
			marker := " "
			if s.ID == out.CurrentID {
				marker = ">"
			}
			bookmark := ""
			if s.Bookmarked {
				bookmark = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", marker, s.ID, s.Title, s.State, bookmark)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if selected != nil && selected.ContentHTML != nil {
			_, err := fmt.Fprintf(w, "\n%s\n", *selected.ContentHTML)
			return err
		}
		return nil
	})
}
