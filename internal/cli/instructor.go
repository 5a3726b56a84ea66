package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jrsteele09/go-storefront/api"
	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/pricing"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/jrsteele09/go-storefront/validation"
	"github.com/spf13/cobra"
)

// instructorSessions is the session store for store owner commands, which
// are not bound to a tenant.
func (a *app) instructorSessions() (*sessions.Store, *api.Client, error) {
	store, err := a.storage()
	if err != nil {
		return nil, nil, err
	}
	client := a.client()
	return sessions.NewStore(store, client, sessions.WithLocale(a.cfg.GetLocale())), client, nil
}

func newInstructorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "instructor",
		Aliases: []string{"owner"},
		Short:   "Manage the store owner's session",
	}
	cmd.AddCommand(
		newInstructorLoginCmd(a),
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the store owner's session",
			RunE: func(cmd *cobra.Command, args []string) error {
				s, _, err := a.instructorSessions()
				if err != nil {
					return err
				}
				if err := s.InstructorLogout(cmd.Context()); err != nil {
					return err
				}
				_, err = fmt.Fprintln(a.out, "Logged out")
				return err
			},
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Show the logged in store owner",
			RunE: func(cmd *cobra.Command, args []string) error {
				s, client, err := a.instructorSessions()
				if err != nil {
					return err
				}
				session, err := s.Instructor(cmd.Context())
				if err != nil {
					return err
				}
				if session == nil {
					return sferrors.ErrNoSession
				}
				me, err := client.Authorized(s.InstructorTokenSource(cmd.Context())).CurrentInstructor(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(me, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%s <%s>\n%s (%s)\n", me.FullName, me.Email, me.StoreName, me.Subdomain)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "products",
			Short: "List every product the store owner sells, drafts included",
			RunE: func(cmd *cobra.Command, args []string) error {
				s, client, err := a.instructorSessions()
				if err != nil {
					return err
				}
				products, err := client.Authorized(s.InstructorTokenSource(cmd.Context())).ListProducts(cmd.Context(), api.Page{})
				if err != nil {
					return err
				}
				locale := a.cfg.GetLocale()
				return a.render(products, func(w io.Writer) error {
					tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tPRICE\tPUBLISHED")
					for _, p := range products {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", p.ID, p.Title, p.Type, pricing.FormatKRW(locale, p.Price), p.IsPublished)
					}
					return tw.Flush()
				})
			},
		},
		newInstructorSignupCmd(a),
	)
	return cmd
}

func newInstructorLoginCmd(a *app) *cobra.Command {
	var creds api.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as a store owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := a.instructorSessions()
			if err != nil {
				return err
			}
			session, err := s.InstructorLogin(cmd.Context(), creds)
			if err != nil {
				return err
			}
			return a.render(session, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Logged in as %s\n", session.Email)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "Owner email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Owner password")
	return cmd
}

func newInstructorSignupCmd(a *app) *cobra.Command {
	var (
		form validation.InstructorSignup
		bio  string
	)
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Open a new store",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := a.instructorSessions()
			if err != nil {
				return err
			}
			if bio != "" {
				form.Bio = &bio
			}
			instructor, err := s.InstructorSignup(cmd.Context(), form)
			if err != nil {
				return err
			}
			return a.render(instructor, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Opened %s at %s\n", instructor.StoreName, instructor.Subdomain)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "Owner email")
	cmd.Flags().StringVar(&form.FullName, "name", "", "Owner name")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password")
	cmd.Flags().StringVar(&form.PasswordConfirm, "password-confirm", "", "Password again")
	cmd.Flags().StringVar(&form.Subdomain, "subdomain", "", "Store subdomain")
	cmd.Flags().StringVar(&form.StoreName, "store-name", "", "Store name")
	cmd.Flags().StringVar(&bio, "bio", "", "Short introduction")
	cmd.Flags().BoolVar(&form.AgreeTerms, "agree-terms", false, "Accept the terms of service")
	return cmd
}
