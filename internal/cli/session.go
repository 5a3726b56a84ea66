package cli

import (
	"fmt"
	"io"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/validation"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var creds api.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a store as a customer",
		Example: `  storefront login --tenant acme --email reader@example.com --password secret123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.customer(cmd.Context())
			if err != nil {
				return err
			}
			session, err := c.sessions.Login(cmd.Context(), c.tenant, creds)
			if err != nil {
				return err
			}
			return a.render(session, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Logged in to %s as %s\n", session.Tenant, creds.Email)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&creds.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Account password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and empty the store's cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.customer(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.sessions.Logout(cmd.Context(), c.tenant); err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "Logged out of %s\n", c.tenant)
			return err
		},
	}
}

type whoami struct {
	Tenant        string        `json:"tenant" yaml:"tenant"`
	Authenticated bool          `json:"authenticated" yaml:"authenticated"`
	Customer      *api.Customer `json:"customer,omitempty" yaml:"customer,omitempty"`
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the customer logged in to the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.customer(cmd.Context())
			if err != nil {
				return err
			}
			session, err := c.sessions.Current(cmd.Context(), c.tenant)
			if err != nil {
				return err
			}

			out := whoami{Tenant: c.tenant, Authenticated: session != nil}
			if session != nil {
				me, err := c.authorized(cmd.Context()).StoreMe(cmd.Context(), c.tenant)
				if err != nil {
					return err
				}
				out.Customer = me
			}
			return a.render(out, func(w io.Writer) error {
				if out.Customer == nil {
					_, err := fmt.Fprintf(w, "Not logged in to %s\n", out.Tenant)
					return err
				}
				_, err := fmt.Fprintf(w, "%s <%s> on %s\n", out.Customer.FullName, out.Customer.Email, out.Tenant)
				return err
			})
		},
	}
}

func newSignupCmd(a *app) *cobra.Command {
	var (
		form  validation.CustomerSignup
		phone string
	)

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a customer account on a store",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.customer(cmd.Context())
			if err != nil {
				return err
			}
			if phone != "" {
				form.Phone = &phone
			}
			created, err := c.sessions.Signup(cmd.Context(), c.tenant, form)
			if err != nil {
				return err
			}
			return a.render(created, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Created account %s on %s. Log in to continue.\n", created.Email, c.tenant)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&form.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&form.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password")
	cmd.Flags().StringVar(&form.PasswordConfirm, "password-confirm", "", "Password again")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	return cmd
}
