package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/cart"
	"github.com/jrsteele09/go-storefront/internal/config"
	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/kv"
	"github.com/jrsteele09/go-storefront/kv/sqlitekv"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputYAML = "yaml"
	outputJSON = "json"
)

// app carries what every command shares: configuration, flags and the
// lazily opened local store.
type app struct {
	cfg     config.Config
	profile string
	tenant  string
	output  string
	out     io.Writer

	db *sqlitekv.Store
}

// database opens the shared local store on first use.
func (a *app) database() (*sqlitekv.Store, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := sqlitekv.Open(a.cfg.GetDatabasePath(), a.cfg.GetStorageQuota())
	if err != nil {
		return nil, errors.Wrap(err, "[app.database] open local storage")
	}
	a.db = db
	return db, nil
}

// storage is the profile's namespace of the local store.
func (a *app) storage() (kv.Store, error) {
	db, err := a.database()
	if err != nil {
		return nil, err
	}
	return kv.ForProfile(db, a.profile), nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func (a *app) client() *api.Client {
	return api.New(a.cfg.GetAPIURL(),
		api.WithHTTPClient(&http.Client{Timeout: a.cfg.GetHTTPTimeout()}),
		api.WithLocale(a.cfg.GetLocale()),
	)
}

// customer bundles the profile's stores for customer commands.
type customer struct {
	tenant   string
	client   *api.Client
	sessions *sessions.Store
	cart     *cart.Store
}

// customer resolves the tenant from --tenant, else the tenant of the stored
// session.
func (a *app) customer(ctx context.Context) (*customer, error) {
	store, err := a.storage()
	if err != nil {
		return nil, err
	}
	client := a.client()

	tenant := a.tenant
	if tenant == "" {
		stored, _, err := store.Get(ctx, kv.KeyCustomerSubdomain)
		if err != nil {
			return nil, errors.Wrap(err, "[app.customer] read stored tenant")
		}
		tenant = stored
	}
	if tenant == "" {
		return nil, errors.Wrap(sferrors.ErrTenantMissing, "use --tenant")
	}

	return &customer{
		tenant:   tenant,
		client:   client,
		sessions: sessions.NewStore(store, client, sessions.WithLocale(a.cfg.GetLocale())),
		cart:     cart.NewStore(store),
	}, nil
}

func (c *customer) authorized(ctx context.Context) *api.Client {
	return c.client.Authorized(c.sessions.TokenSource(ctx, c.tenant))
}

// render writes v as YAML or JSON, or calls text for the default output.
func (a *app) render(v any, text func(w io.Writer) error) error {
	switch a.output {
	case outputYAML:
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case outputJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputText, "":
		return text(a.out)
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}
}
