// Command pos is a terminal point of sale for the cabina backend. It loads
// the catalog, fills a cart and walks the checkout steps against the /v1 API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kevinserna01/react-cabina-sub000/internal/apiclient"
	"github.com/kevinserna01/react-cabina-sub000/internal/cart"
	"github.com/kevinserna01/react-cabina-sub000/internal/catalog"
	"github.com/kevinserna01/react-cabina-sub000/internal/checkout"
	"github.com/kevinserna01/react-cabina-sub000/internal/config"
	"github.com/kevinserna01/react-cabina-sub000/internal/domain"
	"github.com/kevinserna01/react-cabina-sub000/internal/salecode"
	"github.com/kevinserna01/react-cabina-sub000/internal/stock"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	apiURL  string
	token   string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "pos",
		Short:         "Terminal point of sale",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.WarnLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).Level(level)
		},
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "backend base URL (default API_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "bearer token (default API_TOKEN)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(catalogoCmd())
	rootCmd.AddCommand(clientesCmd())
	rootCmd.AddCommand(venderCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type session struct {
	cfg *config.Config
	api *apiclient.Client
}

func connect() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	if token != "" {
		cfg.APIToken = token
	}
	if cfg.APIToken == "" {
		return nil, errors.New("falta el token: use --token o API_TOKEN (ver devtoken token)")
	}
	api := apiclient.New(apiclient.Options{
		BaseURL: cfg.APIBaseURL,
		Token:   cfg.APIToken,
		Timeout: cfg.APITimeout(),
	})
	return &session{cfg: cfg, api: api}, nil
}

func catalogoCmd() *cobra.Command {
	var categoria string
	cmd := &cobra.Command{
		Use:   "catalogo",
		Short: "List active products with their stock",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := connect()
			if err != nil {
				return err
			}
			cat, err := catalog.Load(cmd.Context(), s.api)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODIGO\tPRODUCTO\tCATEGORIA\tPRECIO\tSTOCK")
			for _, p := range cat.Products(categoria) {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", p.Code, p.Name, p.Category, p.Price.StringFixed(0), p.Stock)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&categoria, "categoria", "c", "", "only this category")
	return cmd
}

func clientesCmd() *cobra.Command {
	var (
		search string
		page   int
	)
	cmd := &cobra.Command{
		Use:   "clientes",
		Short: "Page through active customers",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := connect()
			if err != nil {
				return err
			}
			dir := checkout.NewDirectory(s.api, 0, s.cfg.SearchDebounce())
			res, err := dir.List(cmd.Context(), page, search)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DOCUMENTO\tNOMBRE\tEMAIL\tDESCUENTO")
			for _, c := range res.Customers {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s%%\n", c.Document, c.Name, c.Email, c.DiscountPercent.String())
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "pagina %d de %d (%d clientes)\n", res.Page, res.Pages, res.Total)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "name, document or email")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	return cmd
}

type ventaOpts struct {
	items        []string
	documento    string
	registrar    checkout.NewCustomer
	metodo       string
	sinDescuento bool
}

func venderCmd() *cobra.Command {
	var o ventaOpts
	cmd := &cobra.Command{
		Use:   "vender",
		Short: "Ring up a sale",
		Example: `  pos vender --item CAF-01:2 --item TOR-01 --cliente 1020304050 --metodo efectivo
  pos vender --item GAL-01 --nombre "Ana Ruiz" --documento 99887766 --telefono 3001234567 --metodo billetera`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(o.items) == 0 {
				return errors.New("agregue al menos un --item")
			}
			s, err := connect()
			if err != nil {
				return err
			}
			return sell(cmd.Context(), cmd.OutOrStdout(), s, o)
		},
	}
	f := cmd.Flags()
	f.StringArrayVarP(&o.items, "item", "i", nil, "CODIGO[:CANTIDAD], repeatable")
	f.StringVar(&o.documento, "cliente", "", "document of an existing customer")
	f.StringVar(&o.registrar.Name, "nombre", "", "register a new customer with this name")
	f.StringVar(&o.registrar.Document, "documento", "", "new customer document")
	f.StringVar(&o.registrar.Email, "email", "", "new customer email")
	f.StringVar(&o.registrar.Phone, "telefono", "", "new customer phone (10 digits)")
	f.StringVarP(&o.metodo, "metodo", "m", string(domain.PaymentCash), "efectivo | billetera | transferencia")
	f.BoolVar(&o.sinDescuento, "sin-descuento", false, "do not apply the customer's personal discount")
	cmd.MarkFlagsMutuallyExclusive("cliente", "nombre")
	return cmd
}

func sell(ctx context.Context, out io.Writer, s *session, o ventaOpts) error {
	cat, err := catalog.Load(ctx, s.api)
	if err != nil {
		return err
	}
	store := cart.NewStore(nil)
	rec, err := stock.Attach(cat, store)
	if err != nil {
		return err
	}
	if err := fillCart(cat, store, o.items); err != nil {
		rec.Abandon(store)
		return err
	}

	dir := checkout.NewDirectory(s.api, 0, s.cfg.SearchDebounce())
	defer dir.Stop()
	codes := salecode.NewClient(s.api, salecode.Config{MaxAttempts: s.cfg.SaleCodeMaxAttempts})

	wf, err := checkout.Open(ctx, checkout.Deps{
		Store:     store,
		Codes:     codes,
		Committer: checkout.NewCommitter(s.api, store, rec),
		Directory: dir,
	})
	if err != nil {
		rec.Abandon(store)
		return err
	}
	sale, err := runCheckout(ctx, out, wf, dir, o)
	if err != nil {
		wf.Close(context.WithoutCancel(ctx))
		rec.Abandon(store)
		return err
	}

	fmt.Fprintf(out, "\nventa %s registrada: %s (%s) %s\n",
		sale.Code, sale.Total.StringFixed(0), sale.PaymentMethod, sale.Timestamp.Format(time.DateTime))
	return nil
}

func fillCart(cat *catalog.Catalog, store *cart.Store, items []string) error {
	for _, raw := range items {
		code, qty, err := parseItem(raw)
		if err != nil {
			return err
		}
		p, err := cat.FindByCode(code)
		if err != nil {
			return err
		}
		for i := 0; i < qty; i++ {
			if !cat.CanAdd(p.ID) {
				// units of this line already claimed were available when it started
				return fmt.Errorf("%s: stock insuficiente (disponible %d)", p.Code, cat.Available(p.ID)+i)
			}
			store.AddItem(p)
		}
	}
	return nil
}

func parseItem(raw string) (string, int, error) {
	code, qtyStr, found := strings.Cut(strings.TrimSpace(raw), ":")
	if code == "" {
		return "", 0, fmt.Errorf("item invalido %q", raw)
	}
	if !found {
		return code, 1, nil
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil || qty < 1 {
		return "", 0, fmt.Errorf("cantidad invalida en %q", raw)
	}
	return code, qty, nil
}

func runCheckout(ctx context.Context, out io.Writer, wf *checkout.Workflow, dir *checkout.Directory, o ventaOpts) (*domain.CompletedSale, error) {
	fmt.Fprintf(out, "codigo reservado: %s\n", wf.Code())

	// Products
	if err := wf.Next(); err != nil {
		return nil, err
	}

	// Customer
	switch {
	case o.registrar.Name != "":
		if _, err := wf.RegisterCustomer(ctx, o.registrar); err != nil {
			var verr *checkout.ValidationError
			if errors.As(err, &verr) && len(verr.Fields) > 0 {
				return nil, fmt.Errorf("cliente invalido: %v", verr.Fields)
			}
			return nil, err
		}
	case o.documento != "":
		c, err := findCustomer(ctx, dir, o.documento)
		if err != nil {
			return nil, err
		}
		if err := wf.SelectCustomer(c); err != nil {
			return nil, err
		}
	}
	if err := wf.Next(); err != nil {
		return nil, err
	}

	// Payment
	if o.sinDescuento {
		if err := wf.SetApplyDiscount(false); err != nil {
			return nil, err
		}
	}
	if err := wf.SetPaymentMethod(domain.PaymentMethod(o.metodo)); err != nil {
		return nil, err
	}
	if err := wf.Next(); err != nil {
		return nil, err
	}

	printSummary(out, wf)
	sale, err := wf.Commit(ctx)
	if err != nil {
		var cerr *checkout.CommitError
		if errors.As(err, &cerr) && cerr.Retryable() {
			log.Warn().Str("codigo", wf.Code()).Msg("pos: reintentando venta")
			return wf.Commit(ctx)
		}
		return nil, err
	}
	return sale, nil
}

func findCustomer(ctx context.Context, dir *checkout.Directory, documento string) (*domain.Customer, error) {
	page, err := dir.List(ctx, 1, documento)
	if err != nil {
		return nil, err
	}
	for i := range page.Customers {
		if page.Customers[i].Document == documento {
			return &page.Customers[i], nil
		}
	}
	return nil, fmt.Errorf("no existe un cliente activo con documento %s", documento)
}

func printSummary(out io.Writer, wf *checkout.Workflow) {
	sum := wf.Summary()
	c := wf.Customer()
	fmt.Fprintf(out, "cliente: %s (%s)\n", c.Name, c.Document)
	fmt.Fprintf(out, "pago: %s\n", wf.PaymentMethod())
	fmt.Fprintf(out, "subtotal: %s\n", sum.Subtotal.StringFixed(0))
	if sum.Applied {
		fmt.Fprintf(out, "descuento %s%%: -%s\n", sum.DiscountPercent.String(), sum.Discount.StringFixed(0))
	}
	fmt.Fprintf(out, "total: %s\n", sum.FinalTotal.StringFixed(0))
}
