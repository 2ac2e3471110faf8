// Command devtoken prepares a development backend: it seeds a worker account
// and a sample catalog, mints API tokens for the point of sale and inspects
// the receipt dead letter queues.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/kevinserna01/react-cabina-sub000/internal/config"
	"github.com/kevinserna01/react-cabina-sub000/internal/dto"
	"github.com/kevinserna01/react-cabina-sub000/internal/infra"
	"github.com/kevinserna01/react-cabina-sub000/internal/model"
	"github.com/kevinserna01/react-cabina-sub000/internal/repository"
	"github.com/kevinserna01/react-cabina-sub000/internal/service"
	"github.com/kevinserna01/react-cabina-sub000/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:           "devtoken",
		Short:         "Development helpers for the cabina backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(dlqCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := infra.RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

var sampleCatalog = []model.Producto{
	{Codigo: "CAF-01", Nombre: "Cafe americano", Categoria: "Bebidas", PrecioVenta: decimal.NewFromInt(5000), StockActual: 40},
	{Codigo: "CAF-02", Nombre: "Capuchino", Categoria: "Bebidas", PrecioVenta: decimal.NewFromInt(7000), StockActual: 30},
	{Codigo: "JUG-01", Nombre: "Jugo de naranja", Categoria: "Bebidas", PrecioVenta: decimal.NewFromInt(6000), StockActual: 20},
	{Codigo: "TOR-01", Nombre: "Torta de queso", Categoria: "Postres", PrecioVenta: decimal.NewFromInt(10000), StockActual: 8},
	{Codigo: "GAL-01", Nombre: "Galleta de avena", Categoria: "Postres", PrecioVenta: decimal.NewFromInt(3000), StockActual: 50},
	{Codigo: "SAN-01", Nombre: "Sandwich de pollo", Categoria: "Comidas", PrecioVenta: decimal.NewFromInt(14000), StockActual: 12},
}

func seedCmd() *cobra.Command {
	var (
		req       dto.CrearUsuarioRequest
		productos bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create or refresh a worker account and, optionally, the sample catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fields, err := dto.Validate(&req); err != nil || len(fields) > 0 {
				return fmt.Errorf("invalid user: %v %v", fields, err)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			u, err := service.NewAuthService(repository.NewUsuarioRepository(db), cfg).CrearUsuario(ctx, req)
			if err != nil {
				return fmt.Errorf("seed user: %w", err)
			}
			log.Info().Str("username", u.Username).Str("rol", u.Rol).Msg("user ready")

			if !productos {
				return nil
			}
			repo := repository.NewProductoRepository(db)
			for i := range sampleCatalog {
				p := sampleCatalog[i]
				p.Activo = true
				if err := repo.Upsert(ctx, &p); err != nil {
					return fmt.Errorf("seed product %s: %w", p.Codigo, err)
				}
			}
			log.Info().Int("count", len(sampleCatalog)).Msg("catalog ready")
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Username, "username", "u", "caja1", "worker username")
	cmd.Flags().StringVar(&req.Nombre, "nombre", "Caja 1", "display name")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "cabina1234", "password (min 8)")
	cmd.Flags().StringVar(&req.Rol, "rol", "trabajador", "trabajador | administrador")
	cmd.Flags().BoolVar(&productos, "productos", true, "also seed the sample catalog")
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		username string
		export   bool
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			resp, err := service.NewAuthService(repository.NewUsuarioRepository(db), cfg).EmitirToken(cmd.Context(), username)
			if err != nil {
				return err
			}
			if export {
				fmt.Fprintf(cmd.OutOrStdout(), "export API_TOKEN=%s\n", resp.AccessToken)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.AccessToken)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "caja1", "user to mint the token for")
	cmd.Flags().BoolVar(&export, "export", false, "print as a shell export line")
	return cmd
}

func dlqCmd() *cobra.Command {
	var limit int64
	cmd := &cobra.Command{
		Use:   "dlq [queue]",
		Short: "Show failed receipt or email jobs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("connect redis: %w", err)
			}
			defer rdb.Close()

			queues := []string{worker.QueueRecibos, worker.QueueEmail}
			if len(args) == 1 {
				queues = args
			}
			out := map[string][]worker.DLQEntry{}
			for _, q := range queues {
				entries, err := worker.ListDLQ(ctx, rdb, q, limit)
				if err != nil {
					return err
				}
				out[q] = entries
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().Int64VarP(&limit, "limit", "n", 20, "entries per queue")
	return cmd
}
