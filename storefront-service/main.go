package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"

	amqp_client "github.com/jeffsasaki/storefront/clients"
	"github.com/jeffsasaki/storefront/config"
	"github.com/jeffsasaki/storefront/logging"
	"github.com/jeffsasaki/storefront/metrics"
	"github.com/jeffsasaki/storefront/orders"
	"github.com/jeffsasaki/storefront/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Fatalf("storefront: %v", err)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront catalog and order API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore(cmd.Context(), opts.configPath)
			if err != nil {
				return err
			}
			defer st.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the default catalog into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore(cmd.Context(), opts.configPath)
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := st.SeedIfEmpty(cmd.Context(), store.DefaultCatalog())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", n)
			return nil
		},
	}
}

// openStore loads the configuration, connects and applies the schema.
func openStore(ctx context.Context, configPath string) (*store.PostgresStore, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.DSN(), cfg.Database.MaxOpen, cfg.Database.MaxIdle)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	st, err := store.Open(ctx, cfg.DSN(), cfg.Database.MaxOpen, cfg.Database.MaxIdle)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}
	if cfg.SeedOnStart {
		n, err := st.SeedIfEmpty(ctx, store.DefaultCatalog())
		if err != nil {
			return err
		}
		if n > 0 {
			log.Printf("Seeded %d products", n)
		}
	}

	var svcOpts []orders.Option
	if cfg.AMQPURL != "" {
		mq, err := amqp_client.Dial(cfg.AMQPURL)
		if err != nil {
			return fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		defer mq.Close()

		if err := setupMessaging(mq, st); err != nil {
			return err
		}
		svcOpts = append(svcOpts, orders.WithNotifier(amqp_client.NewOrderPublisher(mq)))
	} else {
		log.Println("AMQP_URL not set, order events are disabled")
	}

	svc := orders.NewService(st, svcOpts...)
	server := NewServer(svc, metrics.NewServerMetrics("api", prometheus.NewRegistry()), st.Ping)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("storefront listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Received shutdown signal, shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// setupMessaging declares both queues and starts the payment update listener.
func setupMessaging(mq amqp_client.AmqpClient, st orderStatusUpdater) error {
	for _, q := range []string{amqp_client.OrderQueue, amqp_client.PaymentUpdatesQueue} {
		if err := mq.DeclareQueue(q); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
	}
	err := mq.SetupConsumer(amqp_client.PaymentUpdatesQueue, func(d amqp.Delivery) {
		handlePaymentUpdate(context.Background(), st, d)
	})
	if err != nil {
		return fmt.Errorf("consume %s: %w", amqp_client.PaymentUpdatesQueue, err)
	}
	logging.Log(logging.Fields{Service: serviceName, Step: "messaging", Status: "ready"})
	return nil
}
