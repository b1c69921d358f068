package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sapcc/go-bits/httpext"
	"github.com/sapcc/go-bits/logg"
	"github.com/sapcc/go-bits/osext"
	"github.com/spf13/cobra"

	"github.com/jbweber/canopy/internal/config"
	"github.com/jbweber/canopy/internal/engine"
	"github.com/jbweber/canopy/internal/metrics"
	"github.com/jbweber/canopy/internal/one"
	"github.com/jbweber/canopy/internal/output"
)

var (
	version = "dev"
	commit  = "unknown"
)

// Global flags
var (
	configPath    string
	outputFormat  string
	noHeaders     bool
	metricsListen string
)

func main() {
	logg.ShowDebug = osext.GetenvBool("CANOPY_DEBUG")

	// SIGINT cancels running waits; objects created so far are rolled back.
	ctx := httpext.ContextWithSIGINT(context.Background(), 0)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "canopy",
	Short: "Canopy - multi-tenant provisioning for OpenNebula",
	Long: `Canopy provisions isolated tenants (group, VDC, VXLAN network, virtual
router and security group) and tenant VMs on an OpenNebula backend.

Tenants and instances are described by YAML manifests. Every operation is
idempotent: re-running a failed create converges on the objects that already
exist.`,
	Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return output.ValidateFormat(outputFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", string(output.FormatTable), "output format: table, yaml or json")
	rootCmd.PersistentFlags().BoolVar(&noHeaders, "no-headers", false, "omit table headers")
	rootCmd.PersistentFlags().StringVar(&metricsListen, "metrics-listen", "", "serve Prometheus metrics on this address while the command runs (e.g. :9090)")

	rootCmd.AddCommand(tenantCmd)
	rootCmd.AddCommand(instanceCmd)
	rootCmd.AddCommand(testConnCmd)
}

// session is an engine connected to the configured backend.
type session struct {
	*engine.Engine
	client *one.Client
}

func (s *session) Close() {
	if err := s.client.Close(); err != nil {
		logg.Error("Warning: failed to close backend connection: %s", err.Error())
	}
}

// connect loads the configuration and connects to the backend. RPC calls
// and waits are recorded by a metrics monitor, which is served on
// --metrics-listen when set.
func connect(ctx context.Context) (*session, error) {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, err
	}

	monitor := metrics.NewMonitor()
	if metricsListen != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(monitor)
		go serveMetrics(ctx, registry)
	}

	client, err := one.Connect(cfg.Backend.Endpoint, cfg.Backend.Username, cfg.Backend.Password, cfg.Backend.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Backend.Endpoint, err)
	}
	client.SetObserver(monitor)

	return &session{
		Engine: engine.New(client, engine.OptionsFromConfig(cfg, monitor)),
		client: client,
	}, nil
}

func serveMetrics(ctx context.Context, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	logg.Info("Serving metrics on %s", metricsListen)
	if err := httpext.ListenAndServeContext(ctx, metricsListen, mux); err != nil {
		logg.Error("Warning: metrics server failed: %s", err.Error())
	}
}

func newFormatter() (output.Formatter, error) {
	return output.NewFormatter(output.Options{
		Format:    output.Format(outputFormat),
		NoHeaders: noHeaders,
	})
}

// printWith formats a result and prints it.
func printWith(format func(f output.Formatter) (string, error)) error {
	formatter, err := newFormatter()
	if err != nil {
		return err
	}
	result, err := format(formatter)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(result)
	return nil
}

var testConnCmd = &cobra.Command{
	Use:   "test-conn",
	Short: "Test the backend connection",
	Long:  `Test connectivity to the OpenNebula endpoint and display its version.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		fmt.Printf("Testing connection to %s...\n", s.client.Endpoint())
		version, err := s.Ping()
		if err != nil {
			return fmt.Errorf("connection test failed: %w", err)
		}
		fmt.Printf("✓ OpenNebula version: %s\n", version)
		fmt.Println("\nConnection test successful!")
		return nil
	},
}
