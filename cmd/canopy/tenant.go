package main

import (
	"fmt"

	"github.com/sapcc/go-bits/logg"
	"github.com/spf13/cobra"

	"github.com/jbweber/canopy/internal/loader"
	"github.com/jbweber/canopy/internal/output"
)

var tenantFile string

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
	Long: `Manage tenants: the group, VDC and optional network that isolate the
resources of one customer.`,
}

func init() {
	tenantCreateCmd.Flags().StringVarP(&tenantFile, "filename", "f", "", "tenant manifest (YAML)")
	_ = tenantCreateCmd.MarkFlagRequired("filename")

	tenantCmd.AddCommand(tenantCreateCmd)
	tenantCmd.AddCommand(tenantDeleteCmd)
	tenantCmd.AddCommand(tenantQuotaCmd)
	tenantCmd.AddCommand(tenantUsageCmd)
	tenantCmd.AddCommand(tenantNetworkCmd)
	tenantCmd.AddCommand(tenantAdminCmd)
}

var tenantCreateCmd = &cobra.Command{
	Use:   "create -f <tenant.yaml>",
	Short: "Create a tenant from a manifest",
	Long: `Create or converge a tenant from a YAML manifest.

This will:
- Create the group and VDC and grant the VDC the listed clusters
- Provision the tenant network, router and security group if spec.network is set
- Push the quota if spec.quota is set
- Issue administrator credentials if spec.admin is true

Example:
  canopy tenant create -f acme.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manifest, err := loader.LoadTenantFromFile(tenantFile)
		if err != nil {
			return err
		}

		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		created, err := s.CreateTenant(cmd.Context(), manifest)
		if printErr := printWith(func(f output.Formatter) (string, error) { return f.FormatTenant(created) }); printErr != nil {
			logg.Error("Warning: %s", printErr.Error())
		}
		if err != nil {
			return fmt.Errorf("failed to create tenant %q: %w", manifest.Name, err)
		}

		if created.Spec.Admin {
			return printAdmin(s, created.Name)
		}
		return nil
	},
}

var tenantDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a tenant",
	Long: `Delete a tenant and everything provisioned for it.

Objects are removed in this order: router (waiting for its appliance VMs
to terminate), network, security group, administrator, VDC and group.
Objects already gone are skipped. Instances of the tenant must be deleted
first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.DeleteTenant(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete tenant %q: %w", args[0], err)
		}
		fmt.Printf("✓ Tenant %s deleted\n", args[0])
		return nil
	},
}

var tenantQuotaCmd = &cobra.Command{
	Use:   "quota <name> <component>=<limit>...",
	Short: "Set the quota of a tenant",
	Long: `Set quota limits of a tenant in backend units.

Components are cpu (cores), ram (MB), storage (MB) and floating_ip
(leases). A limit of -1 means unlimited.

Example:
  canopy tenant quota acme cpu=16 ram=32768 storage=-1`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		limits, err := parseQuotaArgs(args[1:])
		if err != nil {
			return err
		}

		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.SetQuota(args[0], limits); err != nil {
			return fmt.Errorf("failed to set quota of tenant %q: %w", args[0], err)
		}
		fmt.Printf("✓ Quota of tenant %s updated\n", args[0])
		return nil
	},
}

var tenantUsageCmd = &cobra.Command{
	Use:   "usage <name>...",
	Short: "Show quota limits and usage of tenants",
	Long: `Show quota limits and current usage of one or more tenants.

Tenants that do not exist are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		reports, err := s.GetQuotaUsage(args)
		if err != nil {
			return fmt.Errorf("failed to get quota usage: %w", err)
		}
		return printWith(func(f output.Formatter) (string, error) { return f.FormatQuota(reports) })
	},
}

var tenantNetworkCmd = &cobra.Command{
	Use:   "network <name>",
	Short: "Show the network of a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		n, found, err := s.TenantNetwork(args[0])
		if err != nil {
			return fmt.Errorf("failed to look up network of tenant %q: %w", args[0], err)
		}
		if !found {
			return fmt.Errorf("tenant %q has no network", args[0])
		}
		return printWith(func(f output.Formatter) (string, error) {
			return f.FormatNetwork(output.Network{Tenant: args[0], NetworkStatus: *n.Status()})
		})
	},
}

var tenantAdminCmd = &cobra.Command{
	Use:   "admin <name>",
	Short: "Issue administrator credentials for a tenant",
	Long: `Create or reuse the administrator user of a tenant and set a new
password. The password is shown once and never stored by canopy.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		return printAdmin(s, args[0])
	},
}

func printAdmin(s *session, name string) error {
	cred, err := s.EnsureTenantAdmin(name)
	if err != nil {
		return fmt.Errorf("failed to issue admin credentials for tenant %q: %w", name, err)
	}
	return printWith(func(f output.Formatter) (string, error) { return f.FormatCredential(cred) })
}
