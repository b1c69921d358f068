package main

import (
	"fmt"

	"github.com/sapcc/go-bits/logg"
	"github.com/spf13/cobra"

	"github.com/jbweber/canopy/internal/loader"
	"github.com/jbweber/canopy/internal/output"
	"github.com/jbweber/canopy/internal/vm"
)

var (
	instanceFile   string
	instanceTenant string
	resizeRequest  vm.ResizeRequest
)

var instanceCmd = &cobra.Command{
	Use:   "instance",
	Short: "Manage tenant instances",
	Long:  `Manage VMs owned by tenants.`,
}

func init() {
	instanceCreateCmd.Flags().StringVarP(&instanceFile, "filename", "f", "", "instance manifest (YAML)")
	_ = instanceCreateCmd.MarkFlagRequired("filename")

	instanceResizeCmd.Flags().IntVar(&resizeRequest.VCPU, "vcpu", 0, "new number of virtual CPUs")
	instanceResizeCmd.Flags().IntVar(&resizeRequest.MemoryMB, "memory-mb", 0, "new memory size in MB")
	instanceResizeCmd.Flags().IntVar(&resizeRequest.DiskMB, "disk-mb", 0, "new primary disk size in MB (grow only)")

	instanceListCmd.Flags().StringVar(&instanceTenant, "tenant", "", "only list instances of this tenant")

	instanceCmd.AddCommand(instanceCreateCmd)
	instanceCmd.AddCommand(instanceDeleteCmd)
	instanceCmd.AddCommand(instanceResizeCmd)
	instanceCmd.AddCommand(instanceUsageCmd)
	instanceCmd.AddCommand(instanceGetCmd)
	instanceCmd.AddCommand(instanceListCmd)
}

var instanceCreateCmd = &cobra.Command{
	Use:   "create -f <instance.yaml>",
	Short: "Create an instance from a manifest",
	Long: `Create a VM for a tenant from a YAML manifest.

The VM is instantiated on hold from the given template, attached to the
tenant network and security group, handed to the tenant group and released.
The command waits until the VM is RUNNING. On failure the VM is terminated.

Example:
  canopy instance create -f web-1.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manifest, err := loader.LoadInstanceFromFile(instanceFile)
		if err != nil {
			return err
		}

		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		created, err := s.CreateInstance(cmd.Context(), manifest)
		if printErr := printWith(func(f output.Formatter) (string, error) { return f.FormatInstance(created) }); printErr != nil {
			logg.Error("Warning: %s", printErr.Error())
		}
		if err != nil {
			return fmt.Errorf("failed to create instance %q: %w", manifest.Name, err)
		}
		return nil
	},
}

var instanceDeleteCmd = &cobra.Command{
	Use:   "delete <vm-id>",
	Short: "Delete an instance",
	Long: `Terminate an instance. Deleting an instance that no longer exists
succeeds.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseVMID(args[0])
		if err != nil {
			return err
		}

		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.DeleteInstance(id); err != nil {
			return fmt.Errorf("failed to delete instance %d: %w", id, err)
		}
		fmt.Printf("✓ Instance %d deleted\n", id)
		return nil
	},
}

var instanceResizeCmd = &cobra.Command{
	Use:   "resize <vm-id> [--vcpu N] [--memory-mb MB] [--disk-mb MB]",
	Short: "Resize an instance",
	Long: `Change CPU, memory and primary disk size of an instance.

A running VM is powered off, resized and resumed. The disk only grows;
a smaller size is ignored.

Example:
  canopy instance resize 42 --vcpu 4 --memory-mb 8192`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseVMID(args[0])
		if err != nil {
			return err
		}
		if err := validateResize(resizeRequest); err != nil {
			return err
		}

		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		resized, err := s.ResizeInstance(cmd.Context(), id, resizeRequest)
		if err != nil {
			return fmt.Errorf("failed to resize instance %d: %w", id, err)
		}
		return printWith(func(f output.Formatter) (string, error) { return f.FormatInstance(resized) })
	},
}

var instanceUsageCmd = &cobra.Command{
	Use:   "usage <vm-id>...",
	Short: "Show the allocation of instances",
	Long: `Show allocated VCPU, memory and disk of one or more instances.

Instances that do not exist are reported as an error.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int, 0, len(args))
		for _, arg := range args {
			id, err := parseVMID(arg)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		usage := make([]output.Usage, 0, len(ids))
		for _, id := range ids {
			alloc, err := s.GetUsage(id)
			if err != nil {
				return fmt.Errorf("failed to get usage of instance %d: %w", id, err)
			}
			usage = append(usage, output.Usage{VMID: id, Allocation: alloc})
		}
		return printWith(func(f output.Formatter) (string, error) { return f.FormatUsage(usage) })
	},
}

var instanceGetCmd = &cobra.Command{
	Use:   "get <vm-id>",
	Short: "Get details about an instance",
	Long: `Get the Instance resource of a VM including spec and status.

Output formats:
  -o table  Human-readable table (default)
  -o yaml   Full YAML resource definition
  -o json   Full JSON resource definition`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseVMID(args[0])
		if err != nil {
			return err
		}

		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		inst, err := s.GetInstance(id)
		if err != nil {
			return fmt.Errorf("failed to get instance %d: %w", id, err)
		}
		return printWith(func(f output.Formatter) (string, error) { return f.FormatInstance(inst) })
	},
}

var instanceListCmd = &cobra.Command{
	Use:   "list [--tenant NAME]",
	Short: "List instances",
	Long:  `List instances owned by canopy tenants, optionally of one tenant only.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		list, err := s.ListInstances(instanceTenant)
		if err != nil {
			return fmt.Errorf("failed to list instances: %w", err)
		}
		return printWith(func(f output.Formatter) (string, error) { return f.FormatInstanceList(list) })
	},
}
