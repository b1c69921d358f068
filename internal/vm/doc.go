// Package vm provides high-level instance lifecycle operations.
//
// An instance is a backend VM instantiated from a template into a tenant's
// internal network, owned by the tenant group for quota attribution and
// labelled with the tenant in its USER_TEMPLATE.
//
// The main operations are:
//   - Create: Instantiate, hand over to the tenant group, wait for RUNNING
//   - Resize: Power off if needed, resize CPU/memory, grow the disk, resume
//   - Delete: Hard-terminate; an already deleted VM is not an error
//   - Usage: Report the allocated vCPU, memory and disk
//   - Get/List: Read instances and their state
//
// Error Handling:
//
// A VM that fails after instantiation is terminated again before the error
// is returned. Cleanup errors are logged but never replace the original
// error. Precondition violations are reported as ErrInvalidState and
// ErrNetworkMissing.
//
// Context Support:
//
// Create and Resize accept a context.Context that bounds their state waits
// in addition to the configured poll timeouts.
package vm
