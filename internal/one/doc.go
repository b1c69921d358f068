// Package one provides a client for the hypervisor control plane's XML-RPC API.
//
// This package wraps github.com/kolo/xmlrpc to provide:
//   - Connection management (session, ping, close)
//   - Typed backend objects (Group, VDC, VNet, VirtualRouter, SecurityGroup,
//     VM, User) decoded from the XML bodies returned by info calls
//   - Error classification (not found, name taken, already assigned)
//   - Template generation in the backend's KEY="value" grammar
//
// Every RPC returns an array of the form [ok, value, errcode]. A false ok
// is turned into an *Error, which matches ErrNotFound, ErrNameTaken and
// ErrAlreadyAssigned through errors.Is so that callers can implement
// create-or-reuse and idempotent delete without parsing messages themselves.
//
// Consumer-Side Interfaces:
//
// This package does not define interfaces for its client. Consumers
// (internal/tenant, internal/network, internal/vm, internal/identity) define
// their own interfaces listing only the operations they need. *Client
// satisfies all of them implicitly, and internal/onetest provides a scripted
// in-memory fake for tests.
package one
