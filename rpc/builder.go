// Package rpc is the transport façade (spec §6: "the canonical one is
// request/response JSON over HTTP at a single endpoint"): it exposes
// send_raw_transaction, submit_vote, submit_votes and get_recovery_info
// as JSON methods dispatched from one HTTP handler, backed by an
// engine.Validator. None of the example repos pull in an HTTP router or
// RPC framework (see DESIGN.md), and the spec names plain JSON over HTTP
// explicitly, so the façade is built on net/http rather than adopting a
// dependency the corpus never reaches for.
package rpc

import (
	"encoding/json"
	"fmt"
)

// Handler answers one RPC method. raw is the method's "params" field,
// still encoded; a Handler decodes it itself so ServerBuilder stays
// payload-agnostic.
type Handler func(raw json.RawMessage) (any, error)

// ServerBuilder provides a fluent API for building a Server, generalised
// from the teacher's ModuleBuilder: methods are registered by name one
// at a time or in bulk, duplicate and nil registrations are rejected,
// and the accumulated error surfaces once at Build() instead of at each
// call site.
type ServerBuilder struct {
	methods map[string]Handler
	err     error
}

// NewServerBuilder creates an empty ServerBuilder.
func NewServerBuilder() *ServerBuilder {
	return &ServerBuilder{methods: make(map[string]Handler)}
}

// WithMethod registers a single RPC method.
func (b *ServerBuilder) WithMethod(name string, handler Handler) *ServerBuilder {
	if b == nil {
		return nil
	}
	if b.err != nil {
		return b
	}
	if name == "" {
		b.err = fmt.Errorf("rpc: method name cannot be empty")
		return b
	}
	if handler == nil {
		b.err = fmt.Errorf("rpc: handler cannot be nil for method %s", name)
		return b
	}
	if _, exists := b.methods[name]; exists {
		b.err = fmt.Errorf("rpc: duplicate handler for method: %s", name)
		return b
	}
	b.methods[name] = handler
	return b
}

// WithMethods registers multiple RPC methods.
func (b *ServerBuilder) WithMethods(methods map[string]Handler) *ServerBuilder {
	if b == nil {
		return nil
	}
	if b.err != nil {
		return b
	}
	for name, handler := range methods {
		b = b.WithMethod(name, handler)
		if b.err != nil {
			return b
		}
	}
	return b
}

// Build finalises the builder into a Server, or returns the first
// registration error encountered.
func (b *ServerBuilder) Build() (*Server, error) {
	if b == nil {
		return nil, fmt.Errorf("rpc: builder is nil")
	}
	if b.err != nil {
		return nil, b.err
	}
	if len(b.methods) == 0 {
		return nil, fmt.Errorf("rpc: no methods registered")
	}
	methods := make(map[string]Handler, len(b.methods))
	for name, handler := range b.methods {
		methods[name] = handler
	}
	return &Server{methods: methods}, nil
}
