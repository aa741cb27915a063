// Package ports declares the driven-side interfaces of the engine:
// conversation persistence, workflow definitions, the streaming
// transport, and distributed locking. Adapters live in pkg/adapters.
package ports
