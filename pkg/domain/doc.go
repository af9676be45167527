// Package domain contains the core types of the Kinoflow conversation graph:
// nodes, connections, logic rules, answer mechanisms, visitor answers and
// session state. It has no dependencies on adapters or the runtime; every
// other package speaks in terms of these types.
package domain
