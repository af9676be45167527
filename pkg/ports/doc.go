// Package ports declares the interfaces Kinoflow's core exchanges data
// through: graph persistence, session state storage, response recording
// and distributed locking. Adapters under pkg/adapters implement them.
package ports
