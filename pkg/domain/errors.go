package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionEnded is returned when an answer is submitted on a completed session.
var ErrSessionEnded = errors.New("session already ended")

// ErrGraphNotFound is returned when a graph ID cannot be found in the repository.
var ErrGraphNotFound = errors.New("graph not found")

// ErrNodeNotFound is returned when a node ID cannot be resolved in the graph.
var ErrNodeNotFound = errors.New("node not found")
