// Package queue publishes run events to a durable queue.
//
// Publisher implementations own background resources and must be closed exactly once.
package queue
