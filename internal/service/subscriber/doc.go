// Package subscriber implements newsletter signups, capability-link
// unsubscribes and the admin subscriber views.
package subscriber
