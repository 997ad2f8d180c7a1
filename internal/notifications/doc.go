// Package notifications delivers run lifecycle events to an ntfy topic.
// Without a configured topic the service degrades to a noop so callers
// never have to branch.
package notifications
