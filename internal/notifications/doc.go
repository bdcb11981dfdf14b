// Package notifications delivers push notifications through ntfy. The
// service is optional: without a configured topic every call is a no-op, so
// callers never need to branch on whether notifications are enabled.
package notifications
