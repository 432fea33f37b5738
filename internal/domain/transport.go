package domain

import (
	"context"
	"errors"
	"net"
)

// ClassifyTransport maps an error from an outbound call onto an ErrorKind.
// Caller cancellation is not transient; a deadline is. An unknown host means
// the configured endpoint is wrong and retrying will not help.
func ClassifyTransport(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return KindExecution
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound && !dnsErr.IsTemporary {
		return KindInvalidConfig
	}

	// Timeouts, resets, refused connections, proxy failures.
	return KindTransient
}
