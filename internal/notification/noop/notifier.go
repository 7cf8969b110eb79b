package noop

import "context"

// Notifier is a no-op notification sender used when Kafka is not configured.
type Notifier struct{}

func (Notifier) SendOrderConfirmation(_ context.Context, _, _ string) error { return nil }

func (Notifier) SendCancellationConfirmation(_ context.Context, _, _ string) error { return nil }
