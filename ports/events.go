package ports

import "context"

// EventPublisher notifies other instances and downstream services about
// completed logins.
type EventPublisher interface {
	PublishLogin(ctx context.Context, address string, subject string) error
}
