package roster

import "context"

// Store persists templates. Implementations return ErrTemplateNotFound from
// Get, Update and Delete when the ID is unknown, and ErrDuplicateTemplate
// from Create when it is taken. Ownership is not checked here.
type Store interface {
	Create(ctx context.Context, t Template) error
	Get(ctx context.Context, id string) (*Template, error)
	// ListByOwner returns the owner's templates, most recently updated first.
	ListByOwner(ctx context.Context, ownerID string) ([]Template, error)
	Update(ctx context.Context, t Template) error
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by stores backed by a network or file connection.
type Pinger interface {
	Ping(ctx context.Context) error
}
