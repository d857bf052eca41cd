package weather

import "context"

// Gateway abstracts one weather provider endpoint. Implementations issue a
// single request per call and surface typed failures; they never retry on
// their own. Retry policy lives with the orchestrating service.
type Gateway interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (RawSource, error)
}
