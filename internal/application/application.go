package application

import "context"

// UseCase is one request-scoped operation the presentation layer can drive.
type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}
