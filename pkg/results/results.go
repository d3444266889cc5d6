// Package results separates domain outcomes from infrastructure errors.
//
// A service returns (OperationResult, error). A non-nil error means the
// operation could not run (database down, context cancelled) and may be
// retried; a Failure means it ran and the request was rejected.
package results

// OperationResult carries exactly one of Success or Failure.
type OperationResult[S any, F any] struct {
	Success *S
	Failure *F
}

// SuccessResult wraps a successful value.
func SuccessResult[S any, F any](s S) OperationResult[S, F] {
	return OperationResult[S, F]{Success: &s}
}

// FailureResult wraps a domain failure.
func FailureResult[S any, F any](f F) OperationResult[S, F] {
	return OperationResult[S, F]{Failure: &f}
}

func (r OperationResult[S, F]) IsSuccess() bool {
	return r.Success != nil
}

func (r OperationResult[S, F]) IsFailure() bool {
	return r.Failure != nil
}

// Map converts the success value, passing failures through untouched.
func Map[S any, F any, T any](r OperationResult[S, F], fn func(S) T) OperationResult[T, F] {
	switch {
	case r.Success != nil:
		return SuccessResult[T, F](fn(*r.Success))
	case r.Failure != nil:
		return FailureResult[T, F](*r.Failure)
	default:
		return OperationResult[T, F]{}
	}
}
