package future

// Unit is the payload type for futures that carry no result.
type Unit struct{}

// completed is the shared pre-resolved void-success handle.
var completed = Resolved(Unit{})

// Completed returns a shared future already completed with Unit.
// Every call returns the same handle, so success paths that have
// nothing to report can avoid an allocation.
func Completed() *Future[Unit] {
	return completed
}
