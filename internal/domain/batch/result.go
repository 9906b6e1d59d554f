package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of processing one item in a batch upsert.
type Result struct {
	id     string
	status ItemStatus
	tokens int
	err    error
}

// NewOK creates a successful batch result.
func NewOK(id string, tokens int) Result {
	return Result{id: id, status: StatusOK, tokens: tokens}
}

// NewError creates a failed batch result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the item identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Tokens returns the fingerprint size of the stored item.
func (r Result) Tokens() int { return r.tokens }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }
