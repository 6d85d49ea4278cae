package pagekv

// Visitor receives the entries of a range scan in ascending key order.
// The slices are copies owned by the visitor.
type Visitor interface {
	Visit(key, value []byte)
}

// VisitorFunc adapts an ordinary function to the Visitor interface.
type VisitorFunc func(key, value []byte)

// Visit calls f(key, value).
func (f VisitorFunc) Visit(key, value []byte) {
	f(key, value)
}

// KV is the contract shared by key-value stores: point writes and reads,
// ordered range scans and an explicit close.
type KV interface {
	Write(key, value []byte) error
	Read(key []byte) ([]byte, error)
	Range(lower, upper []byte, v Visitor) error
	Close() error
}

var _ KV = (*Engine)(nil)
