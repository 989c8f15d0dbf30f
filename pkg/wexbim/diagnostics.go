package wexbim

import "fmt"

// DiagKind classifies a block-level problem. Block-level problems never
// abort the decode; the affected block is dropped or kept as documented per
// kind, and the diagnostic is collected on the Model.
type DiagKind int

const (
	// DiagCorruptBlock marks a geometry sub-region that ended mid-record.
	// The block is dropped.
	DiagCorruptBlock DiagKind = iota
	// DiagIndexOutOfRange marks a face index >= the block's vertex count.
	// The block is dropped.
	DiagIndexOutOfRange
	// DiagCountMismatch marks a block whose faces emitted a number of
	// indices other than 3 * triangle count. The block is dropped.
	DiagCountMismatch
	// DiagTrailingBytes marks a geometry sub-region with unread bytes after
	// the face list. The block is kept.
	DiagTrailingBytes
	// DiagUnknownProduct marks a shape referencing a product label with no
	// record. The shape is kept with a zero-valued product.
	DiagUnknownProduct
)

// String returns a short diagnostic kind name.
func (k DiagKind) String() string {
	switch k {
	case DiagCorruptBlock:
		return "CorruptBlock"
	case DiagIndexOutOfRange:
		return "IndexOutOfRange"
	case DiagCountMismatch:
		return "CountMismatch"
	case DiagTrailingBytes:
		return "TrailingBytes"
	case DiagUnknownProduct:
		return "UnknownProduct"
	default:
		return fmt.Sprintf("DiagKind(%d)", int(k))
	}
}

// Dropped reports whether a diagnostic of this kind removes its block from
// the output.
func (k DiagKind) Dropped() bool {
	switch k {
	case DiagCorruptBlock, DiagIndexOutOfRange, DiagCountMismatch:
		return true
	default:
		return false
	}
}

// Diagnostic records one block-level problem encountered during decode.
type Diagnostic struct {
	Kind    DiagKind
	Region  int // region index, -1 for flat (pre-v3) streams
	Block   int // running block index in file order
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("block %d (region %d): %s: %s", d.Block, d.Region, d.Kind, d.Message)
}

// blockError is the internal error type for problems local to one geometry
// sub-region. The decoder converts it into a Diagnostic and moves on.
type blockError struct {
	kind DiagKind
	msg  string
}

func (e *blockError) Error() string {
	return fmt.Sprintf("wexbim: %s: %s", e.kind, e.msg)
}

func blockErrorf(kind DiagKind, format string, args ...any) *blockError {
	return &blockError{kind: kind, msg: fmt.Sprintf(format, args...)}
}
