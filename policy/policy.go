// Package policy decides what an incoming photo means for a user,
// given their session state. It performs no I/O.
package policy

// Decision is the outcome for a single incoming photo.
type Decision int

const (
	// RejectNoStyle: no usable style selection, ask the user to pick one.
	RejectNoStyle Decision = iota
	// TransformKeepStyle: run the transform and keep the selection
	// (entitled users transform freely while the grant lasts).
	TransformKeepStyle
	// TransformConsumeStyle: run the transform and clear the selection,
	// spending the single free use.
	TransformConsumeStyle
	// AcceptProof: treat the photo as a payment proof and forward it.
	AcceptProof
)

func (d Decision) String() string {
	switch d {
	case TransformKeepStyle:
		return "transform_keep_style"
	case TransformConsumeStyle:
		return "transform_consume_style"
	case AcceptProof:
		return "accept_proof"
	default:
		return "reject_no_style"
	}
}

// Snapshot is the session state relevant to the photo decision.
type Snapshot struct {
	Entitled      bool
	HasStyle      bool
	AwaitingProof bool
}

// DecidePhoto maps session state to a photo decision.
//
// Entitled users always go down the transform path: a pending proof flag
// is moot once access is granted. Without an entitlement the awaiting
// flag wins, so users who tapped the pay prompt can submit their receipt
// even while a style is still selected.
func DecidePhoto(s Snapshot) Decision {
	if s.Entitled {
		if s.HasStyle {
			return TransformKeepStyle
		}
		return RejectNoStyle
	}
	if s.AwaitingProof {
		return AcceptProof
	}
	if s.HasStyle {
		return TransformConsumeStyle
	}
	return RejectNoStyle
}
