package highlight

import (
	"errors"

	"github.com/nao1215/jobguard/internal/model"
)

// Annotation precondition errors.
// Annotate returns one of these before touching the tree, so a rejected call
// never leaves a partially split node behind.
var (
	// ErrNotTextNode is returned when the node to annotate is nil or not a text node.
	ErrNotTextNode = errors.New("node is not a text node")

	// ErrDetachedNode is returned when the node has no parent. This happens
	// when a handle is reused after the node was already replaced.
	ErrDetachedNode = errors.New("node is detached from the document")

	// ErrInvalidSpan is returned when the match span does not fit inside the
	// node's text or has a non-positive length.
	ErrInvalidSpan = errors.New("match span out of bounds")

	// ErrUnknownRiskLevel is returned for risk levels without styling.
	ErrUnknownRiskLevel = model.ErrUnknownRiskLevel
)
