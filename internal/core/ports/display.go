package ports

import "go.trai.ch/noderun/internal/core/domain"

// Display is the line oriented progress output of a build.
//
//go:generate mockgen -source=display.go -destination=mocks/mock_display.go -package=mocks
type Display interface {
	// Emit prints a message sent by a command through the control protocol.
	Emit(msg string)

	// NodeFinished prints the outcome of a node.
	NodeFinished(node *domain.Node, res domain.NodeResult)

	// Partial receives the streaming result of a node right after its commands ran.
	Partial(res domain.PartialResult)

	// Summary prints the final report of the build.
	Summary(total int, buildErrors map[string]string)
}
