package commands

import (
	"errors"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrRedispatchOrdersCommandIsNotConstructed = errors.New(
	"RedispatchOrdersCommand must be created via NewRedispatchOrdersCommand constructor",
)

// RedispatchOrdersCommand retries dispatch of ready orders that never got an
// assignment, at most batchSize of them per run.
type RedispatchOrdersCommand struct {
	batchSize int

	guard guard.ConstructorGuard
}

func NewRedispatchOrdersCommand(batchSize int) (RedispatchOrdersCommand, error) {
	if batchSize < 1 {
		return RedispatchOrdersCommand{}, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, "unbounded")
	}
	return RedispatchOrdersCommand{
		batchSize: batchSize,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c RedispatchOrdersCommand) Validate() error {
	return c.guard.Validate(ErrRedispatchOrdersCommandIsNotConstructed)
}

func (c RedispatchOrdersCommand) BatchSize() int {
	return c.batchSize
}
