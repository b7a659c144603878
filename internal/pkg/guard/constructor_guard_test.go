package guard_test

import (
	"errors"
	"sync"
	"testing"

	"fulfillment/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDispatchNotConstructed = errors.New("DispatchOrderCommand must be created via NewDispatchOrderCommand")

// dispatchCommand mirrors how commands embed the guard.
type dispatchCommand struct {
	orderID string
	guard   guard.ConstructorGuard
}

func newDispatchCommand(orderID string) (dispatchCommand, error) {
	if orderID == "" {
		return dispatchCommand{}, errors.New("order id is required")
	}
	return dispatchCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c dispatchCommand) Validate() error {
	return c.guard.Validate(errDispatchNotConstructed)
}

func TestConstructorGuard_Validate(t *testing.T) {
	tests := []struct {
		name    string
		guard   guard.ConstructorGuard
		errIn   error
		wantErr error
	}{
		{"constructed with custom error", guard.NewConstructorGuard(), errDispatchNotConstructed, nil},
		{"constructed with nil error", guard.NewConstructorGuard(), nil, nil},
		{"zero value returns custom error", guard.ConstructorGuard{}, errDispatchNotConstructed, errDispatchNotConstructed},
		{"zero value falls back to default", guard.ConstructorGuard{}, nil, guard.ErrDefaultConstructorGuard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.guard.Validate(tt.errIn)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestConstructorGuard_EmbeddedInCommand(t *testing.T) {
	t.Run("constructor output validates", func(t *testing.T) {
		cmd, err := newDispatchCommand("0d6c3b4e-7c0a-4a4e-9b8e-0f6f1f0c2a11")
		require.NoError(t, err)
		require.NoError(t, cmd.Validate())

		copied := cmd
		require.NoError(t, copied.Validate())
	})

	t.Run("hand-built command is rejected", func(t *testing.T) {
		cmd := dispatchCommand{orderID: "0d6c3b4e-7c0a-4a4e-9b8e-0f6f1f0c2a11"}
		assert.ErrorIs(t, cmd.Validate(), errDispatchNotConstructed)
	})

	t.Run("constructor still enforces its own rules", func(t *testing.T) {
		_, err := newDispatchCommand("")
		require.EqualError(t, err, "order id is required")
	})
}

func TestConstructorGuard_ConcurrentValidate(t *testing.T) {
	g := guard.NewConstructorGuard()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				assert.NoError(t, g.Validate(errDispatchNotConstructed))
			}
		}()
	}
	wg.Wait()
}

func TestErrDefaultConstructorGuard(t *testing.T) {
	assert.Equal(t, "object must be created via its constructor", guard.ErrDefaultConstructorGuard.Error())
}
