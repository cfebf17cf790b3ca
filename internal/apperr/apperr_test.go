package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIsMatchesKind(t *testing.T) {
	err := New(KindInvalidState, "Pay", "order %d is %s", 7, "Paid")
	wrapped := fmt.Errorf("handler: %w", err)

	assert.ErrorIs(t, wrapped, ErrInvalidState)
	assert.NotErrorIs(t, wrapped, ErrEmptyOrder)
	assert.Equal(t, KindInvalidState, KindOf(wrapped))
	assert.Equal(t, "Pay: order 7 is Paid", err.Error())
}

func TestPersistenceWrapsRawErrors(t *testing.T) {
	err := Persistence("AddItem", context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	classified := New(KindNotFound, "AddItem", "order not found")
	assert.Same(t, classified, Persistence("AddItem", classified))
	assert.NoError(t, Persistence("AddItem", nil))
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}
