package deltaerr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListErrNilWithNoAdds(t *testing.T) {
	var l List
	assert.NoError(t, l.Err())
}

func TestListNilReceiverAddIsNoop(t *testing.T) {
	var l *List
	l.Add("this should not panic")
	assert.NoError(t, l.Err())
}

func TestListAggregatesMessages(t *testing.T) {
	var l List
	l.Add("first %d", 1)
	l.Add("second %d", 2)

	err := l.Err()
	if assert.Error(t, err) {
		var derr *Error
		assert.ErrorAs(t, err, &derr)
		assert.Equal(t, InvariantViolation, derr.Kind)
		assert.Contains(t, derr.Error(), "first 1")
		assert.Contains(t, derr.Error(), "second 2")
	}
}
