package errors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	var errs Errors
	assert.False(t, errs.Check(false, "not added"))
	assert.True(t, errs.Check(true, "Missing %s", "date"))
	assert.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "Missing date")
}

func TestAdd(t *testing.T) {
	var errs Errors
	assert.True(t, errs.Add(nil))
	assert.Empty(t, errs)

	assert.False(t, errs.Add(errors.New("first")))
	assert.False(t, errs.Add(Errors{errors.New("second"), errors.New("third")}))
	assert.Len(t, errs, 3, "Batches should be merged")
	assert.EqualError(t, errs, "first\nsecond\nthird")
}

func TestAt(t *testing.T) {
	var errs Errors
	errs.At("Line 1", nil)
	errs.Atf(nil, "Line %d", 2)
	assert.Empty(t, errs)

	errs.Atf(errors.New("Invalid amount"), "Line %d", 3)
	errs.At("Record 4", Errors{
		Located{Location: "date", Err: errors.New("must be required")},
		Located{Location: "card_ending", Err: errors.New("must be numeric")},
	})
	require.Len(t, errs, 3)
	assert.EqualError(t, errs, `Line 3: Invalid amount
Record 4: date: must be required
Record 4: card_ending: must be numeric`)

	located, ok := errs[2].(Located)
	require.True(t, ok)
	assert.Equal(t, "Record 4", located.Location)
	assert.EqualError(t, errors.Cause(located), "must be numeric")
}

func TestErrorsAs(t *testing.T) {
	sentinel := errors.New("sentinel")
	var errs Errors
	errs.Check(true, "first")
	errs.At("Line 2", sentinel)

	assert.True(t, errors.Is(errs.Err(), sentinel))
	var located Located
	require.True(t, errors.As(errs.Err(), &located))
	assert.Equal(t, "Line 2", located.Location)
}

func TestErr(t *testing.T) {
	for _, tc := range []struct {
		description string
		errs        Errors
		expected    error
	}{
		{description: "no errors"},
		{
			description: "one error is returned alone",
			errs:        Errors{errors.New("only")},
			expected:    errors.New("only"),
		},
		{
			description: "many errors",
			errs:        Errors{errors.New("a"), errors.New("b")},
			expected:    Errors{errors.New("a"), errors.New("b")},
		},
	} {
		t.Run(tc.description, func(t *testing.T) {
			err := tc.errs.Err()
			if tc.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.expected.Error())
			_, isBatch := err.(Errors)
			assert.Equal(t, len(tc.errs) > 1, isBatch)
		})
	}
}
