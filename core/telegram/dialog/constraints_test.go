package dialog

import (
	"testing"

	"github.com/AlekSi/pointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMinLengthBoundary(t *testing.T) {
	cs := &Constraints{MinLength: pointer.ToInt(3)}

	_, err := validateAndCast("Al", KindString, cs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 3 characters")

	v, err := validateAndCast("Ann", KindString, cs)
	require.NoError(t, err)
	assert.Equal(t, "Ann", v)
}

func TestValidateMaxLength(t *testing.T) {
	cs := &Constraints{MaxLength: pointer.ToInt(5)}

	_, err := validateAndCast("toolong", KindString, cs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 5 characters")

	_, err = validateAndCast("short", KindString, cs)
	assert.NoError(t, err)
}

func TestValidateIntCast(t *testing.T) {
	v, err := validateAndCast("30", KindInt, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(30), v)

	v, err = validateAndCast(" -7 ", KindInt, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(-7), v)

	_, err = validateAndCast("thirty", KindInt, nil)
	require.Error(t, err)
	assert.Equal(t, "value is not a valid integer", err.Error())
}

func TestValidateNumericBounds(t *testing.T) {
	ge := &Constraints{Ge: pointer.ToFloat64(0)}

	_, err := validateAndCast("-1", KindInt, ge)
	require.Error(t, err)
	assert.Equal(t, "ensure this value is greater than or equal to 0", err.Error())

	v, err := validateAndCast("0", KindInt, ge)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	_, err = validateAndCast("10", KindInt, &Constraints{Lt: pointer.ToFloat64(10)})
	require.Error(t, err)
	assert.Equal(t, "ensure this value is less than 10", err.Error())

	_, err = validateAndCast("3", KindInt, &Constraints{Gt: pointer.ToFloat64(3)})
	require.Error(t, err)
	assert.Equal(t, "ensure this value is greater than 3", err.Error())

	_, err = validateAndCast("11", KindInt, &Constraints{Le: pointer.ToFloat64(10)})
	require.Error(t, err)
	assert.Equal(t, "ensure this value is less than or equal to 10", err.Error())
}

func TestValidateMultipleOf(t *testing.T) {
	cs := &Constraints{MultipleOf: pointer.ToFloat64(5)}

	_, err := validateAndCast("12", KindInt, cs)
	require.Error(t, err)
	assert.Equal(t, "ensure this value is a multiple of 5", err.Error())

	v, err := validateAndCast("15", KindInt, cs)
	require.NoError(t, err)
	assert.Equal(t, int64(15), v)
}

func TestValidateFloat(t *testing.T) {
	v, err := validateAndCast("3.5", KindFloat, &Constraints{Le: pointer.ToFloat64(4.5)})
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)

	_, err = validateAndCast("abc", KindFloat, nil)
	require.Error(t, err)
	assert.Equal(t, "value is not a valid float", err.Error())
}

func TestValidateBool(t *testing.T) {
	for raw, want := range map[string]bool{
		"1": true, "true": true, "Yes": true, "on": true,
		"0": false, "false": false, "No": false, "off": false,
	} {
		v, err := validateAndCast(raw, KindBool, nil)
		require.NoError(t, err, raw)
		assert.Equal(t, want, v, raw)
	}

	_, err := validateAndCast("maybe", KindBool, nil)
	require.Error(t, err)
	assert.Equal(t, "value could not be parsed to a boolean", err.Error())
}

func TestValidatePattern(t *testing.T) {
	cs := &Constraints{Pattern: `^[a-z]+$`}
	require.NoError(t, cs.compile())

	_, err := validateAndCast("abc123", KindString, cs)
	require.Error(t, err)
	assert.Equal(t, `string does not match regex "^[a-z]+$"`, err.Error())

	v, err := validateAndCast("abc", KindString, cs)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}

func TestCompileRejectsBadPattern(t *testing.T) {
	cs := &Constraints{Pattern: `([unclosed`}
	assert.Error(t, cs.compile())
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Ensure this value", capitalize("ensure this value"))
	assert.Equal(t, "", capitalize(""))
}
