package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOption_String(t *testing.T) {
	tests := []struct {
		opt  Option
		want string
	}{
		{OptURL, "CURLOPT_URL"},
		{OptTimeout, "CURLOPT_TIMEOUT"},
		{OptWriteFunction, "CURLOPT_WRITEFUNCTION"},
		{Option(10999), "CURLOPT(10999)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opt.String())
		})
	}
}

func TestOption_Class(t *testing.T) {
	assert.True(t, OptTimeout.IsLong())
	assert.False(t, OptTimeout.IsPointer())

	assert.True(t, OptPostFields.IsPointer())
	assert.False(t, OptPostFields.IsFunction())

	assert.True(t, OptHeaderFunction.IsFunction())
	assert.False(t, OptHeaderFunction.IsLong())
}

func TestOption_Values(t *testing.T) {
	// Numeric ids are part of the native ABI.
	assert.Equal(t, 13, int(OptTimeout))
	assert.Equal(t, 10002, int(OptURL))
	assert.Equal(t, 10015, int(OptPostFields))
	assert.Equal(t, 10023, int(OptHTTPHeader))
	assert.Equal(t, 10024, int(OptHTTPPost))
	assert.Equal(t, 20011, int(OptWriteFunction))
	assert.Equal(t, 20012, int(OptReadFunction))
	assert.Equal(t, 20079, int(OptHeaderFunction))
}

func TestDataOption(t *testing.T) {
	d, ok := DataOption(OptWriteFunction)
	assert.True(t, ok)
	assert.Equal(t, OptWriteData, d)

	d, ok = DataOption(OptHeaderFunction)
	assert.True(t, ok)
	assert.Equal(t, OptHeaderData, d)

	d, ok = DataOption(OptReadFunction)
	assert.True(t, ok)
	assert.Equal(t, OptReadData, d)

	_, ok = DataOption(Option(20056))
	assert.False(t, ok)
}

func TestCode_Error(t *testing.T) {
	assert.Contains(t, OperationTimedOut.Error(), "28")
	assert.Contains(t, OperationTimedOut.Error(), "Timeout")
	assert.Equal(t, "curl code 999", Code(999).Error())
	assert.Equal(t, "curl form code 5", FormIncomplete.Error())
}

func TestReadAbort(t *testing.T) {
	assert.Equal(t, uintptr(0x10000000), ReadAbort)
}
