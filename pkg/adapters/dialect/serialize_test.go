package dialect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type panickyStringer struct{}

func (panickyStringer) String() string { panic("boom") }

func TestSerializeValueBasics(t *testing.T) {
	assert.Nil(t, SerializeValue(nil))
	assert.Equal(t, true, SerializeValue(true))
	assert.Equal(t, int64(42), SerializeValue(int64(42)))
	assert.Equal(t, 3.14, SerializeValue(3.14))
	assert.Equal(t, "hello", SerializeValue("hello"))
}

func TestSerializeValueTime(t *testing.T) {
	ts := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-15T10:30:00Z", SerializeValue(ts))
	assert.Equal(t, "2024-03-15", FormatDate(ts))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{90 * time.Minute, "01:30:00"},
		{25*time.Hour + 5*time.Second, "25:00:05"},
		{0, "00:00:00"},
		{-90 * time.Second, "-00:01:30"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d))
	}
}

func TestDecodeBytes(t *testing.T) {
	assert.Equal(t, "plain text", DecodeBytes([]byte("plain text")))
	assert.Equal(t, "tab\tand\nnewline", DecodeBytes([]byte("tab\tand\nnewline")))

	// NUL bytes force the hex form
	assert.Equal(t, "001122", DecodeBytes([]byte{0x00, 0x11, 0x22}))
	// other control characters too
	assert.Equal(t, "610762", DecodeBytes([]byte{'a', 0x07, 'b'}))
	// invalid UTF-8
	assert.Equal(t, "fffe", DecodeBytes([]byte{0xff, 0xfe}))
}

func TestSerializeDecimal(t *testing.T) {
	assert.Equal(t, 19.99, SerializeDecimal("19.99"))
	assert.Equal(t, 19.99, SerializeDecimal([]byte("19.99")))
	assert.Equal(t, float64(7), SerializeDecimal(int64(7)))
	assert.Nil(t, SerializeDecimal(nil))
	// unparseable text stays text
	assert.Equal(t, "not-a-number", SerializeDecimal("not-a-number"))
}

func TestSerializeJSON(t *testing.T) {
	got := SerializeJSON([]byte(`{"a": [1, 2]}`))
	m, ok := got.(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, []any{float64(1), float64(2)}, m["a"])

	// broken JSON falls back to the raw text
	assert.Equal(t, "{broken", SerializeJSON("{broken"))
	assert.Nil(t, SerializeJSON(nil))
}

func TestSerializeValueRecoversFromPanickyStringer(t *testing.T) {
	got := SerializeValue(panickyStringer{})
	assert.IsType(t, "", got)
	assert.NotEmpty(t, got)
}

func TestIsDecimalType(t *testing.T) {
	assert.True(t, IsDecimalType("NUMERIC"))
	assert.True(t, IsDecimalType("decimal"))
	assert.False(t, IsDecimalType("VARCHAR"))
	assert.False(t, IsDecimalType(""))
}
