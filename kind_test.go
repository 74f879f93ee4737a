package cypherdto

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fieldOf compiles a one-field node and returns its field.
func fieldOf(t *testing.T, fb *FieldBuilder) *Field {
	t.Helper()
	s, err := Compile(Node("Probe", fb))
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
	return s.Fields()[0]
}

func TestKindRoundTrip(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		field *FieldBuilder
		value any
		bound any
	}{
		{"text", String("v"), "hello", "hello"},
		{"bool", Bool("v"), true, true},
		{"int8", Int8("v"), int8(-8), int64(-8)},
		{"int16", Int16("v"), int16(-16000), int64(-16000)},
		{"int32", Int32("v"), int32(1 << 30), int64(1 << 30)},
		{"int64", Int64("v"), int64(math.MinInt64), int64(math.MinInt64)},
		{"int", Int("v"), 42, int64(42)},
		{"uint8", Uint8("v"), uint8(255), int16(255)},
		{"uint16", Uint16("v"), uint16(65535), int64(65535)},
		{"uint32", Uint32("v"), uint32(math.MaxUint32), int64(math.MaxUint32)},
		{"uint64", Uint64("v"), uint64(1 << 40), int64(1 << 40)},
		{"uint", Uint("v"), uint(7), int64(7)},
		{"float32", Float32("v"), float32(1.5), float64(1.5)},
		{"float64", Float64("v"), 2.25, 2.25},
		{"datetime", Time("v"), when, when},
		{"list", List("v", KindUint8), []any{uint8(1), uint8(2)}, []any{int16(1), int16(2)}},
		{"other", Other("v"), map[string]any{"k": "v"}, map[string]any{"k": "v"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fieldOf(t, tt.field)
			require.NoError(t, f.Check(tt.value))

			bound, err := f.Bind(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.bound, bound)

			read, err := f.Read(Props{"v": bound})
			require.NoError(t, err)
			assert.Equal(t, tt.value, read)
		})
	}
}

func TestKindRoundTripBigInt(t *testing.T) {
	for _, tt := range []struct {
		field *FieldBuilder
		value *big.Int
	}{
		{Int128("v"), big.NewInt(-5)},
		{Uint128("v"), big.NewInt(math.MaxInt64)},
	} {
		f := fieldOf(t, tt.field)
		bound, err := f.Bind(tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.value.Int64(), bound)

		read, err := f.Read(Props{"v": bound})
		require.NoError(t, err)
		require.IsType(t, &big.Int{}, read)
		assert.Zero(t, tt.value.Cmp(read.(*big.Int)))
	}
}

func TestKindReadAcceptsDriverValues(t *testing.T) {
	f := fieldOf(t, Uint8("v"))
	v, err := f.Read(Props{"v": int64(200)})
	require.NoError(t, err)
	assert.Equal(t, uint8(200), v)

	when := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	f = fieldOf(t, Time("v"))
	v, err = f.Read(Props{"v": neo4j.LocalDateTime(when)})
	require.NoError(t, err)
	assert.Equal(t, when, v)

	loc := time.FixedZone("UTC+2", 2*60*60)
	v, err = f.Read(Props{"v": when.In(loc)})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, v.(time.Time).Location())
	assert.True(t, when.Equal(v.(time.Time)))
}

func TestKindFloat32Truncates(t *testing.T) {
	f := fieldOf(t, Float32("v"))
	v, err := f.Read(Props{"v": 0.1})
	require.NoError(t, err)
	assert.Equal(t, float32(0.1), v)
}

func TestKindReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		field   *FieldBuilder
		props   Props
		want    any
		wantErr error
	}{
		{"int8 overflow", Int8("v"), Props{"v": int64(300)}, nil, ErrTypeMismatch},
		{"uint8 negative", Uint8("v"), Props{"v": int64(-1)}, nil, ErrTypeMismatch},
		{"uint32 overflow", Uint32("v"), Props{"v": int64(math.MaxUint32 + 1)}, nil, ErrTypeMismatch},
		{"uint128 negative", Uint128("v"), Props{"v": int64(-1)}, nil, ErrTypeMismatch},
		{"wrong type", Int64("v"), Props{"v": "12"}, nil, ErrTypeMismatch},
		{"missing", String("v"), Props{}, nil, ErrMissingField},
		{"null", String("v"), Props{"v": nil}, nil, ErrMissingField},
		{"list element overflow", List("v", KindInt8), Props{"v": []any{int64(1), int64(999)}}, nil, ErrTypeMismatch},

		{"optional missing", String("v").Optional(), Props{}, nil, nil},
		{"optional null", String("v").Optional(), Props{"v": nil}, nil, nil},
		{"optional wrong type", Int64("v").Optional(), Props{"v": "12"}, nil, nil},
		{"optional overflow", Int8("v").Optional(), Props{"v": int64(300)}, nil, ErrTypeMismatch},
		{"optional present", Int8("v").Optional(), Props{"v": int64(3)}, int8(3), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fieldOf(t, tt.field)
			v, err := f.Read(tt.props)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestKindBindErrors(t *testing.T) {
	tests := []struct {
		name  string
		field *FieldBuilder
		value any
	}{
		{"uint64 overflow", Uint64("v"), uint64(math.MaxUint64)},
		{"uint overflow", Uint("v"), uint(math.MaxUint64)},
		{"int128 overflow", Int128("v"), new(big.Int).Lsh(big.NewInt(1), 64)},
		{"uint128 negative", Uint128("v"), big.NewInt(-1)},
		{"wrong go type", Int32("v"), int64(1)},
		{"required nil", String("v"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fieldOf(t, tt.field)
			_, err := f.Bind(tt.value)
			var mismatch *TypeMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, "v", mismatch.Field)
		})
	}
}

func TestOptionalNilBindsNull(t *testing.T) {
	f := fieldOf(t, Uint16("v").Optional())
	require.NoError(t, f.Check(nil))
	v, err := f.Bind(nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestParseKind(t *testing.T) {
	for name, want := range map[string]Kind{
		"text":      KindText,
		"string":    KindText,
		"UINT8":     KindUint8,
		" float32 ": KindFloat32,
		"timestamp": KindDateTime,
		"datetime":  KindDateTime,
		"list":      KindList,
		"other":     KindOther,
	} {
		got, err := ParseKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseKind("decimal")
	assert.Error(t, err)
}

func TestFieldTypeString(t *testing.T) {
	assert.Equal(t, "uint16", FieldType{Kind: KindUint16}.String())
	assert.Equal(t, "optional<datetime>", FieldType{Kind: KindDateTime, Optional: true}.String())
	assert.Equal(t, "optional<list<text>>", FieldType{Kind: KindList, Elem: KindText, Optional: true}.String())
	assert.True(t, KindFloat32.IsNumeric())
	assert.False(t, KindDateTime.IsNumeric())
}
