package cypherdto

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Kind classifies a declared field type. The set is closed: Neo4j natively
// stores only int64, float64, string, bool, a temporal type and lists of those,
// and every Kind defines how it is cast to and reconstructed from that set.
type Kind uint8

const (
	KindOther Kind = iota
	KindText
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt
	KindInt128
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindUint
	KindUint128
	KindFloat32
	KindFloat64
	KindDateTime
	KindList
)

var kindNames = [...]string{
	KindOther:    "other",
	KindText:     "text",
	KindBool:     "bool",
	KindInt8:     "int8",
	KindInt16:    "int16",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindInt:      "int",
	KindInt128:   "int128",
	KindUint8:    "uint8",
	KindUint16:   "uint16",
	KindUint32:   "uint32",
	KindUint64:   "uint64",
	KindUint:     "uint",
	KindUint128:  "uint128",
	KindFloat32:  "float32",
	KindFloat64:  "float64",
	KindDateTime: "datetime",
	KindList:     "list",
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// ParseKind converts a kind name (as written in descriptor files) to a Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "string":
		return KindText, nil
	case "time", "timestamp":
		return KindDateTime, nil
	}
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return KindOther, fmt.Errorf("unknown field kind %q", s)
}

// IsNumeric reports whether the kind is one of the integer or float kinds.
func (k Kind) IsNumeric() bool {
	return k >= KindInt8 && k <= KindFloat64
}

// FieldType is a Kind plus its Optional wrapper. Elem is only meaningful for
// KindList.
type FieldType struct {
	Kind     Kind
	Elem     Kind
	Optional bool
}

// String renders the type as e.g. "optional<list<text>>".
func (t FieldType) String() string {
	s := t.Kind.String()
	if t.Kind == KindList {
		s = fmt.Sprintf("list<%s>", t.Elem)
	}
	if t.Optional {
		s = fmt.Sprintf("optional<%s>", s)
	}
	return s
}

// IsDateTime reports whether the type is DateTime or Optional<DateTime>.
func (t FieldType) IsDateTime() bool {
	return t.Kind == KindDateTime
}

type readStatus uint8

const (
	readOK readStatus = iota
	readWrongType
	readOutOfRange
)

// converter is the per-kind pair of conversions. bind casts a Go value into a
// parameter the store accepts; read reconstructs the Go value from what the
// store returned. The two are inverse for every kind.
type converter struct {
	check func(v any) bool
	bind  func(v any) (any, bool)
	read  func(v any) (any, readStatus)
}

func converterFor(k Kind, elem Kind) converter {
	switch k {
	case KindText:
		return passthrough[string]()
	case KindBool:
		return passthrough[bool]()
	case KindInt8:
		return signed[int8]()
	case KindInt16:
		return signed[int16]()
	case KindInt32:
		return signed[int32]()
	case KindInt64:
		return signed[int64]()
	case KindInt:
		return signed[int]()
	case KindUint8:
		c := unsigned[uint8]()
		// int16 preserves the full uint8 range.
		c.bind = func(v any) (any, bool) {
			t, ok := v.(uint8)
			return int16(t), ok
		}
		return c
	case KindUint16:
		return unsigned[uint16]()
	case KindUint32:
		return unsigned[uint32]()
	case KindUint64:
		return unsigned[uint64]()
	case KindUint:
		return unsigned[uint]()
	case KindInt128:
		return bigInt(false)
	case KindUint128:
		return bigInt(true)
	case KindFloat32:
		return converter{
			check: isType[float32],
			bind: func(v any) (any, bool) {
				f, ok := v.(float32)
				return float64(f), ok
			},
			read: func(v any) (any, readStatus) {
				f, ok := asFloat64(v)
				if !ok {
					return nil, readWrongType
				}
				return float32(f), readOK
			},
		}
	case KindFloat64:
		return converter{
			check: isType[float64],
			bind:  func(v any) (any, bool) { return v, isType[float64](v) },
			read: func(v any) (any, readStatus) {
				f, ok := asFloat64(v)
				if !ok {
					return nil, readWrongType
				}
				return f, readOK
			},
		}
	case KindDateTime:
		return converter{
			check: isType[time.Time],
			bind:  func(v any) (any, bool) { return v, isType[time.Time](v) },
			read: func(v any) (any, readStatus) {
				switch t := v.(type) {
				case time.Time:
					return t.UTC(), readOK
				case neo4j.LocalDateTime:
					return time.Time(t).UTC(), readOK
				}
				return nil, readWrongType
			},
		}
	case KindList:
		return list(converterFor(elem, KindOther))
	default:
		return converter{
			check: func(any) bool { return true },
			bind:  func(v any) (any, bool) { return v, true },
			read:  func(v any) (any, readStatus) { return v, readOK },
		}
	}
}

func isType[T any](v any) bool {
	_, ok := v.(T)
	return ok
}

func passthrough[T any]() converter {
	return converter{
		check: isType[T],
		bind:  func(v any) (any, bool) { return v, isType[T](v) },
		read: func(v any) (any, readStatus) {
			if !isType[T](v) {
				return nil, readWrongType
			}
			return v, readOK
		},
	}
}

func signed[T int8 | int16 | int32 | int64 | int]() converter {
	return converter{
		check: isType[T],
		bind: func(v any) (any, bool) {
			t, ok := v.(T)
			return int64(t), ok
		},
		read: func(v any) (any, readStatus) {
			n, ok := asInt64(v)
			if !ok {
				return nil, readWrongType
			}
			t := T(n)
			if int64(t) != n {
				return nil, readOutOfRange
			}
			return t, readOK
		},
	}
}

func unsigned[T uint8 | uint16 | uint32 | uint64 | uint]() converter {
	return converter{
		check: isType[T],
		bind: func(v any) (any, bool) {
			t, ok := v.(T)
			if !ok || uint64(t) > math.MaxInt64 {
				return nil, false
			}
			return int64(t), true
		},
		read: func(v any) (any, readStatus) {
			n, ok := asInt64(v)
			if !ok {
				return nil, readWrongType
			}
			if n < 0 {
				return nil, readOutOfRange
			}
			t := T(n)
			if uint64(t) != uint64(n) {
				return nil, readOutOfRange
			}
			return t, readOK
		},
	}
}

func bigInt(nonNegative bool) converter {
	valid := func(b *big.Int) bool {
		return b.IsInt64() && (!nonNegative || b.Sign() >= 0)
	}
	return converter{
		check: func(v any) bool {
			b, ok := v.(*big.Int)
			return ok && b != nil
		},
		bind: func(v any) (any, bool) {
			b, ok := v.(*big.Int)
			if !ok || b == nil || !valid(b) {
				return nil, false
			}
			return b.Int64(), true
		},
		read: func(v any) (any, readStatus) {
			n, ok := asInt64(v)
			if !ok {
				return nil, readWrongType
			}
			if nonNegative && n < 0 {
				return nil, readOutOfRange
			}
			return big.NewInt(n), readOK
		},
	}
}

func list(elem converter) converter {
	return converter{
		check: func(v any) bool {
			items, ok := v.([]any)
			if !ok {
				return false
			}
			for _, item := range items {
				if !elem.check(item) {
					return false
				}
			}
			return true
		},
		bind: func(v any) (any, bool) {
			items, ok := v.([]any)
			if !ok {
				return nil, false
			}
			out := make([]any, len(items))
			for i, item := range items {
				b, ok := elem.bind(item)
				if !ok {
					return nil, false
				}
				out[i] = b
			}
			return out, true
		},
		read: func(v any) (any, readStatus) {
			items, ok := v.([]any)
			if !ok {
				return nil, readWrongType
			}
			out := make([]any, len(items))
			for i, item := range items {
				r, status := elem.read(item)
				if status != readOK {
					return nil, status
				}
				out[i] = r
			}
			return out, readOK
		},
	}
}

// asInt64 accepts any Go integer the driver (or an echoed parameter map) may
// hold and reports false if it is not an integer or does not fit in int64.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	}
	return 0, false
}
