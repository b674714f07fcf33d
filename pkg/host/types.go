// Package host models the kdb+ value space that avro data is converted to and from.
//
// Every value reports a kdb+ type tag. Atoms report the negated tag of the
// matching vector, so an int atom is -6 and an int vector is 6.
package host

import "fmt"

// Type is a kdb+ type tag.
type Type int8

// kdb+ type tags.
const (
	Mixed    Type = 0
	KB       Type = 1   // boolean
	UU       Type = 2   // guid
	KG       Type = 4   // byte
	KH       Type = 5   // short
	KI       Type = 6   // int
	KJ       Type = 7   // long
	KE       Type = 8   // real
	KF       Type = 9   // float
	KC       Type = 10  // char
	KS       Type = 11  // symbol
	KP       Type = 12  // timestamp
	KD       Type = 14  // date
	KN       Type = 16  // timespan
	KT       Type = 19  // time
	XD       Type = 99  // dictionary
	Identity Type = 101 // generic null
)

var typeNames = map[Type]string{
	Mixed:    "mixed",
	KB:       "boolean",
	UU:       "guid",
	KG:       "byte",
	KH:       "short",
	KI:       "int",
	KJ:       "long",
	KE:       "real",
	KF:       "float",
	KC:       "char",
	KS:       "symbol",
	KP:       "timestamp",
	KD:       "date",
	KN:       "timespan",
	KT:       "time",
	XD:       "dictionary",
	Identity: "identity",
}

// Atom returns the atom tag for a vector tag.
func (t Type) Atom() Type {
	if t > 0 && t < XD {
		return -t
	}
	return t
}

// IsAtom reports whether t is an atom tag.
func (t Type) IsAtom() bool { return t < 0 }

func (t Type) String() string {
	base := t
	if base < 0 {
		base = -base
	}
	name, ok := typeNames[base]
	if !ok {
		return fmt.Sprintf("%dh", int(t))
	}
	if t < 0 {
		return name + " atom"
	}
	return name
}

// Value is any kdb+ value.
type Value interface {
	Type() Type
}

// Len returns the item count of a vector, list or dictionary and 1 for atoms.
func Len(v Value) int {
	switch x := v.(type) {
	case List:
		return len(x)
	case Bools:
		return len(x)
	case GUIDs:
		return len(x)
	case Bytes:
		return len(x)
	case Shorts:
		return len(x)
	case Ints:
		return len(x)
	case Longs:
		return len(x)
	case Reals:
		return len(x)
	case Floats:
		return len(x)
	case Chars:
		return len(x)
	case Symbols:
		return len(x)
	case Timestamps:
		return len(x)
	case Dates:
		return len(x)
	case Timespans:
		return len(x)
	case Times:
		return len(x)
	case Dict:
		return len(x.Keys)
	case nil:
		return 0
	default:
		return 1
	}
}
