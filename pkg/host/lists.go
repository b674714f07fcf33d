package host

// Vectors.
type (
	Bools      []bool
	GUIDs      []GUID
	Bytes      []byte
	Shorts     []int16
	Ints       []int32
	Longs      []int64
	Reals      []float32
	Floats     []float64
	Chars      string
	Symbols    []string
	Timestamps []int64
	Dates      []int32
	Timespans  []int64
	Times      []int32
)

func (Bools) Type() Type      { return KB }
func (GUIDs) Type() Type      { return UU }
func (Bytes) Type() Type      { return KG }
func (Shorts) Type() Type     { return KH }
func (Ints) Type() Type       { return KI }
func (Longs) Type() Type      { return KJ }
func (Reals) Type() Type      { return KE }
func (Floats) Type() Type     { return KF }
func (Chars) Type() Type      { return KC }
func (Symbols) Type() Type    { return KS }
func (Timestamps) Type() Type { return KP }
func (Dates) Type() Type      { return KD }
func (Timespans) Type() Type  { return KN }
func (Times) Type() Type      { return KT }

// List is a mixed list.
type List []Value

func (List) Type() Type { return Mixed }

// Dict maps symbol keys to the items of Values. Values is a List for records
// and a typed vector or List for avro maps.
type Dict struct {
	Keys   Symbols
	Values Value
}

func (Dict) Type() Type { return XD }

// Item returns the value stored under key. Vector values are returned as atoms.
func (d Dict) Item(key string) (Value, bool) {
	for i, k := range d.Keys {
		if k == key {
			return Index(d.Values, i), true
		}
	}
	return nil, false
}

// Index returns item i of a vector or list. Vector items are returned as atoms.
func Index(v Value, i int) Value {
	switch x := v.(type) {
	case List:
		return x[i]
	case Bools:
		return Bool(x[i])
	case GUIDs:
		return x[i]
	case Bytes:
		return Byte(x[i])
	case Shorts:
		return Short(x[i])
	case Ints:
		return Int(x[i])
	case Longs:
		return Long(x[i])
	case Reals:
		return Real(x[i])
	case Floats:
		return Float(x[i])
	case Symbols:
		return Symbol(x[i])
	case Timestamps:
		return Timestamp(x[i])
	case Dates:
		return Date(x[i])
	case Timespans:
		return Timespan(x[i])
	case Times:
		return Time(x[i])
	}
	return nil
}

// NewRecord builds a record dictionary. values[i] belongs to keys[i].
func NewRecord(keys []string, values ...Value) Dict {
	return Dict{Keys: Symbols(keys), Values: List(values)}
}

// NewUnion builds the (branch; payload) tuple of an avro union.
func NewUnion(branch int16, payload Value) List {
	return List{Short(branch), payload}
}

// NewDuration builds the (months; days; millis) int vector of an avro duration.
func NewDuration(months, days, millis int32) Ints {
	return Ints{months, days, millis}
}
