package host

// Atoms.
type (
	Bool      bool
	GUID      [16]byte
	Byte      byte
	Short     int16
	Int       int32
	Long      int64
	Real      float32
	Float     float64
	Symbol    string
	Timestamp int64 // nanoseconds since 2000.01.01
	Date      int32 // days since 2000.01.01
	Timespan  int64 // nanoseconds
	Time      int32 // milliseconds since midnight
)

// Null is the generic null (::).
type Null struct{}

func (Bool) Type() Type      { return -KB }
func (GUID) Type() Type      { return -UU }
func (Byte) Type() Type      { return -KG }
func (Short) Type() Type     { return -KH }
func (Int) Type() Type       { return -KI }
func (Long) Type() Type      { return -KJ }
func (Real) Type() Type      { return -KE }
func (Float) Type() Type     { return -KF }
func (Symbol) Type() Type    { return -KS }
func (Timestamp) Type() Type { return -KP }
func (Date) Type() Type      { return -KD }
func (Timespan) Type() Type  { return -KN }
func (Time) Type() Type      { return -KT }
func (Null) Type() Type      { return Identity }
