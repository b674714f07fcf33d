package host

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// NewDecimal builds the (precision; scale; bytes) tuple of an avro decimal.
// The unscaled value is stored as big-endian two's complement.
func NewDecimal(d decimal.Decimal, precision, scale int32) List {
	unscaled := d.Shift(scale).BigInt()
	return List{Int(precision), Int(scale), Bytes(twosComplement(unscaled))}
}

// DecimalOf reads a (precision; scale; bytes) tuple back into a decimal.
func DecimalOf(v Value) (decimal.Decimal, error) {
	l, ok := v.(List)
	if !ok || len(l) != 3 {
		return decimal.Decimal{}, fmt.Errorf("decimal expected a 3 item mixed list, got %s", typeOf(v))
	}
	scale, ok := l[1].(Int)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("decimal scale expected int atom, got %s", typeOf(l[1]))
	}
	raw, ok := l[2].(Bytes)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("decimal data expected byte vector, got %s", typeOf(l[2]))
	}
	return decimal.NewFromBigInt(fromTwosComplement(raw), -int32(scale)), nil
}

func twosComplement(n *big.Int) []byte {
	switch n.Sign() {
	case 0:
		return []byte{0}
	case 1:
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	// 2^(8*width) + n, then drop redundant sign bytes.
	abs := new(big.Int).Neg(n)
	width := len(abs.Bytes()) + 1
	mod := new(big.Int).Lsh(big.NewInt(1), uint(width*8))
	b := new(big.Int).Add(mod, n).Bytes()
	for len(b) > 1 && b[0] == 0xff && b[1]&0x80 != 0 {
		b = b[1:]
	}
	return b
}

func fromTwosComplement(b []byte) *big.Int {
	n := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
	}
	return n
}

func typeOf(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.Type().String()
}
