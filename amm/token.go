package amm

import "fmt"

// Token selects one of the two sides of a pool.
type Token uint8

const (
	Token0 Token = 0
	Token1 Token = 1
)

// Valid reports whether the selector refers to an actual pool side.
func (t Token) Valid() bool {
	return t == Token0 || t == Token1
}

// Other returns the opposite side of the pair.
func (t Token) Other() Token {
	if t == Token0 {
		return Token1
	}
	return Token0
}

func (t Token) String() string {
	switch t {
	case Token0:
		return "token0"
	case Token1:
		return "token1"
	default:
		return fmt.Sprintf("token(%d)", uint8(t))
	}
}
