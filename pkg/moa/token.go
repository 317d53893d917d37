package moa

// Token is a zero-copy view of input[start:end]. A matcher keeps one Token
// and re-points it on every step; it is only valid while the input it views
// is alive and unchanged.
type Token struct {
	input []rune
	start int
	end   int
}

// NewToken returns a token viewing input[start:end].
func NewToken(input []rune, start, end int) *Token {
	t := &Token{}
	t.Update(input, start, end)
	return t
}

// Update re-points the token at input[start:end].
func (t *Token) Update(input []rune, start, end int) {
	t.input, t.start, t.end = input, start, end
}

// Reset makes the token the empty span at pos.
func (t *Token) Reset(pos int) {
	t.start, t.end = pos, pos
}

// Len is the token width in code points.
func (t *Token) Len() int { return t.end - t.start }

// Start is the position of the token in the input.
func (t *Token) Start() int { return t.start }

// End is the position just after the token.
func (t *Token) End() int { return t.end }

// At returns the i-th code point of the token.
func (t *Token) At(i int) rune { return t.input[t.start+i] }

// Input returns the whole viewed sequence.
func (t *Token) Input() []rune { return t.input }

// Runes returns the viewed code points without copying.
func (t *Token) Runes() []rune { return t.input[t.start:t.end] }

// Equal reports whether the token holds exactly the code points of rs.
func (t *Token) Equal(rs []rune) bool {
	if t.Len() != len(rs) {
		return false
	}
	for i, r := range rs {
		if t.input[t.start+i] != r {
			return false
		}
	}
	return true
}

func (t *Token) String() string { return string(t.Runes()) }
