package toy

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

var defaultPrecedence = map[string]int{
	"-": 1,
	"+": 2,
	"/": 3,
	"*": 4,
}

// PrecedenceTable ranks single-character binary operators. Higher ranks bind
// tighter. It is read-only once built.
type PrecedenceTable struct {
	ranks map[rune]int
}

func DefaultPrecedence() *PrecedenceTable {
	table, _ := NewPrecedenceTable(defaultPrecedence)
	return table
}

func NewPrecedenceTable(ranks map[string]int) (*PrecedenceTable, error) {
	table := &PrecedenceTable{
		ranks: make(map[rune]int, len(ranks)),
	}

	for op, rank := range ranks {
		r, size := utf8.DecodeRuneInString(op)
		if size == 0 || size != len(op) {
			return nil, fmt.Errorf("operator %q must be a single character", op)
		}

		if r == '(' || r == ')' || r == ',' || r == ';' || r == commentStart ||
			unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return nil, fmt.Errorf("%q is reserved and cannot be an operator", op)
		}

		table.ranks[r] = rank
	}

	return table, nil
}

// Lookup returns the rank of tok as a binary operator, or -1 if it is not one.
func (t *PrecedenceTable) Lookup(tok Token) int {
	if tok.Typ != TokenPunct {
		return -1
	}

	r, _ := utf8.DecodeRuneInString(tok.Value)
	rank, ok := t.ranks[r]
	if !ok || rank <= 0 {
		return -1
	}

	return rank
}
