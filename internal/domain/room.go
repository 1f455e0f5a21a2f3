package domain

import "strings"

// CodeAlphabet leaves out characters that are easy to misread (I, L, O, 0, 1).
const CodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const CodeLength = 6

// RoomCode is a room identifier as stored and compared: trimmed and upper-cased.
type RoomCode string

func NormalizeCode(raw string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(raw)))
}

// Valid reports whether the code has the shape produced by the allocator.
func (c RoomCode) Valid() bool {
	if len(c) != CodeLength {
		return false
	}
	for i := 0; i < len(c); i++ {
		if strings.IndexByte(CodeAlphabet, c[i]) < 0 {
			return false
		}
	}
	return true
}

func (c RoomCode) String() string { return string(c) }
