package ledger

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/dkeye/signalhub/internal/domain"
)

const DefaultCodeAttempts = 20

var alphabetSize = big.NewInt(int64(len(domain.CodeAlphabet)))

// randomCode draws CodeLength characters uniformly from the alphabet.
func randomCode(src io.Reader) (domain.RoomCode, error) {
	b := make([]byte, domain.CodeLength)
	for i := range b {
		n, err := rand.Int(src, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		b[i] = domain.CodeAlphabet[n.Int64()]
	}
	return domain.RoomCode(b), nil
}

// allocateCode rejection-samples codes until one is not taken.
func allocateCode(src io.Reader, attempts int, taken func(domain.RoomCode) bool) (domain.RoomCode, error) {
	for attempt := 1; attempt <= attempts; attempt++ {
		code, err := randomCode(src)
		if err != nil {
			return "", err
		}
		if !taken(code) {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrAllocationExhausted, attempts)
}
