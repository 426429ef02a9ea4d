package tokenizer

import "fmt"

// Reserved control ids below the byte range.
const (
	bosID = 0
	eosID = 1
	padID = 2

	numSpecial = 3
)

var specialNames = []string{"<|bos|>", "<|eos|>", "<|pad|>"}

// ByteLevel maps each input byte to a single token id offset past the
// reserved control block. It needs no vocabulary files and round-trips
// arbitrary UTF-8 exactly, which makes it a convenient bundled tokenizer
// for a model with a small fixed vocabulary.
type ByteLevel struct {
	addBOS bool
}

// NewByteLevel returns a byte-level tokenizer. When addBOS is set, every
// encoded sequence starts with the beginning-of-sequence id.
func NewByteLevel(addBOS bool) *ByteLevel {
	return &ByteLevel{addBOS: addBOS}
}

// VocabSize reports the total id space: the control block plus one id per
// byte value.
func (t *ByteLevel) VocabSize() int { return numSpecial + 256 }

func (t *ByteLevel) EOSTokenID() int { return eosID }

// Encode converts text into token ids and an all-ones attention mask of the
// same length.
func (t *ByteLevel) Encode(text string) ([]int, []int, error) {
	n := len(text)
	if t.addBOS {
		n++
	}
	ids := make([]int, 0, n)
	if t.addBOS {
		ids = append(ids, bosID)
	}
	for i := 0; i < len(text); i++ {
		ids = append(ids, int(text[i])+numSpecial)
	}
	mask := make([]int, len(ids))
	for i := range mask {
		mask[i] = 1
	}
	return ids, mask, nil
}

// Decode renders token ids back to text. Control tokens are dropped when
// skipSpecial is set and rendered as their placeholder names otherwise.
func (t *ByteLevel) Decode(ids []int, skipSpecial bool) (string, error) {
	out := make([]byte, 0, len(ids))
	for _, id := range ids {
		switch {
		case id >= numSpecial && id < numSpecial+256:
			out = append(out, byte(id-numSpecial))
		case id >= 0 && id < numSpecial:
			if !skipSpecial {
				out = append(out, specialNames[id]...)
			}
		default:
			return "", fmt.Errorf("token id %d out of range", id)
		}
	}
	return string(out), nil
}
