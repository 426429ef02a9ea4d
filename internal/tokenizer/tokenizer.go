package tokenizer

// Tokenizer is the text to token-id boundary used by the decode loop.
// Encode returns the token ids for a prompt together with an attention mask
// of the same length. Decode renders ids back to text; skipSpecial drops
// control tokens from the output.
type Tokenizer interface {
	Encode(text string) (ids []int, mask []int, err error)
	Decode(ids []int, skipSpecial bool) (string, error)
	EOSTokenID() int
}
