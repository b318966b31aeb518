package catalog

// Signature is a byte string found in the dictionary of one family of game
// images. Correction is added to the match offset to reach the start of the
// dictionary.
type Signature struct {
	Dictionary Dictionary
	Bytes      []byte
	Correction int
}

// Signatures are scanned in order; the first one found wins.
var Signatures = []Signature{
	{FourLetterUncompressed, []byte("AUTO\x00GO\x00"), 0},
	{ThreeLetterUncompressed, []byte("AUT\x00GO\x00"), 0},
	{FiveLetterUncompressed, []byte("AUTO\x00\x00GO"), 0},
	{FourLetterCompressed, []byte("aUTOgO\x00"), 0},
	{German, []byte("\xc7EHENSTEIGE"), -5},
	{FiveLetterCompressed, []byte("gEHENSTEIGE"), -5}, // Gremlins C64
	{Spanish, []byte("ANDAENTRAVAN"), -8},
	{FiveLetterUncompressed, []byte("*CROSS*RUN\x00\x00"), -11}, // Claymorgue
}

// TI-99/4A images carry a fixed machine-code preamble instead of a
// dictionary signature.
var (
	TI994ASignature = []byte("\xe2\x31\x10\x18\x0c\x07\x03\x00\x4c\x90\x20\x40")

	// TI994APreamble is the offset of the preamble from the baseline.
	TI994APreamble = 0x4c0
	// TI994AHeader is the offset of the data header from the baseline.
	TI994AHeader = 0x8a0
	// TI994AAddressBase is the load address of the baseline in console memory.
	TI994AAddressBase = 0x380
)
