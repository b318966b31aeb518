package loader

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tatianab/scottfree/internal/binread"
	"github.com/tatianab/scottfree/internal/catalog"
	"github.com/tatianab/scottfree/internal/gameerr"
)

// Detect scans data for a dialect signature. For dictionary signatures it
// returns the offset of the start of the dictionary; for TI-99/4A images it
// returns the baseline of the image.
func Detect(data []byte) (catalog.Dictionary, int, error) {
	if off := binread.FindSignature(data, catalog.TI994ASignature, 0); off >= 0 {
		baseline := off - catalog.TI994APreamble
		log.Debugf("loader: TI-99/4A preamble at %#x, baseline %#x", off, baseline)
		if baseline < 0 {
			return catalog.TI994A, 0, errors.Wrapf(gameerr.ErrOffsetBeyondFile, "TI-99/4A baseline %d", baseline)
		}
		return catalog.TI994A, baseline, nil
	}

	for _, sig := range catalog.Signatures {
		off := binread.FindSignature(data, sig.Bytes, 0)
		if off < 0 {
			continue
		}
		start := off + sig.Correction
		log.Debugf("loader: %s signature at %#x, dictionary at %#x", sig.Dictionary, off, start)
		if start < 0 {
			return sig.Dictionary, 0, errors.Wrapf(gameerr.ErrOffsetBeyondFile, "dictionary start %d", start)
		}
		return sig.Dictionary, start, nil
	}
	return catalog.NotAGame, 0, errors.Wrapf(gameerr.ErrSignatureNotFound, "scanned %d bytes", len(data))
}
