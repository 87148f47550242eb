package transfer

import (
	"fmt"

	"github.com/pkg/errors"
)

const maxNoteLen = 16

// BuildMemo encodes the transfer metadata memo attached to every outgoing
// transfer:
//
//	fuego|<ASSET>|f:<from>|t:<to>|a:<baseUnits>|yid:<yid>|n:<note>
//
// Notes longer than 16 characters are rejected rather than truncated.
func BuildMemo(symbol, from, to string, baseUnits uint64, yid, note string) (string, error) {
	if len(note) > maxNoteLen {
		return "", errors.Errorf("Notes must be 16 characters or less, got %d", len(note))
	}

	return fmt.Sprintf(
		"fuego|%s|f:%s|t:%s|a:%d|yid:%s|n:%s",
		symbol, from, to, baseUnits, yid, note,
	), nil
}
