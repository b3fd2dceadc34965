package generate

import (
	"fmt"
	"os"

	"github.com/zhven/bytefit/internal/sizing"
)

// PadReport describes one padding pass over a file.
type PadReport struct {
	Before int64 `json:"before"`
	After  int64 `json:"after"`
	Padded int64 `json:"padded"`
}

// PadToSize grows the file at path to target bytes by appending zero bytes
// in bounded chunks. A file already at or above target is left untouched
// and the report shows zero padded bytes.
func PadToSize(path string, target int64) (PadReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return PadReport{}, err
	}

	report := PadReport{Before: info.Size(), After: info.Size()}
	padding := target - info.Size()
	if padding <= 0 {
		return report, nil
	}

	if err := appendZeros(path, padding); err != nil {
		return report, err
	}
	report.After = target
	report.Padded = padding
	return report, nil
}

func appendZeros(path string, n int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	buf := make([]byte, min(n, int64(sizing.DefaultChunkBytes)))
	for n > 0 {
		writeLen := int64(len(buf))
		if n < writeLen {
			writeLen = n
		}
		if _, err := f.Write(buf[:writeLen]); err != nil {
			_ = f.Close()
			return fmt.Errorf("append padding: %w", err)
		}
		n -= writeLen
	}
	return f.Close()
}
