package export

import (
	"encoding/csv"
	"io"
	"strings"
	"time"
	"unicode"
)

const (
	bom             = "\ufeff"
	DefaultFilename = "transactions-export"
)

// WriteCSV writes p as UTF-8 CSV prefixed with a byte order mark.
func WriteCSV(w io.Writer, p *Projection) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(p.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(p.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// Filename builds "<base>-<YYYY-MM-DD>.csv". Characters outside letters,
// digits, dash, underscore and dot are replaced so the name is safe inside
// a Content-Disposition header.
func Filename(base string, now time.Time) string {
	base = strings.Map(func(r rune) rune {
		switch {
		case r == '-' || r == '_' || r == '.':
			return r
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(base))
	base = strings.Trim(base, "._")
	if base == "" {
		base = DefaultFilename
	}
	return base + "-" + now.Format(time.DateOnly) + ".csv"
}
