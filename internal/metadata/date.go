package metadata

import (
	"time"
)

const (
	pdfDateLayout = "20060102150405"
	isoLocal      = "2006-01-02T15:04:05"

	// "D:" in front, "+HH'mm'" behind the 14 digit core
	pdfDatePrefixLen = 2
	pdfDateSuffixLen = 7
)

// ParseDate reads a PDF date such as "D:20230415103000+02'00'". Only the
// 14 digit core is used and it is read as local time; the zone suffix is
// ignored. Malformed input reports false.
func ParseDate(s string) (time.Time, bool) {
	if len(s) < pdfDatePrefixLen+len(pdfDateLayout)+pdfDateSuffixLen {
		return time.Time{}, false
	}
	core := s[pdfDatePrefixLen : len(s)-pdfDateSuffixLen]
	if len(core) != len(pdfDateLayout) {
		return time.Time{}, false
	}
	for i := 0; i < len(core); i++ {
		if core[i] < '0' || core[i] > '9' {
			return time.Time{}, false
		}
	}

	t, err := time.ParseInLocation(pdfDateLayout, core, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ISO-8601 without a zone offset
func FormatDate(t time.Time) string {
	return t.Format(isoLocal)
}
