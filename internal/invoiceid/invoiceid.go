// Package invoiceid generates invoice identifiers of the form
// INV-YYYYMMDDHHMMSS-xxxx, where xxxx is a random lower-case alphanumeric
// suffix. The timestamp gives ordering at second resolution; the suffix
// keeps two invoices created within the same second distinct.
package invoiceid

import (
	"crypto/rand"
	"fmt"
	"time"
)

const suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// New returns a fresh invoice id based on the current wall clock.
func New() string {
	return At(time.Now())
}

// At returns an invoice id for the given timestamp.
func At(now time.Time) string {
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102150405"), randomSuffix(4))
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand should not fail; fall back to nanosecond bits so ids
		// stay distinct within a second even then.
		nano := time.Now().UnixNano()
		for i := range buf {
			buf[i] = suffixAlphabet[nano%int64(len(suffixAlphabet))]
			nano /= int64(len(suffixAlphabet))
		}
		return string(buf)
	}
	for i := range buf {
		buf[i] = suffixAlphabet[int(buf[i])%len(suffixAlphabet)]
	}
	return string(buf)
}
