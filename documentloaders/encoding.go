package documentloaders

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

var knownEncodings = map[string]encoding.Encoding{
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin-1":      charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"tis-620":      charmap.Windows874,
	"windows-874":  charmap.Windows874,
}

func isUTF8(name string) bool {
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		return true
	}
	return false
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	if enc, ok := knownEncodings[strings.ToLower(name)]; ok {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %q is not supported", name)
	}
	return enc, nil
}

// decode tries each encoding in order and returns the first clean decode
// together with the name of the encoding that produced it. A decode that
// yields replacement characters counts as a failure.
func decode(raw []byte, encodings []string) (string, string, error) {
	var lastErr error
	for _, name := range encodings {
		if isUTF8(name) {
			if utf8.Valid(raw) {
				return string(raw), name, nil
			}
			lastErr = fmt.Errorf("invalid %s", name)
			continue
		}

		enc, err := lookupEncoding(name)
		if err != nil {
			lastErr = err
			continue
		}
		out, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			lastErr = err
			continue
		}
		if strings.ContainsRune(string(out), utf8.RuneError) {
			lastErr = fmt.Errorf("%s produced replacement characters", name)
			continue
		}
		return string(out), name, nil
	}

	if lastErr != nil {
		return "", "", fmt.Errorf("%w (tried %s): %w", ErrUndecodable, strings.Join(encodings, ", "), lastErr)
	}
	return "", "", ErrUndecodable
}
