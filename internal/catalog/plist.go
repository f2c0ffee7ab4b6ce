package catalog

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// parsePlistDict extracts the top-level <dict>'s <key>/<string> pairs.
// Non-string values (<true/>, <integer>, nested <dict>/<array>) are read
// as their raw inner text so an Info.plist with a stray non-string field
// still decodes the fields this package actually consumes.
func parsePlistDict(data []byte) (map[string]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	out := make(map[string]string)

	var pendingKey string
	haveKey := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "key" {
				text, err := readCharData(dec)
				if err != nil {
					return nil, err
				}
				pendingKey = text
				haveKey = true
				continue
			}
			if haveKey {
				text, err := readCharData(dec)
				if err != nil {
					return nil, err
				}
				out[pendingKey] = text
				haveKey = false
			}
		}
	}
	return out, nil
}

// readCharData collects character data up to the element's matching end
// tag, so values spanning multiple CharData tokens are joined correctly.
func readCharData(dec *xml.Decoder) (string, error) {
	var sb []byte
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb = append(sb, t...)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return string(sb), nil
			}
			depth--
		}
	}
}
