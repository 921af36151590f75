package pdftext

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const pdfDataURLPrefix = "data:application/pdf;base64,"

// EncodeDataURL stores a PDF the way the candidates table keeps it.
func EncodeDataURL(pdf []byte) string {
	return pdfDataURLPrefix + base64.StdEncoding.EncodeToString(pdf)
}

// DecodeDataURL accepts a base64 data URL or bare base64 and returns the raw bytes.
func DecodeDataURL(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("no file stored")
	}

	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, ",")
		if idx == -1 {
			return nil, fmt.Errorf("malformed data url")
		}
		s = s[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64 file: %w", err)
	}
	return data, nil
}
