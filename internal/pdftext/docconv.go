package pdftext

import (
	"bytes"
	"context"
	"fmt"

	"code.sajari.com/docconv"
)

// DocconvTextLayer reads the text layer with docconv, which shells out to pdftotext.
type DocconvTextLayer struct{}

func (DocconvTextLayer) Text(ctx context.Context, pdf []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, _, err := docconv.ConvertPDF(bytes.NewReader(pdf))
	if err != nil {
		return "", fmt.Errorf("docconv: %w", err)
	}
	return body, nil
}
