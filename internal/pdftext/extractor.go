// Package pdftext turns CV PDFs into plain text. The embedded text layer is
// preferred; pages without one are rendered and passed through OCR.
package pdftext

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/cv-screener/internal/utils"
	"go.uber.org/zap"
)

const (
	DefaultMinNativeLength = 100
	DefaultRenderScale     = 2.0
	DefaultLanguage        = "spa"

	// MinUsableLength is the shortest extracted text worth sending to the AI service.
	MinUsableLength = 50

	pageMarker = "\n--- Page %d ---\n"
)

// TextLayer reads the text embedded in a PDF.
type TextLayer interface {
	Text(ctx context.Context, pdf []byte) (string, error)
}

// Rasterizer renders every page of a PDF to an image, in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte, scale float64) ([][]byte, error)
}

// Recognizer runs optical character recognition over a single page image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, language string) (string, error)
}

type Config struct {
	MinNativeLength int     `mapstructure:"min-native-length"`
	RenderScale     float64 `mapstructure:"render-scale"`
	OCRLanguage     string  `mapstructure:"ocr-language"`
}

type Extractor struct {
	native     TextLayer
	rasterizer Rasterizer
	ocr        Recognizer
	cfg        Config
	logger     *zap.Logger
}

func New(native TextLayer, rasterizer Rasterizer, ocr Recognizer, cfg Config, logger *zap.Logger) *Extractor {
	if cfg.MinNativeLength <= 0 {
		cfg.MinNativeLength = DefaultMinNativeLength
	}
	if cfg.RenderScale <= 0 {
		cfg.RenderScale = DefaultRenderScale
	}
	if strings.TrimSpace(cfg.OCRLanguage) == "" {
		cfg.OCRLanguage = DefaultLanguage
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{
		native:     native,
		rasterizer: rasterizer,
		ocr:        ocr,
		cfg:        cfg,
		logger:     logger,
	}
}

// Extract returns the text of pdf. It fails with *ExtractionError when neither
// the text layer nor OCR produce a result.
func (e *Extractor) Extract(ctx context.Context, pdf []byte) (string, error) {
	text, err := e.native.Text(ctx, pdf)
	if err != nil {
		e.logger.Warn("reading the text layer failed, falling back to OCR", zap.Error(err))
	} else {
		text = normalize(text)
		if utils.Len(text) > e.cfg.MinNativeLength {
			e.logger.Debug("using the embedded text layer", zap.Int("length", utils.Len(text)))
			return text, nil
		}
		e.logger.Debug("text layer too short, falling back to OCR",
			zap.Int("length", utils.Len(text)),
			zap.Int("threshold", e.cfg.MinNativeLength),
		)
	}

	text, err = e.recognize(ctx, pdf)
	if err != nil {
		return "", &ExtractionError{Reason: ReasonUnreadable, Err: err}
	}

	return text, nil
}

func (e *Extractor) recognize(ctx context.Context, pdf []byte) (string, error) {
	pages, err := e.rasterizer.Rasterize(ctx, pdf, e.cfg.RenderScale)
	if err != nil {
		return "", fmt.Errorf("render pages: %w", err)
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("render pages: document has no pages")
	}

	var b strings.Builder
	for i, page := range pages {
		text, err := e.ocr.Recognize(ctx, page, e.cfg.OCRLanguage)
		if err != nil {
			return "", fmt.Errorf("ocr page %d: %w", i+1, err)
		}
		fmt.Fprintf(&b, pageMarker, i+1)
		b.WriteString(utils.StripNulls(text))
	}

	e.logger.Debug("ocr finished", zap.Int("pages", len(pages)), zap.String("language", e.cfg.OCRLanguage))

	return strings.TrimSpace(b.String()), nil
}

// Usable checks that text is long enough to be analyzed.
func Usable(text string) error {
	if utils.Len(strings.TrimSpace(text)) < MinUsableLength {
		return &ExtractionError{Reason: ReasonEmpty}
	}
	return nil
}

// normalize collapses whitespace runs into single spaces and drops NUL characters.
func normalize(text string) string {
	return strings.Join(strings.Fields(utils.StripNulls(text)), " ")
}
