package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/pdftext"
	"github.com/spigell/cv-screener/internal/recruiting"
	"go.uber.org/zap"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Print the text of a CV, using OCR for pages without a text layer",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		extract(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().Bool("fields", false, "also extract the contact fields with the ai service")
}

func extract(cmd *cobra.Command, path string) {
	ctx := context.Background()

	log := newLogger()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal("reading a file", zap.String(logger.FieldFileName, path), zap.Error(err))
	}
	if err := recruiting.ValidatePDF(filepath.Base(path), data); err != nil {
		log.Fatal("invalid file", zap.String(logger.FieldFileName, path), zap.Error(err))
	}

	withFields, _ := cmd.Flags().GetBool("fields")
	if !withFields {
		config, err := getConfig()
		if err != nil {
			log.Fatal("getting a config", zap.Error(err))
		}
		text, err := newExtractor(config.Extraction, log).Extract(ctx, data)
		if err != nil {
			log.Fatal("extracting text", zap.Error(err))
		}
		fmt.Println(text)
		return
	}

	a := setup(ctx, log)
	defer a.Close()

	text, err := a.extractor.Extract(ctx, data)
	if err != nil {
		log.Fatal("extracting text", zap.Error(err))
	}
	if err := pdftext.Usable(text); err != nil {
		log.Fatal("extracted text is not usable", zap.Error(err))
	}

	fields, err := a.fields.ExtractFields(ctx, text)
	if err != nil {
		log.Fatal("extracting contact fields", zap.Error(err))
	}

	pretty, _ := json.MarshalIndent(struct {
		Fields any    `json:"fields"`
		Text   string `json:"text"`
	}{Fields: fields, Text: text}, "", "  ")
	fmt.Println(string(pretty))
}
