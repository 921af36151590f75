package gemini

import (
	"embed"
	"strings"
)

//go:embed prompts/*.md
var promptFS embed.FS

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	systemPrompt        = mustRead(promptFS, "prompts/system.md")
	extractFieldsPrompt = mustRead(promptFS, "prompts/extract_fields.md")
	scorePrompt         = mustRead(promptFS, "prompts/score.md")
	draftPostingPrompt  = mustRead(promptFS, "prompts/draft_posting.md")

	fieldsSchema       = mustRead(schemaFS, "schemas/fields.json")
	scoreSchema        = mustRead(schemaFS, "schemas/score.json")
	draftPostingSchema = mustRead(schemaFS, "schemas/draft_posting.json")
)

func mustRead(fs embed.FS, name string) string {
	data, err := fs.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// render replaces {{KEY}} placeholders in template.
func render(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
