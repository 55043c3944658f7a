package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"scanbook/scan-csv/internal/categories"
	"scanbook/scan-csv/internal/logging"
)

// GeminiClient implements Client against the Google Gemini API.
type GeminiClient struct {
	client      *genai.Client
	model       *genai.GenerativeModel
	instruction string
	timeout     time.Duration
	log         logging.Logger
}

// NewGeminiClient creates a Gemini-backed extraction client. The model
// is pinned to JSON output with the journal-record array schema so the
// response needs no free-text scraping in the happy path. timeout, when
// positive, bounds each individual request.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, timeout time.Duration, cats categories.Set, log logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = recordArraySchema()

	return &GeminiClient{
		client:      client,
		model:       model,
		instruction: BuildInstruction(cats),
		timeout:     timeout,
		log:         log,
	}, nil
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ExtractRecords sends one image with the fixed instruction and
// returns the raw response text.
func (c *GeminiClient) ExtractRecords(ctx context.Context, image []byte, mimeType string) (string, error) {
	c.log.Debug("Requesting extraction", logging.F("media_type", mimeType), logging.F("bytes", len(image)))

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.model.GenerateContent(ctx,
		genai.Text(c.instruction),
		genai.Blob{MIMEType: mimeType, Data: image},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini generate: empty response")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

// recordArraySchema is the rigid output contract: an array of record
// objects with required text fields and nullable optionals.
func recordArraySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"date":          {Type: genai.TypeString, Description: "Transaction date as YYYY/MM/DD"},
				"description":   {Type: genai.TypeString, Description: "Narrative for the line"},
				"debitAccount":  {Type: genai.TypeString, Description: "Debit-side category label"},
				"creditAccount": {Type: genai.TypeString, Description: "Credit-side category label"},
				"debitAmount":   {Type: genai.TypeNumber, Nullable: true},
				"debitTax":      {Type: genai.TypeString, Nullable: true},
				"creditAmount":  {Type: genai.TypeNumber, Nullable: true},
				"creditTax":     {Type: genai.TypeString, Nullable: true},
			},
			Required: []string{"date", "description", "debitAccount", "creditAccount"},
		},
	}
}

// BuildInstruction renders the fixed natural-language instruction sent
// with every image, including the category label hints.
func BuildInstruction(cats categories.Set) string {
	var b strings.Builder
	b.WriteString("You are a bookkeeping assistant. The attached image is one page of a scanned bank statement.\n")
	b.WriteString("Extract every transaction line as a double-entry bookkeeping record and answer with a JSON array only.\n")
	b.WriteString("Each element must have: date (YYYY/MM/DD), description, debitAccount, creditAccount,\n")
	b.WriteString("and may have: debitAmount, debitTax, creditAmount, creditTax (null when not applicable).\n")
	b.WriteString("Amounts are plain non-negative numbers without currency symbols or thousands separators.\n")

	b.WriteString("Prefer these debit category labels: ")
	b.WriteString(strings.Join(cats.Debit, ", "))
	b.WriteString(".\nPrefer these credit category labels: ")
	b.WriteString(strings.Join(cats.Credit, ", "))
	b.WriteString(".\nPrefer these tax category labels: ")
	b.WriteString(strings.Join(cats.Tax, ", "))
	b.WriteString(".\nIf the page contains no transactions, answer with an empty JSON array.")

	return b.String()
}
