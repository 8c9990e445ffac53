package qualify

import (
	"context"
	"fmt"
	"strings"

	"github.com/millemail/prospector/pkg/anthropic"
)

// b2cPrompt is the fixed instruction set for the B2B/B2C call. The
// reply is reduced to a binary decision by checking for the literal
// token "B2C".
const b2cPrompt = `Analyze this company and determine if it's B2B or B2C.

%s

B2B = sells products/services to OTHER BUSINESSES (software, consulting, enterprise tools, professional services, etc.)
B2C = sells products/services directly to CONSUMERS (retail, restaurants, consumer apps, e-commerce to individuals, etc.)

Important: Some companies do BOTH (like Amazon, Apple). If the company primarily serves businesses OR has significant B2B operations, classify as B2B.

Respond with ONLY one word: B2B or B2C`

// maxDescriptionLen caps the company description passed to the model.
const maxDescriptionLen = 500

// Verdict is the outcome of a B2C classification.
type Verdict struct {
	IsB2C  bool
	Reason string
}

// B2CClassifier decides whether a company sells to consumers. The gate
// is deliberately asymmetric: no data and call failures both classify
// as B2B, because losing a valid B2B lead costs more than letting an
// occasional B2C lead through.
type B2CClassifier struct {
	client anthropic.Client
	model  string
}

// NewB2CClassifier creates a classifier backed by the given model.
func NewB2CClassifier(client anthropic.Client, modelID string) *B2CClassifier {
	return &B2CClassifier{client: client, model: modelID}
}

// Classify returns a Verdict for the company. It never returns an
// error; failure modes are folded into a fail-open Verdict.
func (c *B2CClassifier) Classify(ctx context.Context, companyName, industry, description string) Verdict {
	if industry == "" && description == "" {
		return Verdict{IsB2C: false, Reason: "No data available"}
	}

	parts := []string{"Company: " + companyName}
	if industry != "" {
		parts = append(parts, "Industry: "+industry)
	}
	if description != "" {
		if len(description) > maxDescriptionLen {
			description = description[:maxDescriptionLen]
		}
		parts = append(parts, "Description: "+description)
	}

	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: 10,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(b2cPrompt, strings.Join(parts, "\n"))},
		},
	})
	if err != nil {
		return Verdict{IsB2C: false, Reason: fmt.Sprintf("Error: %v", err)}
	}

	var reply string
	for _, block := range resp.Content {
		if block.Type == "text" {
			reply += block.Text
		}
	}
	reply = strings.ToUpper(strings.TrimSpace(reply))

	return Verdict{
		IsB2C:  strings.Contains(reply, "B2C"),
		Reason: "AI classification",
	}
}
