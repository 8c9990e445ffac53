package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/millemail/prospector/internal/model"
	"github.com/millemail/prospector/pkg/anthropic"
)

// sequencePrompt asks for a three-email French cold sequence keyed on
// the hiring signal. The reply must be a bare JSON object so it can be
// decoded straight into a Sequence.
const sequencePrompt = `You write cold email sequences for MilleMail, an agency that builds outbound email infrastructure for B2B companies.

Prospect:
- Company: %s
- They are hiring: %s
%s
The hiring signal matters: a company recruiting for this role is investing in growth and needs more pipeline, which is exactly what outbound delivers.

Write a 3-email French cold sequence. Tone: direct, concrete, no marketing fluff. Each email under 120 words.

Respond with ONLY a JSON object, no surrounding text:
{
  "subject_line": "...",
  "email_1": "...",
  "email_1_ps": "...",
  "email_2": "...",
  "email_3": "..."
}`

// Sequencer generates the per-lead email sequence.
type Sequencer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewSequencer creates a Sequencer using the given model.
func NewSequencer(client anthropic.Client, modelID string, maxTokens int64) *Sequencer {
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	return &Sequencer{client: client, model: modelID, maxTokens: maxTokens}
}

// Generate returns a sequence for the lead. It never fails the lead:
// a call error or an unparseable reply falls back to the static
// spintax sequence.
func (s *Sequencer) Generate(ctx context.Context, lead model.Lead) model.Sequence {
	var extra string
	if lead.Title != "" {
		extra = fmt.Sprintf("- Contact: %s %s, %s\n", lead.FirstName, lead.LastName, lead.Title)
	}
	prompt := fmt.Sprintf(sequencePrompt, lead.CompanyName, lead.JobTitle, extra)

	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		zap.L().Warn("sequence generation failed, using fallback",
			zap.String("company", lead.CompanyName),
			zap.Error(err),
		)
		return FallbackSequence(lead)
	}
	resp.Usage.LogCost(s.model, "sequence")

	seq, err := parseSequence(resp.Text())
	if err != nil {
		zap.L().Warn("sequence reply unparseable, using fallback",
			zap.String("company", lead.CompanyName),
			zap.Error(err),
		)
		return FallbackSequence(lead)
	}
	return seq
}

// parseSequence decodes the model reply. Models occasionally wrap the
// JSON in prose or a code fence, so a direct decode failure falls back
// to re-extracting the outermost {...} block before giving up.
func parseSequence(reply string) (model.Sequence, error) {
	reply = strings.TrimSpace(reply)

	var seq model.Sequence
	if err := json.Unmarshal([]byte(reply), &seq); err == nil && seq.Email1 != "" {
		return seq, nil
	}

	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end <= start {
		return model.Sequence{}, fmt.Errorf("pipeline: no JSON object in reply")
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &seq); err != nil {
		return model.Sequence{}, fmt.Errorf("pipeline: decode sequence: %w", err)
	}
	if seq.Email1 == "" {
		return model.Sequence{}, fmt.Errorf("pipeline: sequence missing email_1")
	}
	return seq, nil
}

// FallbackSequence is the static spintax sequence used when generation
// fails. Spintax variants keep the copy from being byte-identical
// across a batch.
func FallbackSequence(lead model.Lead) model.Sequence {
	company := lead.CompanyName
	role := lead.JobTitle
	if role == "" {
		role = "un profil commercial"
	}
	return model.Sequence{
		SubjectLine: fmt.Sprintf("{Question rapide|Idée pour %s|%s x MilleMail}", company, company),
		Email1: fmt.Sprintf("{Bonjour|Hello},\n\nJ'ai vu que %s recrute %s — signe que la croissance est une priorité. "+
			"Chez MilleMail on aide les équipes B2B à générer des rendez-vous qualifiés par cold email, sans mobiliser l'équipe en place.\n\n"+
			"{Ouvert à en discuter 15 minutes ?|Ça vaut le coup d'en parler ?}", company, role),
		Email1PS: "PS : on met en place l'infrastructure complète (domaines, warm-up, séquences) en moins de deux semaines.",
		Email2: fmt.Sprintf("{Je me permets de relancer|Petit rappel} — le recrutement de %s chez %s avance sûrement, "+
			"et le pipeline doit suivre. On peut en parler {cette semaine|quand vous voulez} ?", role, company),
		Email3: "Dernier message de ma part. Si le sujet pipeline n'est pas d'actualité, aucun souci — " +
			"je reste disponible si ça le devient. {Bonne continuation|Bonne journée} !",
	}
}
