package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/form"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/retrieval"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/task"
	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/provider"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/config"
	"github.com/google/uuid"
)

// generationSystemPrompt instructs the chat provider to answer with one
// strict JSON object matching the schema wire format.
const generationSystemPrompt = `You design web forms. Given a description of the form a user needs, respond with a single JSON object and nothing else.

The object has this shape:
{"title": string, "description": string, "fields": [{"key": string, "label": string, "kind": string, "required": bool, "options": [string]}]}

Allowed field kinds: text, textarea, email, phone, number, date, select, checkbox, radio, file, rating. Use snake_case keys. Include "options" only for select, checkbox, and radio fields. Do not wrap the JSON in markdown fences.`

// Generator turns natural-language prompts into persisted forms. A chat
// provider produces the schema when one is configured; the deterministic
// category templates cover provider absence and every provider failure, so
// Generate always yields a usable form.
type Generator struct {
	chat        provider.TextGenerator
	retrieval   *Retrieval
	indexer     *Indexer
	forms       form.FormStore
	queue       *Queue
	topK        int
	maxTokens   int
	temperature float64
	closed      *atomic.Bool
	logger      *slog.Logger
}

// NewGenerator creates a new Generator service. A nil chat provider means
// every prompt is served by the category templates.
func NewGenerator(
	chat provider.TextGenerator,
	retrievalSvc *Retrieval,
	indexer *Indexer,
	forms form.FormStore,
	queue *Queue,
	closed *atomic.Bool,
	logger *slog.Logger,
) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		chat:        chat,
		retrieval:   retrievalSvc,
		indexer:     indexer,
		forms:       forms,
		queue:       queue,
		topK:        config.DefaultTopK,
		maxTokens:   2048,
		temperature: 0.2,
		closed:      closed,
		logger:      logger,
	}
}

// WithTopK sets how many context entries are retrieved per generation.
func (s *Generator) WithTopK(k int) *Generator {
	if k > 0 {
		s.topK = k
	}
	return s
}

// WithMaxTokens sets the maximum tokens for provider generation.
func (s *Generator) WithMaxTokens(n int) *Generator {
	s.maxTokens = n
	return s
}

// WithTemperature sets the temperature for provider generation.
func (s *Generator) WithTemperature(t float64) *Generator {
	s.temperature = t
	return s
}

// Generate creates a form from a natural-language prompt and persists it.
// Prior forms of the owner are retrieved as context so repeated prompts
// converge on the user's established conventions. The returned form carries
// its persistence key.
func (s *Generator) Generate(ctx context.Context, ownerID uuid.UUID, prompt string) (form.Form, error) {
	if s.closed != nil && s.closed.Load() {
		return form.Form{}, ErrClientClosed
	}
	if ownerID == uuid.Nil {
		return form.Form{}, fmt.Errorf("owner id is required")
	}
	prompt = strings.TrimSpace(prompt)

	entries, result := s.retrieval.RetrieveContext(ctx, ownerID, prompt, s.topK, retrieval.WithSchemas(true))
	if result.IsFallback() {
		s.logger.Debug("generation context served from recency fallback",
			slog.String("owner_id", ownerID.String()),
		)
	}

	schema := s.generateSchema(ctx, prompt, entries)

	f := form.NewForm(ownerID, prompt, schema)
	saved, err := s.forms.Save(ctx, f)
	if err != nil {
		return form.Form{}, fmt.Errorf("save form: %w", err)
	}

	if err := s.indexer.EmbedForm(ctx, saved); err != nil {
		// The form is usable without its vector; it is just invisible to
		// similarity retrieval until the queued task embeds it.
		s.logger.Warn("embedding at creation failed, queueing embed task",
			slog.String("form_uuid", saved.UUID().String()),
			slog.String("error", err.Error()),
		)
		s.enqueueEmbed(ctx, saved)
	}

	s.logger.Info("form generated",
		slog.String("form_uuid", saved.UUID().String()),
		slog.String("category", saved.Category().String()),
		slog.Int("fields", saved.Schema().FieldCount()),
	)
	return saved, nil
}

// generateSchema produces the schema for a prompt, falling back to the
// category template whenever the provider is absent or fails.
func (s *Generator) generateSchema(ctx context.Context, prompt string, entries []retrieval.ContextEntry) form.Schema {
	category := form.DeriveCategory(prompt)
	if s.chat == nil {
		return form.TemplateSchema(category, prompt)
	}

	schema, err := s.generateWithProvider(ctx, prompt, entries)
	if err != nil {
		s.logger.Warn("provider generation failed, using category template",
			slog.String("category", category.String()),
			slog.String("error", err.Error()),
		)
		return form.TemplateSchema(category, prompt)
	}
	return schema
}

func (s *Generator) generateWithProvider(ctx context.Context, prompt string, entries []retrieval.ContextEntry) (form.Schema, error) {
	messages := []provider.Message{
		provider.SystemMessage(generationSystemPrompt),
		provider.UserMessage(buildGenerationMessage(prompt, entries)),
	}

	chatReq := provider.NewChatCompletionRequest(messages).
		WithMaxTokens(s.maxTokens).
		WithTemperature(s.temperature)

	chatResp, err := s.chat.ChatCompletion(ctx, chatReq)
	if err != nil {
		return form.Schema{}, err
	}

	schema, err := parseSchemaResponse(chatResp.Content())
	if err != nil {
		return form.Schema{}, err
	}

	if schema.Title() == "" {
		title := form.TitleFromPrompt(prompt)
		if title == "" {
			title = "Form"
		}
		schema = form.NewSchema(title, schema.Description(), schema.Fields())
	}
	return schema, nil
}

// buildGenerationMessage renders the prompt and the retrieved context into
// the user message. Entries keep their rank order: earlier entries are more
// relevant and the provider weighs earlier text more.
func buildGenerationMessage(prompt string, entries []retrieval.ContextEntry) string {
	var b strings.Builder
	b.WriteString("Create a form for: ")
	b.WriteString(prompt)

	if len(entries) > 0 {
		b.WriteString("\n\nForms this user created earlier, most relevant first:\n")
		for _, e := range entries {
			fmt.Fprintf(&b, "- %s\n", e.Summary())
			if schema := e.SchemaJSON(); schema != "" {
				fmt.Fprintf(&b, "  schema: %s\n", schema)
			}
		}
		b.WriteString("\nFollow the field conventions of the earlier forms where they fit the request.")
	}
	return b.String()
}

// parseSchemaResponse decodes the provider's answer into a schema. An
// answer without a usable JSON object, or one describing a form with no
// fields, counts as a generation failure.
func parseSchemaResponse(content string) (form.Schema, error) {
	raw := extractJSONObject(content)
	if raw == "" {
		return form.Schema{}, fmt.Errorf("no JSON object in response")
	}

	schema, err := form.ParseSchema([]byte(raw))
	if err != nil {
		return form.Schema{}, fmt.Errorf("parse generated schema: %w", err)
	}
	if schema.IsEmpty() {
		return form.Schema{}, fmt.Errorf("generated schema has no fields")
	}
	return schema, nil
}

// extractJSONObject returns the outermost JSON object in the content,
// tolerating markdown fences and prose around it.
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end < start {
		return ""
	}
	return content[start : end+1]
}

// enqueueEmbed schedules an embed task for a form whose inline embedding
// failed. Enqueue failures are logged; the backfill handler is the safety
// net of last resort.
func (s *Generator) enqueueEmbed(ctx context.Context, f form.Form) {
	t := task.NewTask(task.OperationEmbedForm, int(task.PriorityUserInitiated), map[string]any{
		"form_uuid": f.UUID().String(),
		"owner_id":  f.OwnerID().String(),
	})
	if err := s.queue.Enqueue(ctx, t); err != nil {
		s.logger.Error("enqueue embed task failed",
			slog.String("form_uuid", f.UUID().String()),
			slog.String("error", err.Error()),
		)
	}
}
