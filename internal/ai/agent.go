// Package ai wraps the OpenAI structured-output API to turn natural language
// receiving and correction notes into stock adjustment proposals. Proposals
// are never applied here; the app layer applies them only after the operator
// confirms, through the stock ledger's normal checks.
package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"pos-backoffice/internal/core"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// AgentService interprets a free-text stock note against the known catalog.
type AgentService interface {
	InterpretStockNote(ctx context.Context, note string, catalog string) (*core.AssistantResponse, error)
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// InterpretStockNote asks the model for either a StockProposal or a
// clarification request. catalog is a plain-text listing of known barcodes
// with product names and current quantities.
func (a *Agent) InterpretStockNote(ctx context.Context, note string, catalog string) (*core.AssistantResponse, error) {
	prompt := fmt.Sprintf(`You are a store back-office assistant.
Your goal is to interpret a stock note written by an operator and propose per-product quantity adjustments.
Rules:
1. Use ONLY barcodes from the catalog below, exactly as written (barcodes are case-sensitive).
2. Delta is the signed change: goods received are positive, shrinkage and corrections are negative.
3. Never propose an adjustment that is not clearly stated in the note.
4. Provide a confidence score (0.0-1.0) and explain your reasoning.
5. If the note is ambiguous or names unknown products, ask for clarification instead.

Catalog:
%s

Note: %s`, catalog, note)

	schemaJSON, err := json.Marshal(generateSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "stock_adjustment_proposal",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("Either a stock adjustment proposal or a clarification request"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var out core.AssistantResponse
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	if out.IsClarificationRequest {
		if out.Clarification == nil {
			return nil, fmt.Errorf("clarification flagged but no message provided")
		}
		return &out, nil
	}
	if out.Proposal == nil {
		return nil, fmt.Errorf("response carries neither proposal nor clarification")
	}

	out.Proposal.Normalize()
	if err := out.Proposal.Validate(); err != nil {
		return nil, fmt.Errorf("proposal validation failed: %w", err)
	}
	return &out, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v core.AssistantResponse
	return reflector.Reflect(v)
}
