package specgen

import (
	"context"
	"fmt"

	"github.com/hupe1980/go-huggingface"
)

// HuggingFace produces specs with the hosted text-generation inference API.
type HuggingFace struct {
	client *huggingface.InferenceClient
	model  string
}

// NewHuggingFace creates a HuggingFace producer for model.
func NewHuggingFace(token, model string) *HuggingFace {
	return &HuggingFace{client: huggingface.NewInferenceClient(token), model: model}
}

func (h *HuggingFace) Name() string { return "huggingface" }

func (h *HuggingFace) Produce(ctx context.Context, p Params) ([]byte, error) {
	res, err := h.client.TextGeneration(ctx, &huggingface.TextGenerationRequest{
		Inputs: systemPrompt + "\n\n" + Prompt(p) + "\nJSON:\n",
		Model:  h.model,
		Parameters: huggingface.TextGenerationParameters{
			MaxNewTokens:   intPtr(2000),
			Temperature:    float64Ptr(0.4),
			TopK:           intPtr(50),
			TopP:           float64Ptr(0.9),
			ReturnFullText: boolPtr(false),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("text generation: %w", err)
	}
	if len(res) == 0 || res[0].GeneratedText == "" {
		return nil, ErrEmptyResponse
	}
	return []byte(res[0].GeneratedText), nil
}

func intPtr(i int) *int             { return &i }
func float64Ptr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool          { return &b }
