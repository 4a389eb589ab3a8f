package diagnose

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/quantgate/quantgate/internal/trade"
)

// Explainer turns a venue rejection message into a short remediation hint
// using a chat model. Purely advisory: the verbatim venue message is always
// surfaced regardless.
type Explainer struct {
	client *openai.Client
	model  string
}

func NewExplainer(apiKey, model string) *Explainer {
	if model == "" {
		model = openai.GPT4
	}
	return &Explainer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// ExplainRejection asks the model why the venue rejected the order and what
// to change.
func (e *Explainer) ExplainRejection(ctx context.Context, req *trade.Request, venueMessage string) (string, error) {
	prompt := fmt.Sprintf(`A Binance USDT-M Futures order was rejected by the exchange.

Order:
  symbol: %s
  side: %s
  type: %s
  quantity: %v
  price: %v

Exchange message: %q

In at most three sentences, explain the likely cause and what the trader
should change before resubmitting. Do not speculate beyond the message.`,
		req.Symbol, req.Side, req.Type, req.Quantity, req.Price, venueMessage)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to explain rejection: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no explanation returned")
	}
	return resp.Choices[0].Message.Content, nil
}
