package llm

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/memesrized/chatbot-escalation/internal/config"
)

// NewClientFromConfig creates the completion client selected by
// cfg.LLMProvider, along with the default model id for requests.
func NewClientFromConfig(ctx context.Context, cfg *appconfig.Config) (Client, string, error) {
	switch cfg.LLMProvider {
	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, "", fmt.Errorf("llm: failed to load aws config: %w", err)
		}
		return NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg)), cfg.BedrockModelID, nil
	case "gemini":
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, "", err
		}
		return client, cfg.GeminiModelID, nil
	default:
		return nil, "", fmt.Errorf("llm: unknown provider %q", cfg.LLMProvider)
	}
}
