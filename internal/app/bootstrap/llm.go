package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/founderline/outreach-ai-platform/cmd/mainconfig"
	appconfig "github.com/founderline/outreach-ai-platform/internal/config"
	"github.com/founderline/outreach-ai-platform/internal/conversation"
	"github.com/founderline/outreach-ai-platform/pkg/logging"
)

// BuildLLMClient wires the configured text-completion provider. When both
// Gemini and Bedrock are configured, the non-primary one becomes the
// fallback. The returned closer releases provider connections.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (conversation.LLMClient, string, func(), error) {
	if cfg == nil {
		return nil, "", nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var gemini *conversation.GeminiLLMClient
	if cfg.GeminiAPIKey != "" {
		client, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, "", nil, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		gemini = client
	}

	var bedrock *conversation.BedrockLLMClient
	if cfg.BedrockModelID != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			if gemini != nil {
				gemini.Close()
			}
			return nil, "", nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		bedrock = conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
	}

	closer := func() {
		if gemini != nil {
			gemini.Close()
		}
	}

	switch {
	case cfg.LLMProvider == "bedrock" && bedrock != nil:
		if gemini != nil {
			logger.Info("using bedrock with gemini fallback", "model", cfg.BedrockModelID)
			return conversation.NewFallbackLLMClient(bedrock, gemini, logger), cfg.BedrockModelID, closer, nil
		}
		logger.Info("using bedrock", "model", cfg.BedrockModelID)
		return bedrock, cfg.BedrockModelID, closer, nil
	case gemini != nil:
		if bedrock != nil {
			logger.Info("using gemini with bedrock fallback", "model", cfg.GeminiModelID)
			return conversation.NewFallbackLLMClient(gemini, bedrock, logger), cfg.GeminiModelID, closer, nil
		}
		logger.Info("using gemini", "model", cfg.GeminiModelID)
		return gemini, cfg.GeminiModelID, closer, nil
	case bedrock != nil:
		logger.Info("using bedrock", "model", cfg.BedrockModelID)
		return bedrock, cfg.BedrockModelID, closer, nil
	default:
		return nil, "", nil, fmt.Errorf("bootstrap: no LLM provider configured; set GEMINI_API_KEY or BEDROCK_MODEL_ID")
	}
}
