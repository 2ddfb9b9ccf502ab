// Package genai generates Dr. Arogya replies using the OpenAI API.
package genai

import (
	"context"
	"fmt"
	"os"

	"github.com/arogya-health/arogya/internal/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = openai.ChatModelGPT4o

// defaultMaxTokens bounds reply length.
const defaultMaxTokens = 1000

// chatService defines the minimal interface for chat completions.
type chatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey string
	Model  openai.ChatModel
}

// Option configures client construction.
type Option func(*Opts)

// WithAPIKey overrides the OPENAI_API_KEY environment variable.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the default chat model.
func WithModel(model openai.ChatModel) Option {
	return func(o *Opts) { o.Model = model }
}

// Client wraps the OpenAI chat completion service for consultation replies.
type Client struct {
	chat  chatService
	model openai.ChatModel
}

// NewClient initializes a GenAI client. The API key comes from the
// OPENAI_API_KEY environment variable unless overridden.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{APIKey: os.Getenv("OPENAI_API_KEY"), Model: DefaultModel}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	cli := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Client{chat: &cli.Chat.Completions, model: cfg.Model}, nil
}

// Reply generates the assistant response for one user message, framed by the
// Dr. Arogya persona and the session's current stage.
func (c *Client) Reply(ctx context.Context, session *models.Session, userMessage string) (string, error) {
	lang := session.Language
	if lang == "" {
		lang = models.LanguageEnglish
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(lang)),
			openai.SystemMessage(stageContext(session.CurrentStage, lang)),
			openai.UserMessage(userMessage),
		},
		MaxTokens: openai.Int(defaultMaxTokens),
	}
	resp, err := c.chat.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Client.Reply: chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("Client.Reply: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// systemPrompt returns the Dr. Arogya persona prompt for the language.
func systemPrompt(lang models.LanguageCode) string {
	if lang == models.LanguageHindi {
		return `आप डॉ. आरोग्य हैं, एक भरोसेमंद, अनुभवी और दयालु AI स्वास्थ्य सहयोगी।

आपका व्यक्तित्व:
- गर्मजोशी से भरा और समझदार
- मरीज की चिंताओं को गंभीरता से लेने वाला
- स्पष्ट और सरल भाषा में जवाब देने वाला
- पारंपरिक उपचार (दादी माँ के नुस्खे) और आधुनिक चिकित्सा दोनों को समझने वाला

महत्वपूर्ण नियम:
1. हमेशा याद रखें कि आप AI हैं, डॉक्टर नहीं
2. आपातकालीन स्थिति में तुरंत चिकित्सा सहायता लेने को कहें
3. पहले लक्षणों को समझें, फिर सुझाव दें
4. हमेशा डॉक्टर से मिलने की सलाह दें

आपका उद्देश्य: मरीज को डॉक्टर के पास जाने के लिए तैयार करना और बेहतर स्वास्थ्य जानकारी देना।`
	}
	return `You are Dr. Arogya, a trusted, experienced, and compassionate AI health companion.

Your personality:
- Warm, empathetic, and understanding
- Takes patient concerns seriously
- Speaks in clear, simple language
- Knowledgeable about both traditional remedies (दादी माँ के नुस्खे) and modern medicine
- Culturally sensitive and respectful

Critical Rules:
1. Always remember you are an AI assistant, NOT a human doctor
2. For medical emergencies, immediately direct to emergency services
3. Focus on understanding symptoms first, then provide guidance
4. Always recommend seeing a real doctor for proper diagnosis
5. Provide helpful information while emphasizing limitations

Your goal: Prepare patients for doctor visits and provide supportive health information.`
}

// stageContext returns the stage-specific steering prompt.
func stageContext(stage models.Stage, lang models.LanguageCode) string {
	hindi := lang == models.LanguageHindi
	switch stage {
	case models.StageLanguageSelection:
		if hindi {
			return "उपयोगकर्ता ने भाषा चुनी है। अब उनका स्वागत करें और उनकी स्वास्थ्य समस्या के बारे में पूछें।"
		}
		return "User has selected language. Now greet them warmly and ask about their health concern."
	case models.StageGreeting:
		if hindi {
			return "उपयोगकर्ता के स्वास्थ्य की समस्या के बारे में विस्तार से जानकारी लें। लक्षण, समय, तीव्रता आदि के बारे में पूछें।"
		}
		return "Gather detailed information about the user's health concern. Ask about symptoms, duration, severity, etc."
	case models.StageSymptomInquiry:
		if hindi {
			return "अधिक विस्तृत प्रश्न पूछें: दर्द की जगह, कब से है, कैसा लगता है, क्या बढ़ाता या घटाता है।"
		}
		return "Ask more detailed questions: location of pain, when it started, what it feels like, what makes it better or worse."
	}
	return "Continue the conversation naturally, gathering information to help the user."
}
