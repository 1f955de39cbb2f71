package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/rs/zerolog/log"

	"tradelens-backend/config"
	"tradelens-backend/internal/dto"
)

type GeminiPart struct {
	Text string `json:"text"`
}
type GeminiContent struct {
	Parts []GeminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}
type GeminiRequestBody struct {
	Contents []GeminiContent `json:"contents"`
}

type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
	Index        int           `json:"index"`
}

type GeminiResponse struct {
	Candidates []GeminiCandidate `json:"candidates"`
}

// LLMService turns a natural-language question (plus conversation history)
// into a structured data request. The request is untrusted output: the filter
// and aggregation engines validate its shape before acting on it.
type LLMService interface {
	AnalyzeQuestionWithHistory(ctx context.Context, conversationHistory []dto.ConversationTurn, newUserQuery string, schemaContext string) (*dto.QueryIntent, error)
}

type geminiLLMService struct {
	apiKey     string
	httpClient *http.Client
	modelID    string
	maxRetries uint64
}

func NewGeminiLLMService(cfg *config.Config) (LLMService, error) {
	return &geminiLLMService{
		apiKey: cfg.LLM.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		modelID:    cfg.LLM.ModelID,
		maxRetries: cfg.LLM.MaxRetries,
	}, nil
}

func (s *geminiLLMService) AnalyzeQuestionWithHistory(ctx context.Context, conversationHistory []dto.ConversationTurn, newUserQuery string, schemaContext string) (*dto.QueryIntent, error) {
	log.Info().Str("new_query", newUserQuery).Int("history_len", len(conversationHistory)).Msg("Gemini LLM Service: Analyzing question with history")

	prompt := buildGeminiContents(conversationHistory, newUserQuery, schemaContext)

	requestBody := GeminiRequestBody{Contents: prompt}
	bodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal Gemini request body")
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	respBodyBytes, err := s.callGeminiAPI(ctx, bodyBytes)
	if err != nil {
		return nil, err
	}
	log.Debug().Bytes("raw_response", respBodyBytes).Msg("Gemini LLM Service: Received raw response")

	var geminiResp GeminiResponse
	if err := json.Unmarshal(respBodyBytes, &geminiResp); err != nil {
		log.Error().Err(err).Bytes("response_body", respBodyBytes).Msg("Failed to unmarshal Gemini API response")
		return nil, fmt.Errorf("failed to parse Gemini response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		log.Error().Interface("gemini_response", geminiResp).Msg("Gemini response has no candidates or parts")
		return nil, errors.New("received empty or invalid response structure from Gemini")
	}

	generatedText := geminiResp.Candidates[0].Content.Parts[0].Text
	log.Debug().Str("generated_text", generatedText).Msg("Gemini LLM Service: Extracted generated text")

	cleanedJson := cleanLLMJsonOutput(generatedText)
	if cleanedJson == "" {
		log.Error().Str("raw_text", generatedText).Msg("Failed to extract valid JSON from Gemini response text")
		return nil, errors.New("LLM did not return valid JSON in its response")
	}

	var intent dto.QueryIntent
	if err := json.Unmarshal([]byte(cleanedJson), &intent); err != nil {
		log.Error().Err(err).Str("cleaned_json", cleanedJson).Msg("Failed to unmarshal cleaned JSON from Gemini response")
		return nil, fmt.Errorf("failed to parse structured request from LLM: %w", err)
	}

	log.Info().Interface("intent", intent).Msg("Gemini LLM Service: Successfully analyzed question")
	return &intent, nil
}

// callGeminiAPI posts the request body, retrying transport failures and 5xx
// responses with exponential backoff. 4xx responses are not retried.
func (s *geminiLLMService) callGeminiAPI(ctx context.Context, bodyBytes []byte) ([]byte, error) {
	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", s.modelID, s.apiKey)

	var respBodyBytes []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(bodyBytes))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			log.Warn().Err(err).Msg("Gemini HTTP request failed, retrying")
			return fmt.Errorf("gemini request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			log.Warn().Int("status_code", resp.StatusCode).Msg("Gemini API returned server error, retrying")
			return fmt.Errorf("gemini API error: status code %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			log.Error().Int("status_code", resp.StatusCode).Bytes("response_body", body).Msg("Gemini API returned non-OK status")
			return backoff.Permanent(fmt.Errorf("gemini API error: status code %d", resp.StatusCode))
		}

		respBodyBytes = body
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return respBodyBytes, nil
}

func cleanLLMJsonOutput(raw string) string {
	startIndex := strings.Index(raw, "{")
	if startIndex == -1 {
		return ""
	}

	endIndex := strings.LastIndex(raw, "}")
	if endIndex == -1 || endIndex < startIndex {
		return ""
	}

	potentialJson := raw[startIndex : endIndex+1]

	var js map[string]interface{}
	if json.Unmarshal([]byte(potentialJson), &js) == nil {
		return potentialJson
	}

	log.Warn().Str("potential_json", potentialJson).Msg("Could not validate potential JSON extracted from LLM response")
	return ""
}

func buildGeminiContents(history []dto.ConversationTurn, newUserQuery string, schemaContext string) []GeminiContent {
	contents := make([]GeminiContent, 0, len(history)+1)

	if len(history) == 0 {
		initialPrompt := buildInitialPrompt(newUserQuery, schemaContext)
		contents = append(contents, GeminiContent{
			Role:  "user",
			Parts: []GeminiPart{{Text: initialPrompt}},
		})
	} else {
		for _, turn := range history {
			contents = append(contents, GeminiContent{
				Role:  turn.Role,
				Parts: []GeminiPart{{Text: turn.Content}},
			})
		}
		followUpPrompt := buildFollowUpPrompt(newUserQuery)
		contents = append(contents, GeminiContent{
			Role:  "user",
			Parts: []GeminiPart{{Text: followUpPrompt}},
		})
	}

	return contents
}

func buildInitialPrompt(userQuery string, schemaContext string) string {
	return fmt.Sprintf(`
Analyze the user's natural language question about trade transactions and extract a structured data request. Respond *ONLY* with a valid JSON object matching the specified format, without any introductory text or markdown formatting.

Data Schema Context:
%s

Desired JSON Output Format:
{
  "type": ("detail" | "aggregate"),
  "filters": [
    {
      "field": string,
      "operator": ("equals" | "contains" | "startsWith" | "greaterThan" | "lessThan" | "between" | "in"),
      "value": any, // scalar; [low, high] for "between"; array of values for "in"
      "match_strategy": ("exact" | "fuzzy" | "case-insensitive" | "normalized"), // optional, defaults to "normalized"
      "fuzzy_threshold": number, // optional, max edit distance for "fuzzy", defaults to 2
      "logical_operator": ("AND" | "OR") // how the NEXT filter combines with the result so far, defaults to "AND"
    }
  ],
  "aggregations": [ { "field": string, "operation": ("count" | "sum" | "average" | "min" | "max"), "group_by": string } ],
  "reasoning": string, // one sentence on why this request answers the question
  "confidence": number // 0.0-1.0, how confident you are that this request is right
}

Example for "total import value from the US by company":
{
  "type": "aggregate",
  "filters": [{"field": "importCountry", "operator": "contains", "value": "US"}],
  "aggregations": [{"field": "amount", "operation": "sum", "group_by": "company"}],
  "reasoning": "Sum the transaction amounts per company after narrowing to US imports.",
  "confidence": 0.9
}

Example for "show electronics transactions above 1000":
{
  "type": "detail",
  "filters": [
    {"field": "category", "operator": "equals", "value": "electronics", "match_strategy": "fuzzy"},
    {"field": "amount", "operator": "greaterThan", "value": 1000}
  ],
  "aggregations": [],
  "reasoning": "Keep high-value rows in the electronics category.",
  "confidence": 0.85
}

User Question: "%s"

JSON Output:`, schemaContext, userQuery)
}

func buildFollowUpPrompt(roundFeedback string) string {
	return fmt.Sprintf(`Round feedback:
%s

Based on the previous rounds and this feedback, produce an improved data request for the same question. Adjust only what the feedback calls for: relax filters that matched nothing, correct field names reported as missing, or add aggregations when a summary would answer better. Do not repeat a request that was already tried. Respond ONLY with the complete, valid JSON object.

JSON Output:`, roundFeedback)
}
