package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abevier/tsk/ratelimiter"
	"github.com/go-playground/validator"
	"google.golang.org/genai"

	"github.com/linkedpost/go-rewards/models"
)

const defaultOracleRateLimit = 4
const defaultOracleBurstLimit = 4
const defaultOracleMaxQueueDepth = 32

// Oracle scores posts with the Gemini API: an image/text authenticity check
// and a text-only quality rating. Every call requests a strict JSON schema;
// anything that does not parse into the requested shape is a hard failure,
// never a default verdict.
type Oracle struct {
	client        *genai.Client
	model         string
	logger        models.Logger
	metricService models.MetricService
	validator     *validator.Validate
	limiter       *ratelimiter.RateLimiter[oracleTask, []byte]
}

type oracleTask struct {
	prompt string
	image  []byte
	schema *genai.Schema
}

func NewOracle(ctx context.Context, logger models.Logger, metricService models.MetricService, apiKey, model string) (*Oracle, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	oracle := &Oracle{
		client:        client,
		model:         model,
		logger:        logger,
		metricService: metricService,
		validator:     validator.New(),
	}
	limiterOpts := ratelimiter.Opts{
		Limit:             defaultOracleRateLimit,
		Burst:             defaultOracleBurstLimit,
		MaxQueueDepth:     defaultOracleMaxQueueDepth,
		FullQueueStrategy: ratelimiter.BlockWhenFull,
	}
	oracle.limiter = ratelimiter.New(limiterOpts, oracle.generate)
	return oracle, nil
}

// CheckPost asks the oracle whether the screenshot is a genuine, first-person
// LinkedIn post whose visible text matches postContent.
func (o *Oracle) CheckPost(ctx context.Context, postContent string, image []byte) (*models.Verdict, error) {
	task := oracleTask{
		prompt: fmt.Sprintf(authenticityPromptFmt, postContent),
		image:  image,
		schema: verdictSchema,
	}
	raw, err := o.limiter.Submit(ctx, task)
	if err != nil {
		o.metricService.Count(ctx, models.MetricName_OracleError, 1)
		return nil, models.NewUpstreamError("authenticity check failed", err)
	}
	verdict, err := decodeVerdict(o.validator, raw)
	if err != nil {
		o.metricService.Count(ctx, models.MetricName_OracleNonConformant, 1)
		return nil, err
	}
	o.logger.Debugw("authenticity verdict",
		"is_linkedin_post", verdict.IsLinkedInPost,
		"is_own_post", verdict.IsOwnPost,
		"match_ratio", verdict.MatchRatio,
	)
	return verdict, nil
}

// RatePost scores postContent on the rubric. A zero or out-of-range score is
// indistinguishable from an oracle malfunction and fails closed.
func (o *Oracle) RatePost(ctx context.Context, postContent string) (int, error) {
	task := oracleTask{
		prompt: fmt.Sprintf(ratingPromptFmt, postContent),
		schema: ratingSchema,
	}
	raw, err := o.limiter.Submit(ctx, task)
	if err != nil {
		o.metricService.Count(ctx, models.MetricName_OracleError, 1)
		return 0, models.NewUpstreamError("content rating failed", err)
	}
	score, err := decodeRating(raw)
	if err != nil {
		o.metricService.Count(ctx, models.MetricName_OracleNonConformant, 1)
		return 0, err
	}
	return score, nil
}

func (o *Oracle) generate(ctx context.Context, task oracleTask) ([]byte, error) {
	genCtx, cancel := context.WithTimeout(ctx, models.DefaultOracleWaitTime)
	defer cancel()

	parts := make([]*genai.Part, 0, 2)
	if len(task.image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(task.image, "image/png"))
	}
	parts = append(parts, genai.NewPartFromText(task.prompt))
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   task.schema,
	}

	start := time.Now()
	resp, err := o.client.Models.GenerateContent(genCtx, o.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	o.logger.Debugf("oracle call took %s", time.Since(start))
	text := resp.Text()
	if len(text) == 0 {
		return nil, fmt.Errorf("gemini returned an empty response")
	}
	return []byte(text), nil
}

// The wire payloads use pointer fields so that an absent field is
// distinguishable from a zero value. A response that omits a required field is
// an oracle contract violation, never a negative verdict.
type verdictPayload struct {
	IsLinkedInPost *bool    `json:"is_linkedin_post"`
	IsOwnPost      *bool    `json:"is_own_post"`
	MatchRatio     *float64 `json:"match_ratio"`
}

type ratingPayload struct {
	OverallScore *int `json:"overall_score"`
}

func decodeVerdict(validate *validator.Validate, raw []byte) (*models.Verdict, error) {
	payload := new(verdictPayload)
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, models.NewOracleError("oracle returned malformed verdict", err)
	}
	if payload.IsLinkedInPost == nil || payload.IsOwnPost == nil || payload.MatchRatio == nil {
		return nil, models.NewOracleError("oracle verdict missing required fields", nil)
	}
	verdict := &models.Verdict{
		IsLinkedInPost: *payload.IsLinkedInPost,
		IsOwnPost:      *payload.IsOwnPost,
		MatchRatio:     *payload.MatchRatio,
	}
	if err := validate.Struct(verdict); err != nil {
		return nil, models.NewOracleError("oracle verdict out of range", err)
	}
	return verdict, nil
}

func decodeRating(raw []byte) (int, error) {
	payload := new(ratingPayload)
	if err := json.Unmarshal(raw, payload); err != nil {
		return 0, models.NewOracleError("oracle returned malformed rating", err)
	}
	if payload.OverallScore == nil {
		return 0, models.NewOracleError("oracle rating missing required fields", nil)
	}
	if *payload.OverallScore < models.MinPostRating || *payload.OverallScore > models.MaxPostRating {
		return 0, models.NewOracleError(fmt.Sprintf("oracle rating %d out of range", *payload.OverallScore), nil)
	}
	return *payload.OverallScore, nil
}

var verdictSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"is_linkedin_post": {Type: genai.TypeBoolean},
		"is_own_post":      {Type: genai.TypeBoolean},
		"match_ratio":      {Type: genai.TypeNumber},
	},
	Required: []string{"is_linkedin_post", "is_own_post", "match_ratio"},
}

var ratingSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"overall_score": {Type: genai.TypeInteger},
	},
	Required: []string{"overall_score"},
}
