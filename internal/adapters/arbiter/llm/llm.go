// Package llm is an Arbitrator backed by an OpenAI chat model.
// Verdicts are cached per request fingerprint so a repeated collision never costs a second call.
package llm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"outreach/internal/core/matcher"
	perr "outreach/internal/platform/errors"
	"outreach/internal/platform/logger"
)

// DefaultModel is used when Config.Model is empty
const DefaultModel = "gpt-4o-mini"

// DefaultTimeout bounds one shared completion when Config.Timeout is unset
const DefaultTimeout = 30 * time.Second

const systemPrompt = `You decide whether a company record refers to one of several candidate companies.
The record is normalized: lowercase name without legal suffixes, lowercase city, two letter
US state code. Candidates carry their name, city and state as stored, so casing, punctuation
and legal suffixes may differ from the record. Scores are normalized name similarities in
[0,1] and are close by construction.

Answer with ONLY a JSON object:
{"decision": "SELECTED" | "REJECTED" | "STILL_AMBIGUOUS",
 "company_id": "<one of the candidate ids, only when SELECTED>",
 "confidence": <0..1, only when SELECTED>,
 "reasoning": "<one short sentence>"}

Select only when the evidence clearly favors exactly one candidate. Reject when none of them
can be the record's company. Otherwise answer STILL_AMBIGUOUS.`

// Config configures the client
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int64
	// Timeout bounds the completion shared by every caller waiting on one fingerprint
	Timeout time.Duration
}

// completer sends one prompt and returns the raw message content
type completer interface {
	complete(ctx context.Context, system, user string) (string, error)
}

// Arbiter implements matcher.Arbitrator
type Arbiter struct {
	c       completer
	log     zerolog.Logger
	timeout time.Duration

	mu    sync.Mutex
	cache map[string]matcher.Arbitration
	group singleflight.Group
}

// New constructs an OpenAI arbiter; an empty API key is a configuration error
func New(cfg Config) (*Arbiter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, perr.WithField(perr.InvalidArgf("llm arbiter requires an api key"), "api_key")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 300
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return newArbiter(&openaiCompleter{client: &client, model: cfg.Model, maxTokens: cfg.MaxTokens}, cfg.Timeout), nil
}

func newArbiter(c completer, timeout time.Duration) *Arbiter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Arbiter{
		c:       c,
		log:     *logger.Named("arbiter.llm"),
		timeout: timeout,
		cache:   map[string]matcher.Arbitration{},
	}
}

// Cached returns the number of memoized verdicts
func (a *Arbiter) Cached() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.cache)
}

// Arbitrate implements matcher.Arbitrator. Concurrent calls for one fingerprint share a request.
// The shared request runs detached from any single caller; each caller stops waiting on its own ctx.
func (a *Arbiter) Arbitrate(ctx context.Context, req matcher.ArbitrationRequest) (matcher.Arbitration, error) {
	fp := req.Fingerprint()
	if v, ok := a.lookup(fp); ok {
		return v, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := a.group.DoChan(fp, func() (any, error) {
		if v, ok := a.lookup(fp); ok {
			return v, nil
		}
		cctx, cancel := context.WithTimeout(shared, a.timeout)
		defer cancel()
		v, err := a.ask(cctx, req)
		if err != nil {
			return nil, err
		}
		a.mu.Lock()
		a.cache[fp] = v
		a.mu.Unlock()
		return v, nil
	})

	select {
	case <-ctx.Done():
		return matcher.Arbitration{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return matcher.Arbitration{}, res.Err
		}
		return res.Val.(matcher.Arbitration), nil
	}
}

func (a *Arbiter) lookup(fp string) (matcher.Arbitration, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.cache[fp]
	return v, ok
}

type verdict struct {
	Decision   string  `json:"decision"`
	CompanyID  string  `json:"company_id"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

func (a *Arbiter) ask(ctx context.Context, req matcher.ArbitrationRequest) (matcher.Arbitration, error) {
	// the record id is not part of the fingerprint, so it stays out of the prompt too
	req.RecordID = ""
	body, err := json.Marshal(req)
	if err != nil {
		return matcher.Arbitration{}, perr.Wrap(err, perr.ErrorCodeJSON, "encode arbitration request")
	}

	content, err := a.c.complete(ctx, systemPrompt, "Record and candidates:\n"+string(body))
	if err != nil {
		return matcher.Arbitration{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "llm completion")
	}

	var v verdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &v); err != nil {
		a.log.Debug().Str("content", content).Msg("unparseable verdict")
		return matcher.Arbitration{}, perr.Wrap(err, perr.ErrorCodeJSON, "decode llm verdict")
	}
	return matcher.Arbitration{
		Decision:   matcher.Decision(strings.ToUpper(strings.TrimSpace(v.Decision))),
		CompanyID:  strings.TrimSpace(v.CompanyID),
		Confidence: v.Confidence,
		Reasoning:  v.Reasoning,
	}, nil
}

type openaiCompleter struct {
	client    *openai.Client
	model     string
	maxTokens int64
}

func (o *openaiCompleter) complete(ctx context.Context, system, user string) (string, error) {
	jsonObject := shared.NewResponseFormatJSONObjectParam()
	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model:       shared.ChatModel(o.model),
		Temperature: param.NewOpt(0.0),
		MaxTokens:   param.NewOpt(o.maxTokens),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &jsonObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", perr.Unavailablef("no choices in completion")
	}
	return completion.Choices[0].Message.Content, nil
}
