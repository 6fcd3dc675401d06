package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"marketplace-server/services/moderation-api/internal/config"
	"marketplace-server/services/moderation-api/internal/domain/moderation"
	"marketplace-server/services/moderation-api/internal/infrastructure/metrics"
)

var (
	// ErrUnavailable marks transport or credential failures before the
	// scoring service could respond.
	ErrUnavailable = errors.New("classifier unavailable")
	// ErrScoring marks a non-success response from the scoring service.
	ErrScoring = errors.New("classifier error")
)

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    imageContent `json:"image"`
	Features []feature    `json:"features"`
}

type imageContent struct {
	Content string `json:"content"`
}

type feature struct {
	Type string `json:"type"`
}

type annotateResponse struct {
	Responses []struct {
		SafeSearchAnnotation *safeSearch `json:"safeSearchAnnotation"`
		Error                *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

type safeSearch struct {
	Adult    string `json:"adult"`
	Violence string `json:"violence"`
	Racy     string `json:"racy"`
}

// Client calls the safe-search scoring service. One attempt per call; the
// pipeline decides what a failure means.
type Client struct {
	endpoint     string
	quotaProject string
	tokens       oauth2.TokenSource
	httpClient   *resty.Client
	log          zerolog.Logger
}

// NewClient builds the classifier client. Credential acquisition stays
// behind the TokenSource so callers carry no dependency on how bearer
// tokens are obtained.
func NewClient(cfg *config.Config, tokens oauth2.TokenSource, log zerolog.Logger) *Client {
	httpClient := resty.New().
		SetHeader("User-Agent", "Marketplace-Moderation/1.0").
		SetTimeout(cfg.ClassifierTimeout)

	return &Client{
		endpoint:     cfg.ClassifierEndpoint,
		quotaProject: cfg.QuotaProject,
		tokens:       tokens,
		httpClient:   httpClient,
		log:          log.With().Str("component", "vision-client").Logger(),
	}
}

// Classify submits raw image bytes for safe-search scoring and returns the
// per-category verdict.
func (c *Client) Classify(ctx context.Context, image []byte) (moderation.SafetyVerdict, error) {
	start := time.Now()
	verdict, err := c.classify(ctx, image)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordClassify(status, time.Since(start).Seconds())
	return verdict, err
}

func (c *Client) classify(ctx context.Context, image []byte) (moderation.SafetyVerdict, error) {
	var verdict moderation.SafetyVerdict

	token, err := c.tokens.Token()
	if err != nil {
		return verdict, fmt.Errorf("%w: acquire token: %v", ErrUnavailable, err)
	}

	body := annotateRequest{
		Requests: []imageRequest{{
			Image:    imageContent{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []feature{{Type: "SAFE_SEARCH_DETECTION"}},
		}},
	}

	var result annotateResponse
	req := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&result)
	if c.quotaProject != "" {
		req.SetHeader("x-goog-user-project", c.quotaProject)
	}

	resp, err := req.Post(c.endpoint)
	if err != nil {
		return verdict, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return verdict, fmt.Errorf("%w: status %s: %s", ErrScoring, resp.Status(), resp.String())
	}
	if len(result.Responses) == 0 {
		return verdict, fmt.Errorf("%w: empty response", ErrScoring)
	}
	scored := result.Responses[0]
	if scored.Error != nil {
		return verdict, fmt.Errorf("%w: code %d: %s", ErrScoring, scored.Error.Code, scored.Error.Message)
	}
	if scored.SafeSearchAnnotation == nil {
		// No annotation means nothing was detected; every category
		// stays at UNKNOWN and the policy treats the image as safe.
		c.log.Debug().Msg("response carried no safe-search annotation")
		return verdict, nil
	}

	verdict.Adult = moderation.ParseLikelihood(scored.SafeSearchAnnotation.Adult)
	verdict.Violence = moderation.ParseLikelihood(scored.SafeSearchAnnotation.Violence)
	verdict.Racy = moderation.ParseLikelihood(scored.SafeSearchAnnotation.Racy)
	return verdict, nil
}
