package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultWebhookTimeout = 10 * time.Second

type webhookRequest struct {
	Tokens []string          `json:"tokens"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

type webhookResponse struct {
	Results []webhookResult `json:"results"`
}

type webhookResult struct {
	Token string `json:"token"`
	Code  string `json:"code"`
}

var _ Gateway = (*WebhookGateway)(nil)

// WebhookGateway posts the multicast payload to an HTTP endpoint that mimics
// the provider contract (per-token result codes). Used in dev and staging
// where no real FCM project is wired up.
type WebhookGateway struct {
	client   *resty.Client
	endpoint string
	classify Classification
}

func NewWebhookGateway(endpoint string, classification Classification) (*WebhookGateway, error) {
	client := resty.New()
	client.SetTimeout(defaultWebhookTimeout)
	client.SetRetryCount(0)

	return NewWebhookGatewayWithClient(endpoint, client, classification)
}

func NewWebhookGatewayWithClient(endpoint string, client *resty.Client, classification Classification) (*WebhookGateway, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("webhook endpoint is required")
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid webhook endpoint: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}
	if classification == nil {
		classification = DefaultClassification()
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultWebhookTimeout)
	}
	client.SetRetryCount(0)

	return &WebhookGateway{
		client:   client,
		endpoint: trimmedEndpoint,
		classify: classification,
	}, nil
}

func (g *WebhookGateway) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]TokenOutcome, error) {
	if g == nil || g.client == nil {
		return nil, fmt.Errorf("gateway is not initialized")
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	reqBody := webhookRequest{
		Tokens: tokens,
		Title:  title,
		Body:   body,
		Data:   data,
	}

	var respBody webhookResponse
	response, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		SetResult(&respBody).
		Post(g.endpoint)
	if err != nil {
		return nil, &ProviderError{
			Message:   "webhook push request failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}
	if response == nil {
		return nil, &ProviderError{
			Message:   "webhook push returned empty response",
			Transient: true,
		}
	}

	statusCode := response.StatusCode()
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return nil, &ProviderError{
			StatusCode: statusCode,
			Message:    fmt.Sprintf("webhook push returned status %d", statusCode),
			Transient:  isTransientHTTPStatus(statusCode),
		}
	}

	resultCodes := make(map[string]string, len(respBody.Results))
	for _, result := range respBody.Results {
		resultCodes[result.Token] = result.Code
	}

	outcomes := make([]TokenOutcome, 0, len(tokens))
	for _, token := range tokens {
		code, ok := resultCodes[token]
		if !ok || strings.EqualFold(code, "ok") {
			// Absent result defaults to accepted, mirroring provider behavior
			// of reporting failures only.
			outcomes = append(outcomes, TokenOutcome{Token: token, Class: ClassOK})
			continue
		}

		normalized := normalizeCode(code)
		outcomes = append(outcomes, TokenOutcome{
			Token: token,
			Class: g.classify.Classify(normalized),
			Code:  normalized,
			Err:   fmt.Errorf("webhook push rejected token: %s", normalized),
		})
	}

	return outcomes, nil
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}
