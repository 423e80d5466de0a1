package push

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// multicastSender is the slice of the Firebase messaging client this gateway
// needs; tests substitute a fake.
type multicastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

var _ Gateway = (*FCMGateway)(nil)

// FCMGateway delivers multicast pushes through Firebase Cloud Messaging. The
// SDK holds the service-account credential and refreshes the short-lived
// bearer token before each call; a refresh failure surfaces as a whole-call
// error and never produces per-token outcomes.
type FCMGateway struct {
	client   multicastSender
	classify Classification
}

// NewFCMGateway initializes the Firebase app from a service-account file.
// With an empty path the SDK falls back to application-default credentials.
func NewFCMGateway(ctx context.Context, credentialsFile string, classification Classification) (*FCMGateway, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fcm messaging client: %w", err)
	}

	return NewFCMGatewayWithClient(client, classification)
}

func NewFCMGatewayWithClient(client multicastSender, classification Classification) (*FCMGateway, error) {
	if client == nil {
		return nil, fmt.Errorf("messaging client is required")
	}
	if classification == nil {
		classification = DefaultClassification()
	}

	return &FCMGateway{
		client:   client,
		classify: classification,
	}, nil
}

func (g *FCMGateway) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]TokenOutcome, error) {
	if g == nil || g.client == nil {
		return nil, fmt.Errorf("gateway is not initialized")
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	response, err := g.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, &ProviderError{
			Message:   "fcm multicast send failed",
			Transient: !errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}
	if response == nil {
		return nil, &ProviderError{
			Message:   "fcm returned empty response",
			Transient: true,
		}
	}

	outcomes := make([]TokenOutcome, 0, len(response.Responses))
	for i, resp := range response.Responses {
		if i >= len(tokens) {
			break
		}
		if resp.Success {
			outcomes = append(outcomes, TokenOutcome{Token: tokens[i], Class: ClassOK})
			continue
		}

		code := fcmErrorCode(resp.Error)
		outcomes = append(outcomes, TokenOutcome{
			Token: tokens[i],
			Class: g.classify.Classify(code),
			Code:  code,
			Err:   resp.Error,
		})
	}

	return outcomes, nil
}

func fcmErrorCode(err error) string {
	switch {
	case err == nil:
		return CodeUnknown
	case messaging.IsUnregistered(err):
		return CodeUnregistered
	case messaging.IsInvalidArgument(err):
		return CodeInvalidArgument
	case messaging.IsSenderIDMismatch(err):
		return CodeSenderIDMismatch
	case messaging.IsQuotaExceeded(err):
		return CodeQuotaExceeded
	case messaging.IsUnavailable(err):
		return CodeUnavailable
	case messaging.IsInternal(err):
		return CodeInternal
	case messaging.IsThirdPartyAuthError(err):
		return CodeThirdPartyAuthError
	default:
		return CodeUnknown
	}
}
