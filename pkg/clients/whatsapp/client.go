// Package whatsapp is a minimal client for the Meta WhatsApp Cloud API. Only plain text
// messages are sent: command replies and the daily report.
package whatsapp

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairycoop/internal/config"
)

const (
	requestTimeout = 15 * time.Second
	retryCount     = 2
	retryWait      = 500 * time.Millisecond
)

// Client sends text messages.
type Client interface {
	SendTextMessage(ctx context.Context, req SendTextMessageRequest) (*SendTextMessageResponse, error)
}

// SendTextMessageRequest is one text message to one recipient.
type SendTextMessageRequest struct {
	To   string
	Body string
}

// SendTextMessageResponse mirrors the successful response from Meta.
type SendTextMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	RecipientType    string   `json:"recipient_type"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

// apiError is the Cloud API error envelope.
type apiError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

func (e *apiError) asError(status int) error {
	code := status
	if e.Error.Code != 0 {
		code = e.Error.Code
	}
	return fmt.Errorf("whatsapp api error: status=%d code=%d message=%s trace=%s", status, code, e.Error.Message, e.Error.FBTraceID)
}

// APIClient is a resty-backed implementation of Client. Rate limits and server errors are
// retried; client errors are not.
type APIClient struct {
	httpClient    *resty.Client
	phoneNumberID string
}

// NewClient builds a WhatsApp API client using the provided configuration values.
func NewClient(cfg config.WhatsAppConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New().
		SetBaseURL(fmt.Sprintf("%s/%s", base, cfg.APIVersion)).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Content-Type", "application/json").
		SetTimeout(requestTimeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWait).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil || resp == nil {
				return err != nil
			}
			return resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError
		})

	return &APIClient{
		httpClient:    restyClient,
		phoneNumberID: cfg.PhoneNumberID,
	}
}

func (c *APIClient) SendTextMessage(ctx context.Context, req SendTextMessageRequest) (*SendTextMessageResponse, error) {
	payload := textPayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               req.To,
		Type:             "text",
		Text:             textBody{Body: req.Body},
	}

	result := new(SendTextMessageResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post(c.phoneNumberID + "/messages")
	if err != nil {
		return nil, fmt.Errorf("send whatsapp message: %w", err)
	}

	if resp.IsError() {
		return nil, apiErr.asError(resp.StatusCode())
	}

	return result, nil
}

// NoopClient stands in when messaging is not configured. It logs and drops every message.
type NoopClient struct {
	logger *zap.Logger
}

// NewNoopClient builds a NoopClient.
func NewNoopClient(logger *zap.Logger) *NoopClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoopClient{logger: logger}
}

func (c *NoopClient) SendTextMessage(_ context.Context, req SendTextMessageRequest) (*SendTextMessageResponse, error) {
	c.logger.Info("whatsapp disabled, message dropped", zap.String("to", req.To), zap.Int("length", len(req.Body)))
	return &SendTextMessageResponse{}, nil
}
