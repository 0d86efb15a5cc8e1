package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/summitops/event-pay-gateway/internal/model"
	"github.com/summitops/event-pay-gateway/internal/util"
)

// Provider is one downstream marketing/CRM system a captured lead is pushed
// to. Unlike interchangeable delivery carriers, every enabled provider
// receives every lead.
type Provider interface {
	Name() string
	Ready() bool
	Acquire() bool
	Push(ctx context.Context, lead model.Contact) error
}

// MailerLiteProvider upserts the lead as a subscriber via the MailerLite-style
// connect API.
type MailerLiteProvider struct {
	name    string
	baseURL string
	apiKey  string
	groupID string
	client  *http.Client
	br      *Breaker
}

func NewMailerLiteProvider(name, baseURL, apiKey, groupID string, timeoutMs, failThreshold, openForMs int) *MailerLiteProvider {
	return &MailerLiteProvider{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		groupID: groupID,
		client:  &http.Client{Timeout: providerTimeout(timeoutMs)},
		br:      newProviderBreaker(failThreshold, openForMs),
	}
}

func (p *MailerLiteProvider) Name() string  { return p.name }
func (p *MailerLiteProvider) Ready() bool   { return p.br.Ready() }
func (p *MailerLiteProvider) Acquire() bool { return p.br.TryAcquire() }

func (p *MailerLiteProvider) Push(ctx context.Context, lead model.Contact) error {
	body := map[string]any{
		"email": lead.Email,
		"fields": map[string]string{
			"name":       lead.FullName,
			"phone":      util.NormalizePhone(lead.Phone),
			"utm_source": lead.UTMSource,
			"utm_medium": lead.UTMMedium,
		},
	}
	if p.groupID != "" {
		body["groups"] = []string{p.groupID}
	}

	err := postJSON(ctx, p.client, p.baseURL+"/api/subscribers", body, map[string]string{
		"Authorization": "Bearer " + p.apiKey,
	})
	if err != nil {
		p.br.OnFailure()
		return fmt.Errorf("provider=%s: %w", p.name, err)
	}
	p.br.OnSuccess()
	return nil
}

// WebhookProvider posts the full lead payload to a CRM-owned endpoint.
type WebhookProvider struct {
	name   string
	url    string
	apiKey string
	client *http.Client
	br     *Breaker
}

func NewWebhookProvider(name, url, apiKey string, timeoutMs, failThreshold, openForMs int) *WebhookProvider {
	return &WebhookProvider{
		name:   name,
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: providerTimeout(timeoutMs)},
		br:     newProviderBreaker(failThreshold, openForMs),
	}
}

func (p *WebhookProvider) Name() string  { return p.name }
func (p *WebhookProvider) Ready() bool   { return p.br.Ready() }
func (p *WebhookProvider) Acquire() bool { return p.br.TryAcquire() }

func (p *WebhookProvider) Push(ctx context.Context, lead model.Contact) error {
	headers := map[string]string{}
	if p.apiKey != "" {
		headers["X-API-Key"] = p.apiKey
	}
	if err := postJSON(ctx, p.client, p.url, lead, headers); err != nil {
		p.br.OnFailure()
		return fmt.Errorf("provider=%s: %w", p.name, err)
	}
	p.br.OnSuccess()
	return nil
}

func postJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return fmt.Errorf("status=%d", res.StatusCode)
	}
	return nil
}

func providerTimeout(timeoutMs int) time.Duration {
	if timeoutMs <= 0 {
		timeoutMs = 3000
	}
	return time.Duration(timeoutMs) * time.Millisecond
}

func newProviderBreaker(failThreshold, openForMs int) *Breaker {
	if failThreshold <= 0 {
		failThreshold = 3
	}
	if openForMs <= 0 {
		openForMs = 15000
	}
	return NewBreaker(failThreshold, time.Duration(openForMs)*time.Millisecond)
}
