// Package mailer sends the transactional emails that back notifications.
// Delivery is best-effort: callers fire it from a goroutine after the
// notification row is already persisted, and a provider failure is logged,
// never retried and never surfaced to the write path.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/mail"
	"time"
)

const (
	sendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"

	// Conservative bound on the provider call so a hung request can't leak
	// a pending operation indefinitely.
	requestTimeout = 10 * time.Second
)

// Context carries the values rendered into the email body: a deep link into
// the client app and the receiver's display name.
type Context struct {
	URL  string
	Name string
}

// Dispatcher submits a rendered notification email to the provider.
type Dispatcher interface {
	Dispatch(ctx context.Context, to, subject, templateType, locale string, data Context) error
}

type sendGridDispatcher struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
}

// Option overrides dispatcher internals, used by tests to point at a local
// server.
type Option func(*sendGridDispatcher)

func WithEndpoint(endpoint string) Option {
	return func(d *sendGridDispatcher) { d.endpoint = endpoint }
}

func NewSendGridDispatcher(apiKey, from string, opts ...Option) Dispatcher {
	d := &sendGridDispatcher{
		apiKey:   apiKey,
		from:     from,
		endpoint: sendGridEndpoint,
		client:   &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgPayload struct {
	Personalizations []struct {
		To []sgAddress `json:"to"`
	} `json:"personalizations"`
	From    sgAddress `json:"from"`
	Subject string    `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func (d *sendGridDispatcher) Dispatch(ctx context.Context, to, subject, templateType, locale string, data Context) error {
	html, err := renderTemplate(templateType, locale, data)
	if err != nil {
		return fmt.Errorf("render email template: %w", err)
	}

	payload := sgPayload{
		From:    parseAddress(d.from),
		Subject: translateSubject(subject, locale),
	}
	payload.Personalizations = append(payload.Personalizations, struct {
		To []sgAddress `json:"to"`
	}{To: []sgAddress{{Email: to}}})
	payload.Content = append(payload.Content, struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{Type: "text/html", Value: html})

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("email provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email provider rejected message: status %d", resp.StatusCode)
	}

	return nil
}

func parseAddress(from string) sgAddress {
	if addr, err := mail.ParseAddress(from); err == nil {
		return sgAddress{Email: addr.Address, Name: addr.Name}
	}
	return sgAddress{Email: from}
}

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
  <body>
    <p>{{.Greeting}} {{.Name}},</p>
    <p>{{.Body}}</p>
    <p><a href="{{.URL}}">{{.Action}}</a></p>
  </body>
</html>
`))

func renderTemplate(templateType, locale string, data Context) (string, error) {
	strings := templateStrings(templateType, locale)

	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, struct {
		Greeting, Name, Body, Action, URL string
	}{
		Greeting: strings.greeting,
		Name:     data.Name,
		Body:     strings.body,
		Action:   strings.action,
		URL:      data.URL,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
