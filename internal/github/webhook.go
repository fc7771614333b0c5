package github

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v66/github"
)

// ErrInvalidSignature is returned when a webhook fails HMAC verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

const maxPayloadBytes = 25 << 20

// PushEvent is the part of a push notification the dispatcher needs.
type PushEvent struct {
	Repo   string
	Branch string
}

// ParsePushEvent reads a webhook delivery. It returns ok=false for events
// other than branch pushes. When secret is non-empty the payload signature
// must verify.
func ParsePushEvent(r *http.Request, secret string) (*PushEvent, bool, error) {
	var (
		payload []byte
		err     error
	)
	if secret != "" {
		payload, err = gh.ValidatePayload(r, []byte(secret))
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	} else {
		payload, err = readPayload(r)
		if err != nil {
			return nil, false, err
		}
	}

	eventType := gh.WebHookType(r)
	if eventType != "push" {
		return nil, false, nil
	}

	parsed, err := gh.ParseWebHook(eventType, payload)
	if err != nil {
		return nil, false, fmt.Errorf("parse push event: %w", err)
	}
	push, ok := parsed.(*gh.PushEvent)
	if !ok {
		return nil, false, fmt.Errorf("parse push event: unexpected type %T", parsed)
	}

	ref := push.GetRef()
	if !strings.HasPrefix(ref, "refs/heads/") {
		return nil, false, nil
	}
	return &PushEvent{
		Repo:   push.GetRepo().GetFullName(),
		Branch: strings.TrimPrefix(ref, "refs/heads/"),
	}, true, nil
}

func readPayload(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read webhook body: %w", err)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/x-www-form-urlencoded" {
		return body, nil
	}
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse webhook form: %w", err)
	}
	return []byte(form.Get("payload")), nil
}
