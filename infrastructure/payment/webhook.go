package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/reviewfunnel/funnel/domain/billing"
)

// SignatureHeader carries the webhook signature.
const SignatureHeader = "Stripe-Signature"

type eventEnvelope struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object struct {
			ID          string            `json:"id"`
			Customer    string            `json:"customer"`
			AmountTotal int64             `json:"amount_total"`
			Metadata    map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// WebhookVerifier checks "t=<unix>,v1=<hex>" signatures, where the hex value
// is HMAC-SHA256 over "<t>.<body>" keyed with the endpoint secret.
type WebhookVerifier struct {
	secret    []byte
	tolerance time.Duration
}

// NewWebhookVerifier creates a verifier.
func NewWebhookVerifier(secret string, tolerance time.Duration) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret), tolerance: tolerance}
}

// Verify authenticates payload and decodes the event in it.
func (v *WebhookVerifier) Verify(payload []byte, header string, now time.Time) (billing.Event, error) {
	if len(v.secret) == 0 {
		return billing.Event{}, fmt.Errorf("%w: no webhook secret configured", billing.ErrInvalidSignature)
	}

	timestamp, signatures, err := parseHeader(header)
	if err != nil {
		return billing.Event{}, err
	}
	age := now.Sub(time.Unix(timestamp, 0))
	if age > v.tolerance || age < -v.tolerance {
		return billing.Event{}, fmt.Errorf("%w: timestamp outside tolerance", billing.ErrInvalidSignature)
	}

	expected := Sign(v.secret, timestamp, payload)
	matched := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			matched = true
			break
		}
	}
	if !matched {
		return billing.Event{}, fmt.Errorf("%w: no matching signature", billing.ErrInvalidSignature)
	}

	var env eventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return billing.Event{}, fmt.Errorf("%w: malformed event: %v", billing.ErrInvalidSignature, err)
	}
	if env.ID == "" || env.Type == "" {
		return billing.Event{}, fmt.Errorf("%w: event without id or type", billing.ErrInvalidSignature)
	}

	obj := env.Data.Object
	metadata := obj.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	return billing.Event{
		ID:          env.ID,
		Type:        env.Type,
		ObjectID:    obj.ID,
		CustomerID:  obj.Customer,
		AmountTotal: obj.AmountTotal,
		Metadata:    metadata,
		Created:     time.Unix(env.Created, 0).UTC(),
	}, nil
}

// Sign returns the hex v1 signature for payload at timestamp.
func Sign(secret []byte, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeaderValue builds a header value for tests and tooling.
func SignatureHeaderValue(secret string, timestamp int64, payload []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", timestamp, Sign([]byte(secret), timestamp, payload))
}

func parseHeader(header string) (int64, []string, error) {
	var (
		timestamp  int64
		signatures []string
	)
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: bad timestamp", billing.ErrInvalidSignature)
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: malformed signature header", billing.ErrInvalidSignature)
	}
	return timestamp, signatures, nil
}
