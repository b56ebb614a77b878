package v1

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/business"
	"github.com/reviewfunnel/funnel/domain/lead"
)

// pathID parses a positive integer URL parameter.
func pathID(req *http.Request, name string) (int64, error) {
	raw := chi.URLParam(req, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", domain.ErrValidation, name, raw)
	}
	return id, nil
}

func queryBool(req *http.Request, name string) (*bool, error) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be true or false", domain.ErrValidation, name)
	}
	return &v, nil
}

func parseLeadStatus(raw string) (lead.Status, error) {
	if raw == "" {
		return "", nil
	}
	return lead.ParseStatus(raw)
}

func parseInviteStatus(raw string) (lead.InviteStatus, error) {
	switch s := lead.InviteStatus(strings.ToLower(raw)); s {
	case "", lead.InviteUnused, lead.InviteUsed, lead.InviteRevoked:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown invite status %q", domain.ErrValidation, raw)
	}
}

func parseSignupStatus(raw string) (lead.SignupStatus, error) {
	switch s := lead.SignupStatus(strings.ToLower(raw)); s {
	case "", lead.SignupPending, lead.SignupPaid:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown signup status %q", domain.ErrValidation, raw)
	}
}

func parseSubscription(raw string) (business.SubscriptionStatus, error) {
	switch s := business.SubscriptionStatus(strings.ToLower(raw)); s {
	case "", business.SubscriptionPending, business.SubscriptionActive, business.SubscriptionCanceled:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown subscription status %q", domain.ErrValidation, raw)
	}
}

// platformUpdates converts request keys to platforms, rejecting unknown ones.
func platformUpdates(in map[string]*string) (map[business.Platform]*string, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[business.Platform]*string, len(in))
	for k, v := range in {
		p, err := business.ParsePlatform(k)
		if err != nil {
			return nil, err
		}
		out[p] = v
	}
	return out, nil
}
