package funnel

import (
	"github.com/reviewfunnel/funnel/application/handler"
)

// registerHandlers installs the queue handlers on the worker registry.
func (c *Client) registerHandlers() {
	handler.Register(c.registry, handler.Dependencies{
		Stores: handler.Stores{
			Users:      c.stores.users,
			Businesses: c.stores.businesses,
			Feedback:   c.stores.feedback,
			Leads:      c.stores.leads,
			Signups:    c.stores.signups,
		},
		Renderer:      c.renderer,
		Mailer:        c.mailer,
		Analytics:     c.analytics,
		PublicURL:     c.cfg.PublicURL(),
		NotifyEmail:   c.cfg.Email().NotifyEmail(),
		ResetTokenTTL: c.cfg.Auth().ResetTokenTTL(),
		Logger:        c.logger,
	})
}
