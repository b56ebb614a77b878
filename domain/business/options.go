package business

import "github.com/reviewfunnel/funnel/domain/repository"

// WithSlug filters by the "slug" column, matching links regardless of case.
func WithSlug(slug string) repository.Option {
	return repository.WithCondition("slug", NormalizeSlug(slug))
}

// WithOwnerID filters by the "owner_id" column.
func WithOwnerID(userID int64) repository.Option {
	return repository.WithCondition("owner_id", userID)
}

// WithCustomerRef filters by the "customer_ref" column.
func WithCustomerRef(ref string) repository.Option {
	return repository.WithCondition("customer_ref", ref)
}

// WithSubscription filters by the "subscription_status" column.
func WithSubscription(status SubscriptionStatus) repository.Option {
	return repository.WithCondition("subscription_status", string(status))
}

// WithPlatform filters templates by the "platform" column.
func WithPlatform(p Platform) repository.Option {
	return repository.WithCondition("platform", string(p))
}

// WithNameLike filters businesses whose name or slug contains term.
func WithNameLike(term string) repository.Option {
	like := "%" + term + "%"
	return repository.WithWhere("(LOWER(name) LIKE LOWER(?) OR slug LIKE LOWER(?))", like, like)
}
