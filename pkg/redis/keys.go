package redis

import "strings"

const keyNamespace = "choki"

// IdempotencyKey addresses the stored response for one Idempotency-Key.
func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey("idempotency", scope, id)
}

// RateLimitKey addresses one fixed-window counter.
func (c *Client) RateLimitKey(scope string) string {
	return buildKey("rate_limit", scope)
}

// LockKey addresses a distributed lock such as the cron-worker cycle lock.
func (c *Client) LockKey(parts ...string) string {
	return buildKey(append([]string{"lock"}, parts...)...)
}

// ActivePromotionsKey is the cache slot for the active promotion set as of
// one write generation.
func (c *Client) ActivePromotionsKey(generation string) string {
	return buildKey("promotions", "active", generation)
}

// PromotionsGenerationKey is bumped on every promotion write.
func (c *Client) PromotionsGenerationKey() string {
	return buildKey("promotions", "generation")
}

func buildKey(parts ...string) string {
	segments := []string{keyNamespace}
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return strings.Join(segments, ":")
}
