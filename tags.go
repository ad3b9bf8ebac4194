package tagcache

import "context"

// Tag index: membership lives in the backend as prefixed sets
// (tag:<ns>:<tag> -> set of storage keys). This is the only index direction;
// there is no key->tags structure, so naturally expired members linger in a
// set until the next sweep deletes them a second time, harmlessly.

// registerTags adds storageKey to every tag's membership set. Called after
// the value write succeeded.
func (cc *cache[V]) registerTags(ctx context.Context, storageKey string, tags []string) error {
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if err := cc.be.SetAdd(ctx, cc.tagKey(tag), storageKey); err != nil {
			return err
		}
	}
	return nil
}

// Invalidate sweeps each tag: fetch members, delete them, drop the set.
// Idempotent; a tag with no members is a no-op. Failures are collected per
// tag so one broken sweep does not shield the remaining tags.
func (cc *cache[V]) Invalidate(ctx context.Context, tags ...string) error {
	if !cc.enabled || len(tags) == 0 {
		return nil
	}

	var failedTags []string
	var failedErrs []error
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if err := cc.sweepTag(ctx, tag); err != nil {
			failedTags = append(failedTags, tag)
			failedErrs = append(failedErrs, err)
		}
	}
	if len(failedTags) > 0 {
		cc.stats.errors.Add(1)
		return &InvalidateError{Tags: failedTags, Errs: failedErrs}
	}
	cc.stats.invalidations.Add(1)
	return nil
}

func (cc *cache[V]) sweepTag(ctx context.Context, tag string) error {
	tk := cc.tagKey(tag)
	members, err := cc.be.SetMembers(ctx, tk)
	if err != nil {
		return err
	}
	cc.hooks.TagSweep(tag, len(members))
	if len(members) > 0 {
		// Members are full storage keys; some may already be expired or
		// deleted. DelMany is idempotent per key, overlap with other tags
		// costs one extra harmless delete.
		if err := cc.be.DelMany(ctx, members); err != nil {
			return err
		}
	}
	if err := cc.be.SetDrop(ctx, tk); err != nil {
		return err
	}
	cc.log.Debug("tag swept", Fields{"tag": tag, "members": len(members)})
	return nil
}
