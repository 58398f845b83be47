package cache

import (
	"context"
	"time"
)

type Bucket struct {
	Name     string
	Requests int
	Window   time.Duration
}

type Decision struct {
	Allowed    bool
	Made       int
	RetryAfter time.Duration
}

// Allow counts one request by id against bucket with a fixed window. The
// window starts at the first request. Without Redis every request passes.
func (r *Redis) Allow(ctx context.Context, bucket Bucket, id string) (Decision, error) {
	if r.isUnavailable() || bucket.Requests <= 0 {
		return Decision{Allowed: true}, nil
	}

	key := "rl:" + id + "-" + bucket.Name

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, bucket.Window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		r.warnUnavailableOnce(err)
		return Decision{Allowed: true}, err
	}

	made := int(incr.Val())
	if made > bucket.Requests {
		retry := ttl.Val()
		if retry < 0 {
			retry = bucket.Window
		}
		return Decision{Allowed: false, Made: made, RetryAfter: retry}, nil
	}
	return Decision{Allowed: true, Made: made}, nil
}
