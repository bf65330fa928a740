/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package link

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// OpenWithRetry calls Open until it succeeds, waiting between attempts as b
// dictates. Unavailable and in-use segments are retried, so it also waits for
// the current occupant to release the segment. An invalid conf fails at
// once. A nil b means backoff.NewExponentialBackOff().
//
// When ctx is done or b stops, the last error is returned, or ctx.Err() if
// ctx ended the retries.
func OpenWithRetry(ctx context.Context, name, description string, conf *Config, b backoff.BackOff) (*Link, error) {
	if b == nil {
		b = backoff.NewExponentialBackOff()
	}
	operation := func() (*Link, error) {
		l, err := Open(ctx, name, description, conf)
		if err == nil {
			return l, nil
		}
		if errors.Is(err, ErrSegmentUnavailable) || errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}
	notify := func(err error, next time.Duration) {
		internalLogger.debugf("open link failed, retrying in %s: %v", next, err)
	}
	return backoff.RetryNotifyWithData(operation, backoff.WithContext(b, ctx), notify)
}
