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
	"errors"
	"fmt"
)

var (
	// ErrSegmentUnavailable is returned when the shared segment cannot be
	// opened or mapped. It is expected whenever the voice-chat host is not
	// running.
	ErrSegmentUnavailable = errors.New("link segment unavailable")

	// ErrConflict matches a *ConflictError.
	ErrConflict = errors.New("link segment in use")

	// ErrManuallyClosed is the stored error of a SharedLink after Deactivate
	// or Close.
	ErrManuallyClosed = errors.New("link manually closed")

	// ErrInvalidConfig is returned when a Config fails VerifyConfig.
	ErrInvalidConfig = errors.New("invalid link config")
)

// ConflictError reports that another application owns the segment. Name and
// Description are the occupant's, as it encoded them.
type ConflictError struct {
	Name        string
	Description string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("link in use: %s: %s", e.Name, e.Description)
}

// Is makes errors.Is(err, ErrConflict) match.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
