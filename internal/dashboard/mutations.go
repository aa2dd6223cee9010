package dashboard

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/vigil/internal/models"
)

// MaxBanMinutes is the longest ban the store column can hold.
const MaxBanMinutes = math.MaxInt32

// ValidationError reports input rejected before reaching the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// rowID converts a caller supplied id into a row key. Non-finite, fractional
// or out of range values can never name a row.
func rowID(id float64) (int64, bool) {
	if math.IsNaN(id) || math.IsInf(id, 0) {
		return 0, false
	}
	if id != math.Trunc(id) || id < math.MinInt64 || id >= math.MaxInt64 {
		return 0, false
	}

	return int64(id), true
}

// UnbanActiveBan deletes the ban with id. An id that is not a finite integer is ignored.
func (s *Service) UnbanActiveBan(ctx context.Context, id float64) error {
	key, ok := rowID(id)
	if !ok {
		log.Debug().Float64("id", id).Msg("Unban ignored, id is not a row key")
		return nil
	}

	return s.store.DeleteActiveBan(ctx, key)
}

// ClosePlayerReport deletes the report with id. An id that is not a finite integer is ignored.
func (s *Service) ClosePlayerReport(ctx context.Context, id float64) error {
	key, ok := rowID(id)
	if !ok {
		log.Debug().Float64("id", id).Msg("Close report ignored, id is not a row key")
		return nil
	}

	return s.store.DeletePlayerReport(ctx, key)
}

// AddActiveBan trims and validates the input, creates the ban and returns the refreshed list.
// Invalid input creates nothing: the current list is returned together with a *ValidationError.
// Fractional lengths are rounded up to whole minutes.
func (s *Service) AddActiveBan(ctx context.Context, username, reason string, lengthMinutes float64) ([]models.ActiveBan, error) {
	username = strings.TrimSpace(username)
	reason = strings.TrimSpace(reason)

	if verr := validateBan(username, reason, lengthMinutes); verr != nil {
		bans, err := s.store.GetActiveBans(ctx)
		if err != nil {
			return nil, err
		}
		return bans, verr
	}

	minutes := int64(math.Ceil(lengthMinutes))
	if err := s.store.CreateActiveBan(ctx, username, reason, minutes); err != nil {
		return nil, err
	}
	log.Debug().Str("username", username).Int64("length_minutes", minutes).Msg("Ban added")

	return s.store.GetActiveBans(ctx)
}

func validateBan(username, reason string, lengthMinutes float64) *ValidationError {
	switch {
	case username == "":
		return &ValidationError{Field: "username", Reason: "must not be empty"}
	case reason == "":
		return &ValidationError{Field: "reason", Reason: "must not be empty"}
	case math.IsNaN(lengthMinutes) || math.IsInf(lengthMinutes, 0):
		return &ValidationError{Field: "length_minutes", Reason: "must be a finite number"}
	case lengthMinutes <= 0:
		return &ValidationError{Field: "length_minutes", Reason: "must be positive"}
	case math.Ceil(lengthMinutes) > MaxBanMinutes:
		return &ValidationError{Field: "length_minutes", Reason: fmt.Sprintf("must not exceed %d", MaxBanMinutes)}
	}

	return nil
}
