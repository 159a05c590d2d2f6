package extractors

import (
	"fmt"

	"github.com/custodia-labs/rfqx/internal/core/domain"
)

// Failed wraps err as an extraction failure of the named strategy.
func Failed(strategy string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", strategy, domain.ErrExtractionFailed)
	}
	return fmt.Errorf("%s: %w: %w", strategy, domain.ErrExtractionFailed, err)
}

// Recover turns a panic in a third-party reader into an extraction failure.
// It must be deferred directly:
//
//	defer extractors.Recover("pdf", &err)
func Recover(strategy string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: %w: panic: %v", strategy, domain.ErrExtractionFailed, r)
	}
}
