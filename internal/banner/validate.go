package banner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xtding233/gacha-sim/internal/gacha"
)

// Validate checks semantic constraints of a Document.
func Validate(d Document) error {
	var errs []string

	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, "name must not be empty")
	}
	if len(d.UpLimit) > 1 {
		errs = append(errs, "upLimit holds at most one item")
	}
	for _, item := range d.UpLimit {
		for _, alert := range d.UpAlertLimit {
			if item == alert {
				errs = append(errs, fmt.Sprintf("%q is in both upLimit and upAlertLimit", item))
			}
		}
	}
	if err := d.Config().Validate(); err != nil {
		msg := strings.TrimPrefix(err.Error(), gacha.ErrInvalidBanner.Error()+": ")
		if !errors.Is(err, gacha.ErrInvalidBanner) {
			msg = err.Error()
		}
		errs = append(errs, msg)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}
