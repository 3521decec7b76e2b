package validation

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/emrealmaoglu/trailium/internal/logger"
)

// ServiceCheck checks one backing service.
type ServiceCheck func(ctx context.Context) error

// ServiceValidator fails start-up when a service marked as required through
// TRAILIUM_REQUIRE_<NAME> is unreachable.
type ServiceValidator struct {
	requiredServices []string
	checks           map[string]ServiceCheck
}

// NewServiceValidator creates a validator for the given named checks.
func NewServiceValidator(checks map[string]ServiceCheck) *ServiceValidator {
	return &ServiceValidator{
		requiredServices: parseRequiredServices(checks),
		checks:           checks,
	}
}

// Required returns the names of the services that must pass.
func (sv *ServiceValidator) Required() []string {
	return sv.requiredServices
}

// ValidateServices runs every required check with a 10 second timeout each.
func (sv *ServiceValidator) ValidateServices(ctx context.Context) error {
	if len(sv.requiredServices) == 0 {
		logger.Log.Info("No required services configured for validation")
		return nil
	}

	logger.Log.Info("Validating required services", zap.Strings("services", sv.requiredServices))

	for _, name := range sv.requiredServices {
		check := sv.checks[name]

		timeoutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := check(timeoutCtx)
		cancel()
		if err != nil {
			logger.Log.Error("Required service validation failed", zap.String("service", name), zap.Error(err))
			return fmt.Errorf("required service %q validation failed: %w", name, err)
		}

		logger.Log.Info("Service validated successfully", zap.String("service", name))
	}
	return nil
}

func parseRequiredServices(checks map[string]ServiceCheck) []string {
	var required []string
	for name := range checks {
		if isTruthy(os.Getenv("TRAILIUM_REQUIRE_" + strings.ToUpper(name))) {
			required = append(required, name)
		}
	}
	sort.Strings(required)
	return required
}

func isTruthy(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}
