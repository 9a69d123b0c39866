// Package resolver turns unreliable upstream payloads into normalized
// earnings-date and market-cap resolutions. Resolve calls are total: every
// upstream failure is absorbed into a tagged result.
package resolver

import (
	"context"
	"errors"
	"net/http"

	"github.com/tonywu212005-glitch/sp500-app/internal/infra"
	"github.com/tonywu212005-glitch/sp500-app/internal/provider"
	"github.com/tonywu212005-glitch/sp500-app/pkg/models"
)

// EarningsSource resolves next earnings dates.
type EarningsSource interface {
	Resolve(ctx context.Context, symbol string) models.EarningsResolution
}

// CapSource resolves market capitalizations.
type CapSource interface {
	Resolve(ctx context.Context, symbol string) models.CapResolution
}

// Classify maps a fetch error to a resolution status.
func Classify(err error) models.Status {
	if err == nil {
		return models.StatusOK
	}

	var notFound *provider.ErrProviderNotFound
	var unsupported *provider.ErrModelNotSupported
	var badCreds *provider.ErrInvalidCredentials
	switch {
	case errors.As(err, &notFound), errors.As(err, &unsupported):
		return models.StatusProviderUnavailable
	case errors.As(err, &badCreds):
		return models.StatusAuthError
	}

	switch code := infra.StatusCode(err); {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return models.StatusAuthError
	case code == http.StatusTooManyRequests:
		return models.StatusQuotaExceeded
	}
	return models.StatusTransportError
}

// classifyFrom is Classify for a failure of the named provider. A 401 or
// 403 only means a rejected key when the provider declares a required
// credential; keyless upstreams answer that way for session problems too.
func classifyFrom(reg *provider.Registry, name string, err error) models.Status {
	status := Classify(err)
	if status == models.StatusAuthError && !needsKey(reg, name) {
		return models.StatusTransportError
	}
	return status
}

func needsKey(reg *provider.Registry, name string) bool {
	p, err := reg.Get(name)
	if err != nil {
		return false
	}
	for _, c := range p.Info().Credentials {
		if c.Required {
			return true
		}
	}
	return false
}

// attempts tracks the most severe failure across providers.
type attempts struct {
	worst     models.Status
	worstFrom string
}

func newAttempts() *attempts {
	return &attempts{worst: models.StatusNoData}
}

func (a *attempts) record(name string, s models.Status) {
	if s.Severity() > a.worst.Severity() {
		a.worst, a.worstFrom = s, name
	}
}

// detail is the user-facing explanation of the worst failure, naming the
// provider when the status alone does not say which one is missing.
func (a *attempts) detail() string {
	if a.worst == models.StatusProviderUnavailable && a.worstFrom != "" {
		return a.worst.Message() + ": " + a.worstFrom
	}
	return a.worst.Message()
}
