// Package provider implements the wallet-provider API client: payment
// request creation, transaction retrieval and refunds against the Swish
// commerce API, in its production, sandbox and legacy certificate variants.
package provider

import (
	"fmt"
	"log/slog"

	swishpay "github.com/commercekit/swishpay"
)

// Default API endpoints per connection mode. Config.BaseURL overrides.
const (
	ProductionBaseURL = "https://cpc.getswish.net/swish-cpcapi"
	SandboxBaseURL    = "https://mss.cpc.getswish.net/swish-cpcapi"
)

// New builds the provider client for the configured connection mode.
//
// Production and sandbox differ only in endpoint and in the sandbox's fixed
// test merchant alias (applied upstream by the gateway). The legacy mode
// talks to the production endpoint but authenticates with the merchant's
// own TLS client certificate.
func New(cfg *swishpay.Config, log *slog.Logger) (swishpay.ProviderClient, error) {
	if log == nil {
		log = slog.Default()
	}

	switch cfg.Mode {
	case swishpay.ModeProduction:
		return newClient(cfg, firstNonEmpty(cfg.BaseURL, ProductionBaseURL), nil, log), nil

	case swishpay.ModeSandbox:
		return newClient(cfg, firstNonEmpty(cfg.BaseURL, SandboxBaseURL), nil, log), nil

	case swishpay.ModeLegacy:
		if cfg.CertFile == "" || cfg.KeyFile == "" {
			return nil, &swishpay.ConfigurationError{Reason: "legacy connection requires a client certificate and key"}
		}
		tlsConf, err := legacyTLSConfig(cfg.CertFile, cfg.KeyFile, cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load legacy certificate: %w", err)
		}
		return newClient(cfg, firstNonEmpty(cfg.BaseURL, ProductionBaseURL), tlsConf, log), nil

	default:
		return nil, &swishpay.ConfigurationError{Reason: fmt.Sprintf("unknown connection mode %q", cfg.Mode)}
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
