package app

import (
	"fmt"

	"github.com/kilianp07/energyadvisor/auth"
	"github.com/kilianp07/energyadvisor/config"
	"github.com/kilianp07/energyadvisor/connectors/pricefeed"
	"github.com/kilianp07/energyadvisor/core/price"
	"github.com/kilianp07/energyadvisor/infra/logger"
	"github.com/kilianp07/energyadvisor/infra/mqtt"
)

// newPriceSource builds the source selected by cfg.Price.Mode. In mqtt mode
// the returned source is client itself.
func newPriceSource(cfg config.PriceConfig, client *mqtt.PahoClient) (price.Source, error) {
	switch cfg.Mode {
	case config.PriceModeMQTT:
		if client == nil {
			return nil, fmt.Errorf("price mode mqtt without mqtt client")
		}
		return client, nil
	case config.PriceModeHTTP:
		opts := []pricefeed.Option{
			pricefeed.WithFormat(cfg.Format),
			pricefeed.WithTimeout(cfg.FetchTimeout()),
			pricefeed.WithLogger(logger.New("pricefeed")),
		}
		if cfg.Auth.Enabled() {
			opts = append(opts, pricefeed.WithClientCredentials(auth.NewClientCred(cfg.Auth)))
		} else if cfg.Token != "" {
			opts = append(opts, pricefeed.WithBearerToken(cfg.Token))
		}
		return pricefeed.New(cfg.URL, opts...)
	case config.PriceModeFile:
		return price.FileSource{Path: cfg.Path}, nil
	default:
		return nil, fmt.Errorf("unknown price mode %s", cfg.Mode)
	}
}
