package httputil

import (
	"net/http"
	"time"

	"iv_housing/config"
)

const maxRedirects = 5

type Clients struct {
	Scraping *http.Client // source directory pages, fixed timeout ceiling
}

func NewClients(fetchCfg *config.FetchConfig) *Clients {
	timeout := fetchCfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout

	return &Clients{
		Scraping: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}
