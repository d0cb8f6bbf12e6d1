package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/papercomputeco/marcus/pkg/metrics"
	"github.com/papercomputeco/marcus/pkg/models"
)

const (
	// DefaultBaseURL is where a locally started service listens.
	DefaultBaseURL = "http://localhost:7777"

	// DefaultTimeout bounds a single-shot call, and the wait for response
	// headers of a streaming call.
	DefaultTimeout = 20 * time.Second
)

// Config configures a Client.
type Config struct {
	// BaseURL of the service, e.g. "http://localhost:7777". Required.
	BaseURL string

	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration

	// IdleTimeout bounds each read of a streaming body. Zero means Timeout;
	// a negative value disables it.
	IdleTimeout time.Duration

	// HTTPClient defaults to a new client using http.DefaultTransport. Its
	// own Timeout should be left at zero, since it would also cut off long
	// streams.
	HTTPClient *http.Client

	// Models, when set, rejects unknown model identifiers before sending.
	Models *models.Registry

	// MapModels sends the provider identifier from Models instead of the
	// caller's identifier.
	MapModels bool

	// DoneSentinel, when set, ends streams at a frame with this payload.
	DoneSentinel string

	// UserAgent defaults to "marcus/<version>".
	UserAgent string

	Logger  *slog.Logger
	Metrics *metrics.Collectors
}
