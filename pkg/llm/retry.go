package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/hyperxav/clara/pkg/clients"
)

const maxRetries = 3

var retryExecutor = clients.NewHTTPExecutor(clients.HTTPExecutorConfig{
	MaxRetries:  maxRetries,
	BaseDelay:   250 * time.Millisecond,
	MaxDelay:    4 * time.Second,
	ShouldRetry: clients.DefaultShouldRetry,
})

// doWithRetry sends the request built by build, retrying on transport errors,
// 429 and 5xx. When retries run out the last response is returned as is.
func doWithRetry(ctx context.Context, client *http.Client, build func() (*http.Request, error)) (*http.Response, error) {
	return clients.Do(ctx, client, retryExecutor, clients.DefaultShouldRetry, func(context.Context) (*http.Request, error) {
		return build()
	})
}
