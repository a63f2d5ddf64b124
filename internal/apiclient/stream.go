package apiclient

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
)

// ChangeFeed is the observer-side push channel for one session code, backed
// by the server's SSE stream.
type ChangeFeed struct {
	client *Client
	code   string
	// Long-lived connection: no request timeout, keepalive comments from
	// the server detect dead peers; the subscribe context owns cancellation.
	http *http.Client
}

func (c *Client) ChangeFeed(code string) *ChangeFeed {
	return &ChangeFeed{
		client: c,
		code:   code,
		http:   &http.Client{},
	}
}

// Subscribe delivers a coalesced wake per change event. The connection is
// re-established with backoff for as long as the context lives; a dropped
// stream only degrades the observer to its poll interval in the meantime.
func (f *ChangeFeed) Subscribe(ctx context.Context) (<-chan struct{}, func(), error) {
	streamCtx, cancel := context.WithCancel(ctx)
	wake := make(chan struct{}, 1)

	go func() {
		defer close(wake)
		_ = retry.Do(
			func() error { return f.readStream(streamCtx, wake) },
			retry.Context(streamCtx),
			retry.Attempts(0),
			retry.Delay(time.Second),
			retry.MaxDelay(30*time.Second),
			retry.LastErrorOnly(true),
		)
	}()

	return wake, cancel, nil
}

// readStream consumes one SSE connection until it drops. Every "change"
// event becomes a wake.
func (f *ChangeFeed) readStream(ctx context.Context, wake chan<- struct{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/sessions/%s/stream", f.client.baseURL, f.code), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := f.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream returned %s", resp.Status)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "event: change") {
			select {
			case wake <- struct{}{}:
			default:
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return fmt.Errorf("stream closed")
}
