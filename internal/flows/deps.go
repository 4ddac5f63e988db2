package flows

import (
	"context"
	"net/http"
)

// HTTPDoer issues one HTTP round trip. *http.Client satisfies it; tests
// substitute failing or scripted transports.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SessionState is the slice of the session store the send flow needs: a
// consistent token-pair read and the clear used on auth expiry.
type SessionState interface {
	Tokens() (access, refresh string)
	Clear(ctx context.Context) error
}
