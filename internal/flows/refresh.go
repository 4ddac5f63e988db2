package flows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureBuild
	RefreshFailureNetwork
	RefreshFailureRejected
	RefreshFailureDecode
)

// RefreshResult carries either the minted token pair or failure metadata.
// RefreshToken is empty when the backend chose not to rotate it.
type RefreshResult struct {
	Failure      RefreshFailureKind
	Err          error
	Status       int
	AccessToken  string
	RefreshToken string
	RequestID    string
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	Client       HTTPDoer
	BaseURL      url.URL
	Path         string
	UserAgent    string
	NewRequestID func() string
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RunRefresh calls the token-refresh endpoint with the given refresh token.
// It performs exactly one attempt; there is no retry for refresh itself.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	payload, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return RefreshResult{Failure: RefreshFailureBuild, Err: err}
	}

	path := deps.Path
	if path == "" {
		path = "/auth/token/refresh"
	}

	call := Call{
		Method: http.MethodPost,
		Path:   path,
		Body:   payload,
		NoAuth: true,
	}
	sendDeps := SendDeps{
		Client:       deps.Client,
		BaseURL:      deps.BaseURL,
		UserAgent:    deps.UserAgent,
		NewRequestID: deps.NewRequestID,
	}

	req, requestID, err := buildRequest(ctx, call, "", sendDeps)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureBuild, Err: err}
	}

	res, err := roundTrip(deps.Client, req)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureNetwork, Err: err, RequestID: requestID}
	}

	if res.status < 200 || res.status > 299 {
		return RefreshResult{
			Failure:   RefreshFailureRejected,
			Err:       fmt.Errorf("refresh endpoint returned status %d", res.status),
			Status:    res.status,
			RequestID: requestID,
		}
	}

	var decoded refreshResponse
	if err := json.Unmarshal(res.payload, &decoded); err != nil {
		return RefreshResult{Failure: RefreshFailureDecode, Err: err, Status: res.status, RequestID: requestID}
	}
	if decoded.AccessToken == "" {
		return RefreshResult{
			Failure:   RefreshFailureDecode,
			Err:       errors.New("refresh response carries no access token"),
			Status:    res.status,
			RequestID: requestID,
		}
	}

	return RefreshResult{
		Status:       res.status,
		AccessToken:  decoded.AccessToken,
		RefreshToken: decoded.RefreshToken,
		RequestID:    requestID,
	}
}
