package resolver

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/nontonanime/api/internal/apperrors"
	"github.com/nontonanime/api/internal/config"
	"github.com/nontonanime/api/internal/models"
)

const tokenPath = "/video/get-token.php"

type tokenRequest struct {
	URL string `json:"url"`
}

// AcquireToken asks the resolver host for the challenge/token/timestamp triple bound to targetURL.
// Every failure is reported as *apperrors.ErrTokenAcquisitionFailed.
func (r *Resolver) AcquireToken(ctx context.Context, targetURL string) (models.SecurityToken, error) {
	logger := config.GetLogger()

	token, err := r.acquireToken(ctx, targetURL)
	if err != nil {
		logger.Error().Err(err).Str("target", targetURL).Msg("Failed to acquire security token")
		return models.SecurityToken{}, &apperrors.ErrTokenAcquisitionFailed{TargetURL: targetURL, Err: err}
	}

	logger.Debug().Str("target", targetURL).Msg("Acquired security token")
	return token, nil
}

func (r *Resolver) acquireToken(ctx context.Context, targetURL string) (models.SecurityToken, error) {
	payload, err := encodeJSON(tokenRequest{URL: targetURL})
	if err != nil {
		return models.SecurityToken{}, err
	}

	endpoint := r.host + tokenPath
	body, err := r.postJSON(ctx, stageToken, endpoint, payload, func(req *http.Request) {
		r.headers.applyAPI(req, targetURL)
	})
	if err != nil {
		return models.SecurityToken{}, err
	}

	return parseToken(body)
}

// parseToken reads the triple with its raw textual values, so a numeric timestamp keeps its exact digits.
func parseToken(body []byte) (models.SecurityToken, error) {
	if !gjson.ValidBytes(body) {
		return models.SecurityToken{}, errors.New("token response is not valid JSON")
	}

	fields := gjson.GetManyBytes(body, "challenge", "token", "timestamp")
	for i, name := range []string{"challenge", "token", "timestamp"} {
		if !fields[i].Exists() || fields[i].Type == gjson.Null {
			return models.SecurityToken{}, errors.New("token response has no " + name)
		}
	}

	return models.SecurityToken{
		Challenge: rawString(fields[0]),
		Token:     rawString(fields[1]),
		Timestamp: rawString(fields[2]),
	}, nil
}

// rawString returns strings unquoted and every other JSON value as written.
func rawString(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.String()
	}
	return v.Raw
}

// postJSON sends a JSON POST and returns the body of a 2xx response.
func (r *Resolver) postJSON(ctx context.Context, stage, endpoint string, payload []byte, decorate func(*http.Request)) ([]byte, error) {
	return r.roundTrip(ctx, stage, endpoint, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		decorate(req)
		return req, nil
	})
}
