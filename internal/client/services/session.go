package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/admagic/internal/client/client"
	"github.com/dmitrijs2005/admagic/internal/client/models"
	"github.com/dmitrijs2005/admagic/internal/client/store"
	"github.com/dmitrijs2005/admagic/internal/logging"
)

// SessionFetcher resolves the stored credential into the server-confirmed
// session.
type SessionFetcher struct {
	client client.Client
	store  store.Store
	logger logging.Logger
}

func NewSessionFetcher(c client.Client, s store.Store, l logging.Logger) *SessionFetcher {
	return &SessionFetcher{client: c, store: s, logger: l}
}

// GetSession returns the current session:
//   - no stored credential: empty data, and the server is not contacted;
//   - the server rejects the credential (any non-2xx): the store is cleared
//     and empty data is returned without error;
//   - the server is unreachable: the credential is kept and the error is
//     returned so callers can retry;
//   - the server answers 2xx with an unreadable body: empty data, logged.
func (f *SessionFetcher) GetSession(ctx context.Context) (models.SessionData, error) {
	token, ok, err := f.store.Get(ctx)
	if err != nil {
		return models.SessionData{}, fmt.Errorf("read credential: %w", err)
	}
	if !ok {
		return models.SessionData{}, nil
	}

	data, err := f.client.GetSession(ctx, token)
	if err == nil {
		return data, nil
	}

	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		f.logger.Info(ctx, "credential rejected, clearing", "status", apiErr.StatusCode)
		if clearErr := f.store.Clear(ctx); clearErr != nil {
			return models.SessionData{}, fmt.Errorf("clear credential: %w", clearErr)
		}
		return models.SessionData{}, nil
	case errors.Is(err, client.ErrMalformedResponse):
		f.logger.Warn(ctx, "unreadable session response", "error", err)
		return models.SessionData{}, nil
	default:
		return models.SessionData{}, err
	}
}
