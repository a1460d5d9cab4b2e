package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/consultport/backend/internal/domain"
	"github.com/consultport/backend/pkg/oauth"
	"github.com/consultport/backend/pkg/tracker"
)

// tokenEndpoint is a fake OAuth token endpoint that counts exchanges and
// issues sequentially numbered token pairs.
type tokenEndpoint struct {
	srv       *httptest.Server
	exchanges atomic.Int64
	reject    atomic.Bool
	delay     time.Duration
}

func newTokenEndpoint(t *testing.T) *tokenEndpoint {
	te := &tokenEndpoint{}
	te.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if te.delay > 0 {
			time.Sleep(te.delay)
		}
		if te.reject.Load() {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant","error_description":"Token expired"}`))
			return
		}
		n := te.exchanges.Add(1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  fmt.Sprintf("access-%d", n),
			"refresh_token": fmt.Sprintf("refresh-%d", n),
			"token_type":    "bearer",
			"expires_in":    3600,
		})
	}))
	t.Cleanup(te.srv.Close)
	return te
}

func newTestTrackerUsecase(t *testing.T, apiURL string) (*TrackerUsecase, *tokenEndpoint, *fakeProviderTokenRepo) {
	te := newTokenEndpoint(t)
	oauthClient := oauth.NewClient(oauth.Config{
		ClientID:     "cid",
		ClientSecret: "csecret",
		AuthURL:      "https://id.tracker.test/oauth/authorize",
		TokenURL:     te.srv.URL,
		RedirectURL:  "https://portal.test/callback",
	})
	repo := newFakeProviderTokenRepo()
	return NewTrackerUsecase(oauthClient, tracker.NewClient(apiURL), repo), te, repo
}

func storeToken(t *testing.T, repo *fakeProviderTokenRepo, userID uuid.UUID, access, refresh string, expiresAt time.Time) {
	t.Helper()
	require.NoError(t, repo.Upsert(&domain.ProviderToken{
		UserID:       userID,
		Provider:     domain.ProviderTracker,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    &expiresAt,
	}))
}

func TestEnsureAccessToken_FreshTokenUsedAsIs(t *testing.T) {
	u, te, repo := newTestTrackerUsecase(t, "http://unused.test")
	userID := uuid.New()
	storeToken(t, repo, userID, "current-access", "current-refresh", time.Now().Add(time.Hour))

	token, err := u.ensureAccessToken(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, "current-access", token)
	require.Zero(t, te.exchanges.Load())
}

func TestEnsureAccessToken_NotConnected(t *testing.T) {
	u, _, _ := newTestTrackerUsecase(t, "http://unused.test")

	_, err := u.ensureAccessToken(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrTrackerNotConnected)
}

func TestEnsureAccessToken_RefreshesExpiredToken(t *testing.T) {
	u, te, repo := newTestTrackerUsecase(t, "http://unused.test")
	userID := uuid.New()
	storeToken(t, repo, userID, "stale-access", "stale-refresh", time.Now().Add(time.Minute))

	token, err := u.ensureAccessToken(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, "access-1", token)
	require.Equal(t, int64(1), te.exchanges.Load())

	// The whole pair was rotated and the expiry recomputed.
	stored, err := repo.GetByUserID(userID, domain.ProviderTracker)
	require.NoError(t, err)
	require.Equal(t, "access-1", stored.AccessToken)
	require.Equal(t, "refresh-1", stored.RefreshToken)
	require.NotNil(t, stored.ExpiresAt)
	require.WithinDuration(t, time.Now().Add(time.Hour), *stored.ExpiresAt, 10*time.Second)
}

func TestEnsureAccessToken_NilExpiryForcesRefresh(t *testing.T) {
	u, te, repo := newTestTrackerUsecase(t, "http://unused.test")
	userID := uuid.New()
	require.NoError(t, repo.Upsert(&domain.ProviderToken{
		UserID:       userID,
		Provider:     domain.ProviderTracker,
		AccessToken:  "unknown-age",
		RefreshToken: "stale-refresh",
	}))

	token, err := u.ensureAccessToken(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, "access-1", token)
	require.Equal(t, int64(1), te.exchanges.Load())
}

func TestEnsureAccessToken_ReauthRequired(t *testing.T) {
	u, te, repo := newTestTrackerUsecase(t, "http://unused.test")
	userID := uuid.New()
	storeToken(t, repo, userID, "stale-access", "revoked-refresh", time.Now().Add(-time.Hour))
	te.reject.Store(true)

	_, err := u.ensureAccessToken(context.Background(), userID)
	require.ErrorIs(t, err, ErrReauthRequired)

	// The dead token pair was removed so the next attempt reports
	// not-connected instead of retrying a refresh that cannot succeed.
	stored, err := repo.GetByUserID(userID, domain.ProviderTracker)
	require.NoError(t, err)
	require.Nil(t, stored)
}

func TestEnsureAccessToken_TransportFailureKeepsStoredPair(t *testing.T) {
	u, te, repo := newTestTrackerUsecase(t, "http://unused.test")
	userID := uuid.New()
	storeToken(t, repo, userID, "stale-access", "still-good-refresh", time.Now().Add(-time.Hour))
	te.srv.Close() // token endpoint unreachable

	_, err := u.ensureAccessToken(context.Background(), userID)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrReauthRequired)

	var oerr *oauth.Error
	require.ErrorAs(t, err, &oerr)
	require.Equal(t, oauth.KindTransport, oerr.Kind)

	// The refresh token may still be valid; it has to survive the outage so a
	// later attempt can retry the same exchange.
	stored, err := repo.GetByUserID(userID, domain.ProviderTracker)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "still-good-refresh", stored.RefreshToken)
}

func TestRefreshAccessToken_ConcurrentCallersShareOneExchange(t *testing.T) {
	u, te, repo := newTestTrackerUsecase(t, "http://unused.test")
	userID := uuid.New()
	storeToken(t, repo, userID, "stale-access", "stale-refresh", time.Now().Add(-time.Hour))
	te.delay = 50 * time.Millisecond

	const callers = 16
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = u.ensureAccessToken(context.Background(), userID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, "access-1", results[i])
	}
	require.Equal(t, int64(1), te.exchanges.Load(), "concurrent refreshes must collapse onto one exchange")
}

func TestWithToken_RetriesOnceAfterRevocation(t *testing.T) {
	var apiCalls atomic.Int64
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiCalls.Add(1) == 1 {
			// Token revoked out of band even though its expiry looked fine.
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_token"}`))
			return
		}
		require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(tracker.TimeEntryList{TotalEntries: 0})
	}))
	defer api.Close()

	u, te, repo := newTestTrackerUsecase(t, api.URL)
	userID := uuid.New()
	storeToken(t, repo, userID, "revoked-access", "good-refresh", time.Now().Add(time.Hour))

	_, err := u.ListTimeEntries(context.Background(), userID, tracker.TimeEntryListOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(2), apiCalls.Load())
	require.Equal(t, int64(1), te.exchanges.Load())
}

func TestConnectAndStatus(t *testing.T) {
	u, te, repo := newTestTrackerUsecase(t, "http://unused.test")
	userID := uuid.New()

	status, err := u.Status(userID)
	require.NoError(t, err)
	require.False(t, status.Connected)

	require.NoError(t, u.Connect(context.Background(), userID, "auth-code"))
	require.Equal(t, int64(1), te.exchanges.Load())

	status, err = u.Status(userID)
	require.NoError(t, err)
	require.True(t, status.Connected)
	require.NotNil(t, status.ExpiresAt)

	stored, err := repo.GetByUserID(userID, domain.ProviderTracker)
	require.NoError(t, err)
	require.Equal(t, "access-1", stored.AccessToken)

	require.NoError(t, u.Disconnect(userID))
	status, err = u.Status(userID)
	require.NoError(t, err)
	require.False(t, status.Connected)
}

func TestApprovalTransitions(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		json.NewEncoder(w).Encode(tracker.TimeEntry{ID: 42, State: payload["state"]})
	}))
	defer api.Close()

	u, _, repo := newTestTrackerUsecase(t, api.URL)
	adminID := uuid.New()
	storeToken(t, repo, adminID, "admin-access", "admin-refresh", time.Now().Add(time.Hour))

	entry, err := u.SubmitTimeEntry(context.Background(), adminID, 42)
	require.NoError(t, err)
	require.Equal(t, tracker.StateSubmitted, entry.State)

	entry, err = u.ApproveTimeEntry(context.Background(), adminID, 42)
	require.NoError(t, err)
	require.Equal(t, tracker.StateApproved, entry.State)

	entry, err = u.RejectTimeEntry(context.Background(), adminID, 42)
	require.NoError(t, err)
	require.Equal(t, tracker.StateRejected, entry.State)
}
