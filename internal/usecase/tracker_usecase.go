package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/consultport/backend/internal/domain"
	"github.com/consultport/backend/pkg/oauth"
	"github.com/consultport/backend/pkg/tracker"
)

var (
	// ErrTrackerNotConnected: the user has never linked a tracker account.
	ErrTrackerNotConnected = errors.New("tracker account not connected")
	// ErrReauthRequired: the stored refresh token is no longer usable; the
	// user must go through the tracker authorization flow again.
	ErrReauthRequired = errors.New("tracker re-authentication required")
)

// TrackerUsecase proxies CRUD operations to the time-tracking SaaS on behalf
// of portal users, keeping each user's OAuth access token fresh along the way.
type TrackerUsecase struct {
	oauthClient  *oauth.Client
	api          *tracker.Client
	providerRepo domain.ProviderTokenRepository

	// refreshGroup collapses concurrent refresh attempts for the same user
	// onto one in-flight exchange. Without it, two concurrent requests would
	// both present the same refresh token and the loser would burn a token
	// the provider has already invalidated.
	refreshGroup singleflight.Group
}

func NewTrackerUsecase(oauthClient *oauth.Client, api *tracker.Client, providerRepo domain.ProviderTokenRepository) *TrackerUsecase {
	return &TrackerUsecase{
		oauthClient:  oauthClient,
		api:          api,
		providerRepo: providerRepo,
	}
}

// AuthorizationURL returns the tracker consent URL for the connect flow.
func (u *TrackerUsecase) AuthorizationURL(state string) string {
	return u.oauthClient.AuthorizationURL(state)
}

// Connect exchanges an authorization code and stores the resulting token pair
// for the user.
func (u *TrackerUsecase) Connect(ctx context.Context, userID uuid.UUID, code string) error {
	pair, err := u.oauthClient.ExchangeCode(ctx, code)
	if err != nil {
		return err
	}
	return u.persistPair(userID, pair)
}

func (u *TrackerUsecase) Disconnect(userID uuid.UUID) error {
	return u.providerRepo.DeleteByUserID(userID, domain.ProviderTracker)
}

type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	ExpiresAt *int64 `json:"expires_at,omitempty"`
	Provider  string `json:"provider"`
}

func (u *TrackerUsecase) Status(userID uuid.UUID) (*ConnectionStatus, error) {
	stored, err := u.providerRepo.GetByUserID(userID, domain.ProviderTracker)
	if err != nil {
		return nil, err
	}

	status := &ConnectionStatus{Provider: domain.ProviderTracker}
	if stored != nil {
		status.Connected = true
		if stored.ExpiresAt != nil {
			unix := stored.ExpiresAt.Unix()
			status.ExpiresAt = &unix
		}
	}
	return status, nil
}

func (u *TrackerUsecase) persistPair(userID uuid.UUID, pair *oauth.TokenPair) error {
	expiresAt := oauth.ComputeExpiry(pair.ExpiresIn)
	return u.providerRepo.Upsert(&domain.ProviderToken{
		UserID:       userID,
		Provider:     domain.ProviderTracker,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    &expiresAt,
	})
}

// ensureAccessToken returns an access token that is valid for at least the
// expiry buffer, refreshing through the token endpoint when needed.
func (u *TrackerUsecase) ensureAccessToken(ctx context.Context, userID uuid.UUID) (string, error) {
	stored, err := u.providerRepo.GetByUserID(userID, domain.ProviderTracker)
	if err != nil {
		return "", err
	}
	if stored == nil {
		return "", ErrTrackerNotConnected
	}

	if !oauth.IsExpired(stored.ExpiresAt, oauth.DefaultExpiryBuffer) {
		return stored.AccessToken, nil
	}
	return u.refreshAccessToken(ctx, userID, stored.AccessToken)
}

// refreshAccessToken performs one refresh-token exchange per user at a time.
// Callers that arrive while an exchange is in flight wait for its result
// instead of starting their own. staleToken is the access token the caller
// found unusable; if the stored token already differs, another caller rotated
// the pair and the exchange is skipped.
func (u *TrackerUsecase) refreshAccessToken(ctx context.Context, userID uuid.UUID, staleToken string) (string, error) {
	v, err, _ := u.refreshGroup.Do(userID.String(), func() (interface{}, error) {
		// Re-read inside the flight: a caller that lost an earlier race picks
		// up the winner's rotated token here instead of replaying a refresh
		// token the provider has already consumed.
		stored, err := u.providerRepo.GetByUserID(userID, domain.ProviderTracker)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, ErrTrackerNotConnected
		}
		if stored.AccessToken != staleToken && !oauth.IsExpired(stored.ExpiresAt, oauth.DefaultExpiryBuffer) {
			return stored.AccessToken, nil
		}

		pair, err := u.oauthClient.Exchange(ctx, stored.RefreshToken)
		if err != nil {
			// Only a provider rejection proves the refresh token is dead.
			// Transport failures are transient: keep the stored pair so a
			// later attempt can retry the same exchange.
			var oerr *oauth.Error
			if errors.As(err, &oerr) && oerr.Kind == oauth.KindProviderRejection {
				if derr := u.providerRepo.DeleteByUserID(userID, domain.ProviderTracker); derr != nil {
					return nil, derr
				}
				return nil, ErrReauthRequired
			}
			return nil, err
		}

		if err := u.persistPair(userID, pair); err != nil {
			return nil, err
		}
		return pair.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// withToken runs fn with a valid access token. A 401 from the tracker means
// the token was revoked out of band; one forced refresh and retry covers it.
func (u *TrackerUsecase) withToken(ctx context.Context, userID uuid.UUID, fn func(accessToken string) error) error {
	token, err := u.ensureAccessToken(ctx, userID)
	if err != nil {
		return err
	}

	err = fn(token)
	if tracker.IsUnauthorized(err) {
		token, rerr := u.refreshAccessToken(ctx, userID, token)
		if rerr != nil {
			return rerr
		}
		return fn(token)
	}
	return err
}

// Time entries

func (u *TrackerUsecase) ListTimeEntries(ctx context.Context, userID uuid.UUID, opts tracker.TimeEntryListOptions) (*tracker.TimeEntryList, error) {
	var result *tracker.TimeEntryList
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.ListTimeEntries(ctx, token, opts)
		return err
	})
	return result, err
}

func (u *TrackerUsecase) GetTimeEntry(ctx context.Context, userID uuid.UUID, id int64) (*tracker.TimeEntry, error) {
	var result *tracker.TimeEntry
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.GetTimeEntry(ctx, token, id)
		return err
	})
	return result, err
}

func (u *TrackerUsecase) CreateTimeEntry(ctx context.Context, userID uuid.UUID, input tracker.CreateTimeEntryInput) (*tracker.TimeEntry, error) {
	var result *tracker.TimeEntry
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.CreateTimeEntry(ctx, token, input)
		return err
	})
	return result, err
}

func (u *TrackerUsecase) UpdateTimeEntry(ctx context.Context, userID uuid.UUID, id int64, input tracker.UpdateTimeEntryInput) (*tracker.TimeEntry, error) {
	var result *tracker.TimeEntry
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.UpdateTimeEntry(ctx, token, id, input)
		return err
	})
	return result, err
}

func (u *TrackerUsecase) DeleteTimeEntry(ctx context.Context, userID uuid.UUID, id int64) error {
	return u.withToken(ctx, userID, func(token string) error {
		return u.api.DeleteTimeEntry(ctx, token, id)
	})
}

// Approval workflow. Submit is available to the entry owner; Approve and
// Reject run with an admin's tracker token and are role-gated in delivery.

func (u *TrackerUsecase) SubmitTimeEntry(ctx context.Context, userID uuid.UUID, id int64) (*tracker.TimeEntry, error) {
	return u.setTimeEntryState(ctx, userID, id, tracker.StateSubmitted)
}

func (u *TrackerUsecase) ApproveTimeEntry(ctx context.Context, adminID uuid.UUID, id int64) (*tracker.TimeEntry, error) {
	return u.setTimeEntryState(ctx, adminID, id, tracker.StateApproved)
}

func (u *TrackerUsecase) RejectTimeEntry(ctx context.Context, adminID uuid.UUID, id int64) (*tracker.TimeEntry, error) {
	return u.setTimeEntryState(ctx, adminID, id, tracker.StateRejected)
}

func (u *TrackerUsecase) ListSubmittedTimeEntries(ctx context.Context, adminID uuid.UUID, page, perPage int) (*tracker.TimeEntryList, error) {
	return u.ListTimeEntries(ctx, adminID, tracker.TimeEntryListOptions{
		State:   tracker.StateSubmitted,
		Page:    page,
		PerPage: perPage,
	})
}

func (u *TrackerUsecase) setTimeEntryState(ctx context.Context, userID uuid.UUID, id int64, state string) (*tracker.TimeEntry, error) {
	var result *tracker.TimeEntry
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.SetTimeEntryState(ctx, token, id, state)
		return err
	})
	return result, err
}

// Expenses

func (u *TrackerUsecase) ListExpenses(ctx context.Context, userID uuid.UUID, opts tracker.ExpenseListOptions) (*tracker.ExpenseList, error) {
	var result *tracker.ExpenseList
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.ListExpenses(ctx, token, opts)
		return err
	})
	return result, err
}

func (u *TrackerUsecase) GetExpense(ctx context.Context, userID uuid.UUID, id int64) (*tracker.Expense, error) {
	var result *tracker.Expense
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.GetExpense(ctx, token, id)
		return err
	})
	return result, err
}

func (u *TrackerUsecase) CreateExpense(ctx context.Context, userID uuid.UUID, input tracker.CreateExpenseInput) (*tracker.Expense, error) {
	var result *tracker.Expense
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.CreateExpense(ctx, token, input)
		return err
	})
	return result, err
}

func (u *TrackerUsecase) UpdateExpense(ctx context.Context, userID uuid.UUID, id int64, input tracker.UpdateExpenseInput) (*tracker.Expense, error) {
	var result *tracker.Expense
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.UpdateExpense(ctx, token, id, input)
		return err
	})
	return result, err
}

func (u *TrackerUsecase) DeleteExpense(ctx context.Context, userID uuid.UUID, id int64) error {
	return u.withToken(ctx, userID, func(token string) error {
		return u.api.DeleteExpense(ctx, token, id)
	})
}

// Customers ("clients" in the tracker API)

func (u *TrackerUsecase) ListCustomers(ctx context.Context, userID uuid.UUID, page, perPage int) (*tracker.CustomerList, error) {
	var result *tracker.CustomerList
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.ListCustomers(ctx, token, page, perPage)
		return err
	})
	return result, err
}

func (u *TrackerUsecase) GetCustomer(ctx context.Context, userID uuid.UUID, id int64) (*tracker.Customer, error) {
	var result *tracker.Customer
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.GetCustomer(ctx, token, id)
		return err
	})
	return result, err
}

func (u *TrackerUsecase) CreateCustomer(ctx context.Context, userID uuid.UUID, input tracker.CreateCustomerInput) (*tracker.Customer, error) {
	var result *tracker.Customer
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.CreateCustomer(ctx, token, input)
		return err
	})
	return result, err
}

func (u *TrackerUsecase) UpdateCustomer(ctx context.Context, userID uuid.UUID, id int64, input tracker.UpdateCustomerInput) (*tracker.Customer, error) {
	var result *tracker.Customer
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.UpdateCustomer(ctx, token, id, input)
		return err
	})
	return result, err
}

func (u *TrackerUsecase) ArchiveCustomer(ctx context.Context, userID uuid.UUID, id int64) (*tracker.Customer, error) {
	var result *tracker.Customer
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.ArchiveCustomer(ctx, token, id)
		return err
	})
	return result, err
}

// Projects

func (u *TrackerUsecase) ListProjects(ctx context.Context, userID uuid.UUID, page, perPage int) (*tracker.ProjectList, error) {
	var result *tracker.ProjectList
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.ListProjects(ctx, token, page, perPage)
		return err
	})
	return result, err
}

func (u *TrackerUsecase) GetProject(ctx context.Context, userID uuid.UUID, id int64) (*tracker.Project, error) {
	var result *tracker.Project
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.GetProject(ctx, token, id)
		return err
	})
	return result, err
}

func (u *TrackerUsecase) CreateProject(ctx context.Context, userID uuid.UUID, input tracker.CreateProjectInput) (*tracker.Project, error) {
	var result *tracker.Project
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.CreateProject(ctx, token, input)
		return err
	})
	return result, err
}

func (u *TrackerUsecase) UpdateProject(ctx context.Context, userID uuid.UUID, id int64, input tracker.UpdateProjectInput) (*tracker.Project, error) {
	var result *tracker.Project
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.UpdateProject(ctx, token, id, input)
		return err
	})
	return result, err
}

func (u *TrackerUsecase) ArchiveProject(ctx context.Context, userID uuid.UUID, id int64) (*tracker.Project, error) {
	var result *tracker.Project
	err := u.withToken(ctx, userID, func(token string) error {
		var err error
		result, err = u.api.ArchiveProject(ctx, token, id)
		return err
	})
	return result, err
}
