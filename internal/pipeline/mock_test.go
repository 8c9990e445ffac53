package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/millemail/prospector/internal/model"
	"github.com/millemail/prospector/pkg/anthropic"
	"github.com/millemail/prospector/pkg/apify"
	"github.com/millemail/prospector/pkg/hunter"
	"github.com/millemail/prospector/pkg/smartlead"
)

// --- Apify Mock ---

type mockApifyClient struct {
	mock.Mock
}

func (m *mockApifyClient) RunActor(ctx context.Context, actorID string, input any) (*apify.Run, error) {
	args := m.Called(ctx, actorID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apify.Run), args.Error(1)
}

func (m *mockApifyClient) GetRun(ctx context.Context, runID string) (*apify.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apify.Run), args.Error(1)
}

func (m *mockApifyClient) DatasetItems(ctx context.Context, datasetID string, out any) error {
	args := m.Called(ctx, datasetID, out)
	return args.Error(0)
}

// --- Hunter Mock ---

type mockHunterClient struct {
	mock.Mock
}

func (m *mockHunterClient) DomainSearch(ctx context.Context, req hunter.DomainSearchRequest) (*hunter.DomainSearchData, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hunter.DomainSearchData), args.Error(1)
}

func (m *mockHunterClient) CompanyFind(ctx context.Context, domain string) (*hunter.CompanyData, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hunter.CompanyData), args.Error(1)
}

func (m *mockHunterClient) VerifyEmail(ctx context.Context, email string) (*hunter.VerificationData, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hunter.VerificationData), args.Error(1)
}

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// --- Smartlead Mock ---

type mockSmartleadClient struct {
	mock.Mock
}

func (m *mockSmartleadClient) AddLeads(ctx context.Context, campaignID string, req smartlead.AddLeadsRequest) (*smartlead.AddLeadsResponse, error) {
	args := m.Called(ctx, campaignID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*smartlead.AddLeadsResponse), args.Error(1)
}

func (m *mockSmartleadClient) GetCampaign(ctx context.Context, campaignID string) (*smartlead.Campaign, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*smartlead.Campaign), args.Error(1)
}

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ExistingContacts(ctx context.Context) (map[model.IdentityPair]struct{}, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.IdentityPair]struct{}), args.Error(1)
}

func (m *mockStore) LastContactDates(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *mockStore) InsertProspects(ctx context.Context, leads []model.Lead) (int, error) {
	args := m.Called(ctx, leads)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) ReadyProspects(ctx context.Context, limit int) ([]model.Lead, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Lead), args.Error(1)
}

func (m *mockStore) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockStore) FindByEmail(ctx context.Context, email string) (*model.Lead, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *mockStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) CountByStatus(ctx context.Context) (map[model.Status]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.Status]int), args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
