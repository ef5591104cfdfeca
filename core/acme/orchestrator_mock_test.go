package acme

import (
	"context"
	"sync"

	"golang.org/x/crypto/acme"
)

// mockDirectoryClient is a scripted directoryClient. Authorization and
// order states are fixed up front; GetOrder walks orderStatuses one entry
// per call, sticking on the last one.
type mockDirectoryClient struct {
	mu sync.Mutex

	order         *acme.Order
	authzs        map[string]*acme.Authorization
	orderStatuses []string
	chainDER      [][]byte

	registerErr error
	finalizeErr error

	registerCalls int
	acceptCalls   int
	getOrderCalls int
}

func (m *mockDirectoryClient) Register(ctx context.Context, account *acme.Account, prompt func(tosURL string) bool) (*acme.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registerCalls++
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return &acme.Account{Status: acme.StatusValid, Contact: account.Contact}, nil
}

func (m *mockDirectoryClient) AuthorizeOrder(ctx context.Context, ids []acme.AuthzID, opts ...acme.OrderOption) (*acme.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order, nil
}

func (m *mockDirectoryClient) GetAuthorization(ctx context.Context, url string) (*acme.Authorization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authzs[url], nil
}

func (m *mockDirectoryClient) HTTP01ChallengeResponse(token string) (string, error) {
	return token + ".keyauth", nil
}

func (m *mockDirectoryClient) Accept(ctx context.Context, chal *acme.Challenge) (*acme.Challenge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acceptCalls++
	return chal, nil
}

func (m *mockDirectoryClient) GetOrder(ctx context.Context, url string) (*acme.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	index := m.getOrderCalls
	m.getOrderCalls++
	if index >= len(m.orderStatuses) {
		index = len(m.orderStatuses) - 1
	}
	return &acme.Order{
		URI:         m.order.URI,
		Status:      m.orderStatuses[index],
		FinalizeURL: m.order.FinalizeURL,
	}, nil
}

func (m *mockDirectoryClient) CreateOrderCert(ctx context.Context, finalizeURL string, csr []byte, bundle bool) ([][]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finalizeErr != nil {
		return nil, "", m.finalizeErr
	}
	return m.chainDER, "https://ca.example.test/cert/1", nil
}

func (m *mockDirectoryClient) stats() (register, accept, getOrder int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registerCalls, m.acceptCalls, m.getOrderCalls
}
