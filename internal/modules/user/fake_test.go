package user

import (
	"context"
	"sync"

	"github.com/georgemunganga/kbeauty-backend/internal/platform/session"
	"github.com/google/uuid"
)

type memRepo struct {
	mu        sync.Mutex
	profiles  map[uuid.UUID]*Profile
	addresses map[uuid.UUID]*Address
}

func newMemRepo() *memRepo {
	return &memRepo{profiles: map[uuid.UUID]*Profile{}, addresses: map[uuid.UUID]*Address{}}
}

func (m *memRepo) CreateProfile(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.profiles {
		if existing.Email == p.Email {
			return ErrEmailTaken
		}
	}
	cp := *p
	m.profiles[p.ID] = &cp
	return nil
}

func (m *memRepo) GetProfileByEmail(_ context.Context, email string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) GetProfileByID(_ context.Context, id uuid.UUID) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) UpdateProfile(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	m.profiles[p.ID] = &cp
	return nil
}

func (m *memRepo) UpdateRole(_ context.Context, id uuid.UUID, role session.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return ErrNotFound
	}
	p.Role = role
	return nil
}

func (m *memRepo) CreateAddress(_ context.Context, a *Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.addresses[a.ID] = &cp
	return nil
}

func (m *memRepo) GetAddress(_ context.Context, userID, id uuid.UUID) (*Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.addresses[id]
	if !ok || a.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memRepo) ListAddresses(_ context.Context, userID uuid.UUID) ([]*Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Address{}
	for _, a := range m.addresses {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRepo) DeleteAddress(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.addresses[id]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	delete(m.addresses, id)
	return nil
}

func (m *memRepo) SetDefaultAddress(_ context.Context, userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.addresses[id]
	if !ok || target.UserID != userID {
		return ErrNotFound
	}
	for _, a := range m.addresses {
		if a.UserID == userID {
			a.IsDefault = a.ID == id
		}
	}
	return nil
}
