package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/medipoint/medipointbackend/models"
	"github.com/medipoint/medipointbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Memory implements IdentityStore in process. It mirrors the Mongo
// implementation's contract and is what the handler and middleware tests
// run against.
type Memory struct {
	mu   sync.Mutex
	cols map[string]map[string]*models.Identity
}

func NewMemory() *Memory {
	return &Memory{cols: make(map[string]map[string]*models.Identity)}
}

func (s *Memory) col(role *models.Role) map[string]*models.Identity {
	c, ok := s.cols[role.Collection]
	if !ok {
		c = make(map[string]*models.Identity)
		s.cols[role.Collection] = c
	}
	return c
}

func clone(ident *models.Identity) *models.Identity {
	cp := *ident
	cp.Tokens = append([]string(nil), ident.Tokens...)
	return &cp
}

func (s *Memory) Insert(_ context.Context, role *models.Role, ident *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.col(role)
	for _, existing := range col {
		if existing.Email == ident.Email {
			return ErrDuplicateEmail
		}
	}

	if ident.ID.IsZero() {
		ident.ID = bson.NewObjectID()
	}
	now := time.Now().UTC()
	ident.CreatedAt = now
	ident.UpdatedAt = now
	ident.NameKey = utils.NormalizeName(ident.Name)
	if ident.Tokens == nil {
		ident.Tokens = []string{}
	}

	col[ident.ID.Hex()] = clone(ident)
	return nil
}

func (s *Memory) find(role *models.Role, match func(*models.Identity) bool) (*models.Identity, error) {
	for _, ident := range s.cols[role.Collection] {
		if match(ident) {
			return clone(ident), nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) FindByID(_ context.Context, role *models.Role, id string) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ident, ok := s.cols[role.Collection][id]; ok {
		return clone(ident), nil
	}
	return nil, ErrNotFound
}

func (s *Memory) FindByEmail(_ context.Context, role *models.Role, email string) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(role, func(i *models.Identity) bool { return i.Email == email })
}

func (s *Memory) FindByIDWithToken(_ context.Context, role *models.Role, id, token string) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.cols[role.Collection][id]
	if !ok || !ident.HasToken(token) {
		return nil, ErrNotFound
	}
	return clone(ident), nil
}

func (s *Memory) FindByResetCode(_ context.Context, role *models.Role, code string) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(role, func(i *models.Identity) bool {
		return i.PasswordResetToken != "" && i.PasswordResetToken == code
	})
}

func (s *Memory) List(_ context.Context, role *models.Role, q Query) ([]models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Identity{}
	for _, ident := range s.cols[role.Collection] {
		if q.Name != "" && ident.NameKey != utils.NormalizeName(q.Name) {
			continue
		}
		if q.Specialization != "" && !strings.EqualFold(ident.Specialization, q.Specialization) {
			continue
		}
		if q.Status != nil && ident.Status != *q.Status {
			continue
		}
		out = append(out, *clone(ident))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	if q.Skip > 0 {
		if q.Skip >= len(out) {
			return []models.Identity{}, nil
		}
		out = out[q.Skip:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Memory) Update(_ context.Context, role *models.Role, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ident, ok := s.cols[role.Collection][id]
	if !ok {
		return ErrNotFound
	}

	for k, v := range fields {
		applyField(ident, k, v)
	}
	if name, ok := fields["name"].(string); ok {
		ident.NameKey = utils.NormalizeName(name)
	}
	ident.UpdatedAt = time.Now().UTC()
	return nil
}

func applyField(ident *models.Identity, key string, value any) {
	switch key {
	case "name":
		ident.Name = asString(value)
	case "email":
		ident.Email = asString(value)
	case "passwordHash":
		ident.PasswordHash = asString(value)
	case "gender":
		ident.Gender = asString(value)
	case "pictureUrl":
		ident.PictureURL = asString(value)
	case "address":
		ident.Address = asString(value)
	case "city":
		ident.City = asString(value)
	case "phoneNumber":
		ident.PhoneNumber = asString(value)
	case "dateOfBirth":
		ident.DateOfBirth = asString(value)
	case "weight":
		ident.Weight = asFloat(value)
	case "height":
		ident.Height = asFloat(value)
	case "bloodType":
		ident.BloodType = asString(value)
	case "clinicName":
		ident.ClinicName = asString(value)
	case "clinicAddress":
		ident.ClinicAddress = asString(value)
	case "workHours":
		ident.WorkHours = asString(value)
	case "rate":
		ident.Rate = asFloat(value)
	case "specialization":
		ident.Specialization = asString(value)
	case "status":
		ident.Status, _ = value.(bool)
	case "isBlocked":
		ident.IsBlocked, _ = value.(bool)
	case "passwordResetToken":
		ident.PasswordResetToken = asString(value)
	case "changePassword":
		ident.ChangePassword, _ = value.(bool)
	case "lastLogin":
		if t, ok := value.(time.Time); ok {
			ident.LastLogin = t
		}
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func (s *Memory) AppendToken(_ context.Context, role *models.Role, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.cols[role.Collection][id]
	if !ok {
		return ErrNotFound
	}
	ident.Tokens = append(ident.Tokens, token)
	ident.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Memory) RemoveToken(_ context.Context, role *models.Role, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.cols[role.Collection][id]
	if !ok {
		return ErrNotFound
	}
	kept := ident.Tokens[:0]
	for _, t := range ident.Tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	ident.Tokens = kept
	ident.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Memory) ClearTokens(_ context.Context, role *models.Role, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.cols[role.Collection][id]
	if !ok {
		return ErrNotFound
	}
	ident.Tokens = []string{}
	ident.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Memory) Delete(_ context.Context, role *models.Role, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cols[role.Collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.cols[role.Collection], id)
	return nil
}
