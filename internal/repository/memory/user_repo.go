package memory

import (
	"time"

	"github.com/yourusername/redweb-api/internal/domain/entity"
	apperrors "github.com/yourusername/redweb-api/internal/pkg/errors"
)

// UserRepo реализует repository.UserRepository в памяти
type UserRepo struct {
	s *Store
}

func NewUserRepo(s *Store) *UserRepo {
	return &UserRepo{s: s}
}

// taken сообщает, занят ли username или email другим пользователем. Вызывается под mu.
func (r *UserRepo) taken(exceptID uint, username, email string) bool {
	for id, u := range r.s.users {
		if id == exceptID {
			continue
		}
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return true
		}
	}
	return false
}

func (r *UserRepo) byEmail(email string) (uint, entity.User, bool) {
	for id, u := range r.s.users {
		if u.Email == email {
			return id, u, true
		}
	}
	return 0, entity.User{}, false
}

func (r *UserRepo) Create(user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.taken(0, user.Username, user.Email) {
		return apperrors.ErrConflict
	}
	// Повторяет хук GORM, чтобы в памяти тоже хранился только хеш
	if err := user.BeforeSave(nil); err != nil {
		return err
	}

	r.s.nextUserID++
	now := time.Now()
	user.ID = r.s.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepo) GetByID(id uint) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, u, ok := r.byEmail(email)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(username string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *UserRepo) UpdateProfile(userID uint, updates map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	username, _ := updates["username"].(string)
	email, _ := updates["email"].(string)
	if r.taken(userID, username, email) {
		return apperrors.ErrConflict
	}
	if username != "" {
		u.Username = username
	}
	if email != "" {
		u.Email = email
	}
	if bio, ok := updates["bio"].(string); ok {
		u.Bio = bio
	}
	u.UpdatedAt = time.Now()
	r.s.users[userID] = u
	return nil
}

func (r *UserRepo) SetResetCode(email, code string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, u, ok := r.byEmail(email)
	if !ok {
		return apperrors.ErrNotFound
	}
	u.ResetCode = &code
	u.ResetExpires = &expiresAt
	u.ResetAttempts = 0
	r.s.users[id] = u
	return nil
}

func (r *UserRepo) IncrementResetAttempts(email, storedCode string, maxAttempts int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, u, ok := r.byEmail(email)
	if !ok || u.ResetCode == nil || *u.ResetCode != storedCode || u.ResetAttempts >= maxAttempts {
		return false, nil
	}
	u.ResetAttempts++
	r.s.users[id] = u
	return true, nil
}

func (r *UserRepo) ResetPassword(email, code, passwordHash string, now time.Time, maxAttempts int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, u, ok := r.byEmail(email)
	if !ok || u.ResetCode == nil || *u.ResetCode != code || u.ResetExpires == nil ||
		now.After(*u.ResetExpires) || u.ResetAttempts >= maxAttempts {
		return false, nil
	}
	u.Password = passwordHash
	u.ResetCode = nil
	u.ResetExpires = nil
	u.ResetAttempts = 0
	u.UpdatedAt = now
	r.s.users[id] = u
	return true, nil
}
