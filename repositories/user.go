package repositories

import (
	"encoding/json"
	goerrors "errors"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"downtime-tracker/domain"
	"downtime-tracker/errors"
)

// IUserRepository is the role-aware user directory. The authentication layer
// resolves principals through it; services use it to validate assignees.
type IUserRepository interface {
	CreateUser(email, name string, role domain.Role, passwordHash string) (domain.User, error)
	GetUser(id int) (domain.User, error)
	GetUserByEmail(email string) (domain.User, error)
	GetUsersByRole(role domain.Role) ([]domain.User, error)
	CountUsers() (int, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// CreateUser persists the user and a secondary email index entry in one
// transaction. The email index doubles as the uniqueness check.
func (u *UserRepository) CreateUser(email, name string, role domain.Role, passwordHash string) (domain.User, error) {
	user := domain.User{
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	err := u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(userEmailKey(email)); err == nil {
			return errors.ErrUserAlreadyExists
		}

		id, err := nextID(txn, "user")
		if err != nil {
			return err
		}
		user.ID = id

		data, err := json.Marshal(toDiskUser(user))
		if err != nil {
			return err
		}
		if err := txn.Set(userKey(id), data); err != nil {
			return err
		}
		return txn.Set(userEmailKey(email), []byte(strconv.Itoa(id)))
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (u *UserRepository) GetUser(id int) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if goerrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshalUser(val, &user)
		})
	})
	return user, err
}

func (u *UserRepository) GetUserByEmail(email string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userEmailKey(email))
		if goerrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrUserNotFound
		}
		if err != nil {
			return err
		}

		var id int
		if err := item.Value(func(val []byte) error {
			id, err = strconv.Atoi(string(val))
			return err
		}); err != nil {
			return err
		}

		item, err = txn.Get(userKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshalUser(val, &user)
		})
	})
	return user, err
}

// GetUsersByRole scans the user prefix. The plant has tens of users, not
// millions, so a filtered scan beats maintaining a role index.
func (u *UserRepository) GetUsersByRole(role domain.Role) ([]domain.User, error) {
	var users []domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("user:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var user domain.User
				if err := unmarshalUser(val, &user); err != nil {
					return err
				}
				if user.Role == role {
					users = append(users, user)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return users, err
}

func (u *UserRepository) CountUsers() (int, error) {
	count := 0
	err := u.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte("user:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// diskUser carries the password hash, which the domain type hides from JSON.
type diskUser struct {
	ID           int         `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	Role         domain.Role `json:"role"`
	PasswordHash string      `json:"passwordHash"`
	CreatedAt    time.Time   `json:"createdAt"`
}

func toDiskUser(user domain.User) diskUser {
	return diskUser{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         user.Role,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
}

func unmarshalUser(val []byte, user *domain.User) error {
	var disk diskUser
	if err := json.Unmarshal(val, &disk); err != nil {
		return err
	}
	*user = domain.User{
		ID:           disk.ID,
		Email:        disk.Email,
		Name:         disk.Name,
		Role:         disk.Role,
		PasswordHash: disk.PasswordHash,
		CreatedAt:    disk.CreatedAt,
	}
	return nil
}
