package mockserver

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	Email    string
	Password string
	FullName string
	Role     string
}

var demoUsers = []seedUser{
	{Email: "amina@secureherai.dev", Password: "password123", FullName: "Amina Rahman", Role: "user"},
	{Email: "responder1@secureherai.dev", Password: "password123", FullName: "Nadia Islam", Role: "responder"},
	{Email: "responder2@secureherai.dev", Password: "password123", FullName: "Farzana Haque", Role: "responder"},
}

// SeedUsers inserts the demo accounts unless they already exist.
func SeedUsers(users UserRepository, logger *logrus.Logger) error {
	for _, seed := range demoUsers {
		count, err := users.CountByEmail(seed.Email)
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user := &User{
			ID:           uuid.New(),
			Email:        seed.Email,
			PasswordHash: string(hash),
			FullName:     seed.FullName,
			Role:         seed.Role,
			CreatedAt:    time.Now(),
		}
		if err := users.Create(user); err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"email": seed.Email,
			"role":  seed.Role,
		}).Info("seeded demo user")
	}
	return nil
}
