package seeders

import (
	"log"

	"github.com/cradoe/gopass"

	"github.com/cradoe/kycflow/internal/models"
	"github.com/cradoe/kycflow/internal/token"
)

// seedAdminUser creates the operator account named in the environment, if
// configured and not already present. The admin role is required to read
// funnel metrics and stage histories.
func (seeder *Seeder) seedAdminUser() {
	username := seeder.Config.Admin.Username
	if username == "" || seeder.Config.Admin.Password == "" {
		return
	}

	exists, err := seeder.UserRepo.CheckIfUsernameExist(username)
	if err != nil {
		log.Fatalf("Failed to check for admin user '%s': %v", username, err)
	}
	if exists {
		return
	}

	hashedPassword, err := gopass.Hash(seeder.Config.Admin.Password)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	_, err = seeder.UserRepo.Insert(&models.User{
		Username:       username,
		Email:          seeder.Config.Admin.Email,
		Role:           token.RoleAdmin,
		HashedPassword: hashedPassword,
	})
	if err != nil {
		log.Fatalf("Failed to insert admin user '%s': %v", username, err)
	}

	log.Printf("Admin user '%s' created", username)
}
