package seeders

import (
	"github.com/cradoe/kycflow/internal/config"
	"github.com/cradoe/kycflow/internal/repository"
)

type Seeder struct {
	UserRepo repository.UserRepository
	Config   *config.Config
}

func New(userRepo repository.UserRepository, cfg *config.Config) *Seeder {
	return &Seeder{
		UserRepo: userRepo,
		Config:   cfg,
	}
}

func (seeder *Seeder) Run() {
	seeder.seedAdminUser()
}
