package seed

import (
	"context"
	"errors"
	"fmt"

	appModels "github.com/yigit/studentregistry/internal/app/models"
	appRepos "github.com/yigit/studentregistry/internal/app/repositories"
	"github.com/yigit/studentregistry/internal/pkg/apperrors"
	"github.com/yigit/studentregistry/internal/pkg/logger"
)

// demoStudents are inserted into an empty store when database.seed_demo is enabled
var demoStudents = []appModels.Student{
	{IDNo: "2021-0001", LastName: "Dela Cruz", FirstName: "Juan", Course: "BSIT", Level: 3},
	{IDNo: "2021-0002", LastName: "Santos", FirstName: "Maria", Course: "BSCS", Level: 2},
	{IDNo: "2022-0003", LastName: "Reyes", FirstName: "Jose", Course: "BSIS", Level: 1},
}

// CreateDemoStudents fills an empty students table with a few sample records.
// A table that already holds rows is left alone. Returns the number of records created.
func CreateDemoStudents(ctx context.Context, repo appRepos.StudentRepository, placeholder string) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing students: %w", err)
	}
	if len(existing) > 0 {
		logger.Debug().Int("count", len(existing)).Msg("Students present, skipping demo data")
		return 0, nil
	}

	log := logger.WithField("component", "seed")
	log.Info().Msg("Creating demo students...")
	created := 0
	var finalErr error // collect errors without stopping
	for _, demo := range demoStudents {
		student := demo
		student.Photo = placeholder
		if _, err := repo.Create(ctx, &student); err != nil {
			if errors.Is(err, apperrors.ErrStudentIDAlreadyExists) {
				continue
			}
			log.Error().Err(err).Str("idno", student.IDNo).Msg("Error creating demo student")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		created++
	}

	log.Info().Int("created", created).Msg("Demo students created")
	return created, finalErr
}
