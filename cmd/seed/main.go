package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"courseplatform/internal/config"
	"courseplatform/internal/database"
	"courseplatform/internal/domain"
	"courseplatform/internal/modules/segment"
	jwtsvc "courseplatform/internal/pkg/jwt"
	"courseplatform/internal/pkg/logger"
	"courseplatform/internal/repository"
	"courseplatform/internal/storage"
)

type seedSegment struct {
	module  string
	slug    string
	title   string
	content string
}

var curriculum = []seedSegment{
	{"Getting Started", "welcome", "Welcome", "# Welcome\n\nWhat this course covers and how to use it."},
	{"Getting Started", "setup", "Setting up", "# Setup\n\nInstall the toolchain and clone the starter project."},
	{"Fundamentals", "first-steps", "First steps", "# First steps\n\nA guided tour of the basics."},
	{"Fundamentals", "going-further", "Going further", "# Going further\n\nPatterns that show up in real projects."},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("DB connection failed")
	}
	log.Info("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("migrate failed")
	}

	users := repository.NewUserRepository(db)
	admin := &domain.User{Email: "admin@course.local", DisplayName: "Admin", IsAdmin: true}
	member := &domain.User{Email: "student@course.local", DisplayName: "Student"}
	for _, u := range []*domain.User{admin, member} {
		if err := users.FirstOrCreate(ctx, u); err != nil {
			log.WithError(err).Fatal("create user failed")
		}
	}

	// Seeding never touches object storage.
	segments := segment.NewService(
		repository.NewSegmentRepository(db),
		repository.NewAttachmentRepository(db),
		storage.NewMemoryStorage(),
		log,
		cfg.CleanupConcurrency,
	)
	comments := repository.NewCommentRepository(db)

	for _, s := range curriculum {
		existing, err := segments.GetSegmentBySlug(ctx, s.slug)
		if err == nil {
			log.WithField("slug", existing.Slug).Info("segment exists, skipping")
			continue
		}
		created, err := segments.AddSegment(ctx, segment.CreateSegmentInput{
			Slug:     s.slug,
			Title:    s.title,
			Content:  s.content,
			ModuleID: s.module,
		})
		if err != nil {
			log.WithError(err).WithField("slug", s.slug).Fatal("create segment failed")
		}
		if err := comments.Create(ctx, &domain.Comment{
			SegmentID: created.ID,
			UserID:    member.ID,
			Content:   fmt.Sprintf("Looking forward to %q!", s.title),
		}); err != nil {
			log.WithError(err).Fatal("create comment failed")
		}
		log.WithFields(logrus.Fields{"slug": created.Slug, "module": created.ModuleID, "order": created.Order}).Info("segment created")
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	for _, u := range []*domain.User{admin, member} {
		token, err := j.GenerateToken(u.ID, string(u.Role()))
		if err != nil {
			log.WithError(err).Fatal("issue token failed")
		}
		fmt.Printf("%s (%s): %s\n", u.Email, u.Role(), token)
	}
	log.Info("Seed complete")
}
