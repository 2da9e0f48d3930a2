package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nodeacademy/internal/database"
	"nodeacademy/internal/models"
	"nodeacademy/internal/repository"
	"nodeacademy/internal/testutil"
)

type RepositorySuite struct {
	suite.Suite
	db           *database.DB
	users        *repository.UserRepository
	progress     *repository.ProgressRepository
	achievements *repository.AchievementRepository
	ctx          context.Context
}

func (s *RepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.users = repository.NewUserRepository(s.db)
	s.progress = repository.NewProgressRepository(s.db)
	s.achievements = repository.NewAchievementRepository(s.db)
	s.ctx = context.Background()
}

func (s *RepositorySuite) createUser(email string) *models.User {
	u, err := s.users.Create(s.ctx, "Learner", email, "hash")
	s.Require().NoError(err)
	return u
}

func (s *RepositorySuite) complete(userID int64, lessonID, score int, at time.Time) {
	s.Require().NoError(s.progress.Upsert(s.ctx, models.ProgressRecord{
		UserID: userID, LessonID: lessonID, Completed: true, Score: score, CompletedAt: &at,
	}))
}

func (s *RepositorySuite) TestCreateAndGetUser() {
	u := s.createUser("ada@example.com")
	s.Greater(u.ID, int64(0))

	byID, err := s.users.GetByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().NotNil(byID)
	s.Equal("ada@example.com", byID.Email)

	byEmail, err := s.users.GetByEmail(s.ctx, "ada@example.com")
	s.Require().NoError(err)
	s.Require().NotNil(byEmail)
	s.Equal(u.ID, byEmail.ID)
}

func (s *RepositorySuite) TestGetMissingUserReturnsNil() {
	u, err := s.users.GetByID(s.ctx, 999)
	s.NoError(err)
	s.Nil(u)

	u, err = s.users.GetByEmail(s.ctx, "nobody@example.com")
	s.NoError(err)
	s.Nil(u)
}

func (s *RepositorySuite) TestCreateDuplicateEmail() {
	s.createUser("dup@example.com")

	_, err := s.users.Create(s.ctx, "Other", "dup@example.com", "hash")
	s.ErrorIs(err, repository.ErrDuplicateEmail)

	var count int
	s.Require().NoError(s.db.QueryRowContext(s.ctx, "SELECT COUNT(*) FROM users").Scan(&count))
	s.Equal(1, count)
}

func (s *RepositorySuite) TestUpdateProfile() {
	a := s.createUser("a@example.com")
	s.createUser("b@example.com")

	taken, err := s.users.EmailTakenByOther(s.ctx, "b@example.com", a.ID)
	s.Require().NoError(err)
	s.True(taken)

	taken, err = s.users.EmailTakenByOther(s.ctx, "a@example.com", a.ID)
	s.Require().NoError(err)
	s.False(taken)

	updated, err := s.users.UpdateProfile(s.ctx, a.ID, "Ada", "ada@example.com")
	s.Require().NoError(err)
	s.Require().NotNil(updated)
	s.Equal("Ada", updated.Name)
	s.Equal("ada@example.com", updated.Email)

	_, err = s.users.UpdateProfile(s.ctx, a.ID, "Ada", "b@example.com")
	s.ErrorIs(err, repository.ErrDuplicateEmail)

	missing, err := s.users.UpdateProfile(s.ctx, 999, "X", "x@example.com")
	s.NoError(err)
	s.Nil(missing)
}

func (s *RepositorySuite) TestUpdatePassword() {
	u := s.createUser("pw@example.com")
	s.Require().NoError(s.users.UpdatePassword(s.ctx, u.ID, "new-hash"))

	got, err := s.users.GetByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("new-hash", got.PasswordHash)
}

func (s *RepositorySuite) TestUpsertIsIdempotentPerLesson() {
	u := s.createUser("p@example.com")
	now := time.Now().UTC()

	s.complete(u.ID, 1, 30, now)
	s.complete(u.ID, 1, 45, now)
	s.complete(u.ID, 2, 50, now)

	records, err := s.progress.ListByUser(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(1, records[0].LessonID)
	s.Equal(45, records[0].Score)
	s.True(records[0].Completed)
	s.Require().NotNil(records[0].CompletedAt)
	s.WithinDuration(now, *records[0].CompletedAt, time.Second)
}

func (s *RepositorySuite) TestConcurrentUpsertLeavesOneRow() {
	u := s.createUser("race@example.com")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			now := time.Now().UTC()
			s.NoError(s.progress.Upsert(s.ctx, models.ProgressRecord{
				UserID: u.ID, LessonID: 4, Completed: true, Score: score, CompletedAt: &now,
			}))
		}(i * 5)
	}
	wg.Wait()

	records, err := s.progress.ListByUser(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *RepositorySuite) TestStats() {
	u := s.createUser("stats@example.com")
	day := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	s.complete(u.ID, 1, 50, day)
	s.complete(u.ID, 2, 40, day.Add(2*time.Hour))
	s.complete(u.ID, 3, 30, day.Add(24*time.Hour))
	s.Require().NoError(s.progress.Upsert(s.ctx, models.ProgressRecord{UserID: u.ID, LessonID: 4, Completed: false, Score: 20}))

	stats, err := s.progress.Stats(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(3, stats.CompletedCount)
	s.Equal(120, stats.TotalScore)
	s.Equal(2, stats.MaxCompletedInOneDay)
}

func (s *RepositorySuite) TestStatsEmpty() {
	u := s.createUser("empty@example.com")

	stats, err := s.progress.Stats(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(models.ProgressStats{}, stats)
}

func (s *RepositorySuite) TestAchievementInsertIfAbsent() {
	u := s.createUser("badge@example.com")
	now := time.Now().UTC()

	inserted, err := s.achievements.InsertIfAbsent(s.ctx, u.ID, "first_lesson", now)
	s.Require().NoError(err)
	s.True(inserted)

	inserted, err = s.achievements.InsertIfAbsent(s.ctx, u.ID, "first_lesson", now.Add(time.Hour))
	s.Require().NoError(err)
	s.False(inserted)

	records, err := s.achievements.ListByUser(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal("first_lesson", records[0].AchievementID)
	s.WithinDuration(now, records[0].EarnedAt, time.Second)
}

func (s *RepositorySuite) TestDeleteCascades() {
	u := s.createUser("gone@example.com")
	s.complete(u.ID, 1, 50, time.Now().UTC())
	_, err := s.achievements.InsertIfAbsent(s.ctx, u.ID, "first_lesson", time.Now())
	s.Require().NoError(err)

	deleted, err := s.users.Delete(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(deleted)

	records, err := s.progress.ListByUser(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Empty(records)

	badges, err := s.achievements.ListByUser(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Empty(badges)

	deleted, err = s.users.Delete(s.ctx, u.ID)
	s.Require().NoError(err)
	s.False(deleted)
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}
