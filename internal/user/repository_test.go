package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/kosta-developer/DEVELOPER-Back/common/metrics"
	"github.com/kosta-developer/DEVELOPER-Back/internal/board"
	"github.com/kosta-developer/DEVELOPER-Back/internal/host"
	"github.com/kosta-developer/DEVELOPER-Back/internal/lesson"
	"github.com/kosta-developer/DEVELOPER-Back/internal/store"
	"github.com/kosta-developer/DEVELOPER-Back/internal/studyroom"
	"github.com/kosta-developer/DEVELOPER-Back/internal/tutor"
	"github.com/kosta-developer/DEVELOPER-Back/internal/user"
	"github.com/kosta-developer/DEVELOPER-Back/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(id string, role user.Role) *user.User {
	return &user.User{
		UserID:   id,
		Password: "hashed",
		Name:     id,
		Nickname: id + "-nick",
		Email:    id + "@example.com",
		Role:     role,
	}
}

func TestUserRepository_Shared(t *testing.T) {
	ctx := context.Background()
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	m := metrics.NewMock()
	users := user.NewRepository(pgContainer.DB, m)
	tutors := tutor.NewRepository(pgContainer.DB, m)
	hosts := host.NewRepository(pgContainer.DB, m)
	lessons := lesson.NewRepository(pgContainer.DB, m)
	rooms := studyroom.NewRepository(pgContainer.DB, m)
	boards := board.NewRepository(pgContainer.DB, m)

	t.Run("Create_DuplicateID", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, testdb.DomainTables...)

		_, err := users.Create(ctx, newUser("tutee2", user.RoleTutee))
		require.NoError(t, err)

		dup := newUser("tutee2", user.RoleTutee)
		dup.Email = "other@example.com"
		dup.Nickname = "other"
		_, err = users.Create(ctx, dup)
		assert.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("SearchByIDPrefix", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, testdb.DomainTables...)

		for _, id := range []string{"kim1", "kim2", "lee1", "ki_m"} {
			_, err := users.Create(ctx, newUser(id, user.RoleTutee))
			require.NoError(t, err)
		}

		found, err := users.SearchByIDPrefix(ctx, "kim")
		require.NoError(t, err)
		assert.Len(t, found, 2)

		// "_" is matched literally, not as a wildcard
		found, err = users.SearchByIDPrefix(ctx, "ki_")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "ki_m", found[0].UserID)
	})

	t.Run("UpdateRole_Missing", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, testdb.DomainTables...)

		assert.ErrorIs(t, users.UpdateRole(ctx, "nobody", user.RoleWithdrawn), store.ErrNotFound)
	})

	t.Run("DeleteCascade_RemovesDependents", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, testdb.DomainTables...)

		_, err := users.Create(ctx, newUser("tutee2", user.RoleTutee))
		require.NoError(t, err)
		_, err = users.Create(ctx, newUser("kim", user.RoleTutee))
		require.NoError(t, err)
		_, err = tutors.Create(ctx, &tutor.Tutor{UserID: "kim", Introduction: "math"})
		require.NoError(t, err)
		require.NoError(t, tutors.Approve(ctx, "kim"))
		_, err = hosts.Create(ctx, &host.HostUser{HostID: "host1", Password: "hashed", Name: "Rooms", Email: "rooms@example.com", BusinessNo: "1"})
		require.NoError(t, err)

		l, err := lessons.Create(ctx, &lesson.Lesson{TutorID: "kim", Name: "Calculus", Price: 10000, People: 4})
		require.NoError(t, err)
		room, err := rooms.Create(ctx, &studyroom.Studyroom{HostID: "host1", Name: "Room A", Addr: "Seoul"})
		require.NoError(t, err)

		_, err = lessons.CreateApplication(ctx, &lesson.Application{TuteeID: "tutee2", LessonSeq: l.LessonSeq})
		require.NoError(t, err)
		post, err := boards.CreatePost(ctx, &board.Board{UserID: "tutee2", Title: "hello", Content: "first post"})
		require.NoError(t, err)
		_, err = boards.CreateReply(ctx, &board.Reply{PostSeq: post.PostSeq, UserID: "kim", Content: "welcome"})
		require.NoError(t, err)
		_, err = boards.Recommend(ctx, post.PostSeq, "kim")
		require.NoError(t, err)
		_, err = rooms.CreateReservation(ctx, &studyroom.Reservation{
			UserID:    "tutee2",
			SrSeq:     room.SrSeq,
			StartTime: time.Now().Add(time.Hour),
			EndTime:   time.Now().Add(2 * time.Hour),
		})
		require.NoError(t, err)
		_, err = lessons.CreateFavorite(ctx, &lesson.Favorite{UserID: "tutee2", LessonSeq: l.LessonSeq})
		require.NoError(t, err)
		_, err = rooms.CreateFavorite(ctx, &studyroom.Favorite{UserID: "tutee2", SrSeq: room.SrSeq})
		require.NoError(t, err)

		require.NoError(t, users.DeleteCascade(ctx, "tutee2"))

		db := pgContainer.DB
		assert.Equal(t, 0, testdb.CountRows(t, db, "users", "user_id = ?", "tutee2"))
		assert.Equal(t, 0, testdb.CountRows(t, db, "applied_lessons", "tutee_id = ?", "tutee2"))
		assert.Equal(t, 0, testdb.CountRows(t, db, "boards", "user_id = ?", "tutee2"))
		assert.Equal(t, 0, testdb.CountRows(t, db, "reservations", "user_id = ?", "tutee2"))
		assert.Equal(t, 0, testdb.CountRows(t, db, "favorites_lessons", "user_id = ?", "tutee2"))
		assert.Equal(t, 0, testdb.CountRows(t, db, "favorites_studyrooms", "user_id = ?", "tutee2"))
		// replies and votes on the deleted post go with it
		assert.Equal(t, 0, testdb.CountRows(t, db, "board_reps", ""))
		assert.Equal(t, 0, testdb.CountRows(t, db, "recommends", ""))

		// unrelated rows survive
		assert.Equal(t, 1, testdb.CountRows(t, db, "users", "user_id = ?", "kim"))
		assert.Equal(t, 1, testdb.CountRows(t, db, "lessons", ""))
		assert.Equal(t, 1, testdb.CountRows(t, db, "studyrooms", ""))
	})

	t.Run("DeleteCascade_Tutor", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, testdb.DomainTables...)

		_, err := users.Create(ctx, newUser("tutee2", user.RoleTutee))
		require.NoError(t, err)
		_, err = users.Create(ctx, newUser("kim", user.RoleTutee))
		require.NoError(t, err)
		_, err = tutors.Create(ctx, &tutor.Tutor{UserID: "kim", Introduction: "hi"})
		require.NoError(t, err)
		require.NoError(t, tutors.Approve(ctx, "kim"))

		l, err := lessons.Create(ctx, &lesson.Lesson{TutorID: "kim", Name: "Calculus", Price: 10000, People: 4})
		require.NoError(t, err)
		_, err = lessons.CreateApplication(ctx, &lesson.Application{TuteeID: "tutee2", LessonSeq: l.LessonSeq})
		require.NoError(t, err)

		require.NoError(t, users.DeleteCascade(ctx, "kim"))

		db := pgContainer.DB
		assert.Equal(t, 0, testdb.CountRows(t, db, "tutors", ""))
		assert.Equal(t, 0, testdb.CountRows(t, db, "lessons", ""))
		assert.Equal(t, 0, testdb.CountRows(t, db, "applied_lessons", ""))
		assert.Equal(t, 1, testdb.CountRows(t, db, "users", "user_id = ?", "tutee2"))
	})

	t.Run("DeleteCascade_Missing", func(t *testing.T) {
		testdb.CleanupTables(t, pgContainer.DB, testdb.DomainTables...)

		assert.ErrorIs(t, users.DeleteCascade(ctx, "nobody"), store.ErrNotFound)
	})
}
