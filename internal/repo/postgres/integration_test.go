package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Evzheva/chatbot-for-dating/internal/domain/enums"
	"github.com/Evzheva/chatbot-for-dating/internal/domain/model"
)

// These tests need a disposable database. They truncate every table.
const testDSNEnv = "POSTGRES_TEST_DSN"

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s is not set", testDSNEnv)
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := Migrate(ctx, pool, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	resetTables(t, pool)
	return pool
}

func resetTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(context.Background(), `
TRUNCATE admin_actions, reports, matches, likes, profiles RESTART IDENTITY CASCADE
`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func countRows(t *testing.T, pool *pgxpool.Pool, query string, args ...any) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func saveProfile(t *testing.T, profiles *ProfileRepo, userID int64) {
	t.Helper()
	_, err := profiles.Save(context.Background(), model.Profile{
		UserID:       userID,
		FirstName:    "user",
		LastName:     "test",
		Class:        "10А",
		Gender:       enums.GenderFemale,
		SearchGender: enums.SearchGenderAny,
	})
	if err != nil {
		t.Fatalf("save profile %d: %v", userID, err)
	}
}

func adminAction(action enums.AdminActionType) model.AdminAction {
	return model.AdminAction{AdminID: 100, Action: action}
}

func TestPostgresReciprocalLikesCreateOneMatch(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	profiles, moderation, likes := NewProfileRepo(pool), NewModerationRepo(pool), NewLikeRepo(pool)

	for _, id := range []int64{1, 2} {
		saveProfile(t, profiles, id)
		if err := moderation.Approve(ctx, id, adminAction(enums.AdminActionApprove)); err != nil {
			t.Fatalf("approve %d: %v", id, err)
		}
	}

	for round := 0; round < 20; round++ {
		if _, err := pool.Exec(ctx, `TRUNCATE likes, matches`); err != nil {
			t.Fatalf("reset likes: %v", err)
		}

		var wg sync.WaitGroup
		outcomes := make([]enums.LikeOutcome, 2)
		errs := make([]error, 2)
		for i, p := range [][2]int64{{1, 2}, {2, 1}} {
			wg.Add(1)
			go func(i int, from, to int64) {
				defer wg.Done()
				outcomes[i], errs[i] = likes.Submit(ctx, from, to)
			}(i, p[0], p[1])
		}
		wg.Wait()

		created := 0
		for i, o := range outcomes {
			if errs[i] != nil {
				t.Fatalf("round %d: submit: %v", round, errs[i])
			}
			if o == enums.LikeOutcomeMatchCreated {
				created++
			}
		}
		if created != 1 || countRows(t, pool, `SELECT COUNT(*) FROM matches`) != 1 {
			t.Fatalf("round %d: expected exactly one match, outcomes=%v", round, outcomes)
		}
	}

	again, err := likes.Submit(ctx, 1, 2)
	if err != nil || again != enums.LikeOutcomeAlreadyLiked {
		t.Fatalf("repeat like: outcome=%q err=%v", again, err)
	}
}

func TestPostgresSkipMovesProfileToBack(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	profiles, moderation := NewProfileRepo(pool), NewModerationRepo(pool)

	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []int64{1, 2, 3} {
		saveProfile(t, profiles, id)
		if _, err := pool.Exec(ctx, `UPDATE profiles SET registered_at = $2 WHERE user_id = $1`, id, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("set registered_at: %v", err)
		}
	}

	want := []int64{1, 2, 3, 1}
	for step, id := range want {
		head, err := moderation.NextPending(ctx)
		if err != nil {
			t.Fatalf("step %d: next pending: %v", step, err)
		}
		if head.UserID != id {
			t.Fatalf("step %d: expected %d at the head, got %d", step, id, head.UserID)
		}
		if err := moderation.Skip(ctx, head.UserID, adminAction(enums.AdminActionSkip)); err != nil {
			t.Fatalf("step %d: skip: %v", step, err)
		}
	}

	if err := moderation.Approve(ctx, 2, adminAction(enums.AdminActionApprove)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := moderation.Skip(ctx, 2, adminAction(enums.AdminActionSkip)); !errors.Is(err, ErrProfileNotPending) {
		t.Fatalf("skip of an approved profile: expected not pending, got %v", err)
	}
	if got := countRows(t, pool, `SELECT COUNT(*) FROM admin_actions WHERE action = 'skip'`); got != len(want) {
		t.Fatalf("every skip must be audited, got %d", got)
	}
}

func TestPostgresDeleteCascades(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	profiles, moderation, likes, reports := NewProfileRepo(pool), NewModerationRepo(pool), NewLikeRepo(pool), NewReportRepo(pool)

	for _, id := range []int64{1, 2, 3} {
		saveProfile(t, profiles, id)
		if err := moderation.Approve(ctx, id, adminAction(enums.AdminActionApprove)); err != nil {
			t.Fatalf("approve %d: %v", id, err)
		}
	}
	for _, p := range [][2]int64{{1, 2}, {2, 1}, {3, 1}} {
		if _, err := likes.Submit(ctx, p[0], p[1]); err != nil {
			t.Fatalf("like %v: %v", p, err)
		}
	}
	if _, _, err := reports.Create(ctx, 3, 1, "spam"); err != nil {
		t.Fatalf("report: %v", err)
	}

	if _, err := profiles.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := countRows(t, pool, `SELECT COUNT(*) FROM likes WHERE from_user_id = 1 OR to_user_id = 1`); n != 0 {
		t.Fatalf("likes must be removed with the profile, %d left", n)
	}
	if n := countRows(t, pool, `SELECT COUNT(*) FROM matches`); n != 0 {
		t.Fatalf("matches must be removed with the profile, %d left", n)
	}
	if n := countRows(t, pool, `SELECT COUNT(*) FROM reports`); n != 0 {
		t.Fatalf("reports must be removed with the profile, %d left", n)
	}
	if _, err := profiles.Get(ctx, 1); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected profile not found, got %v", err)
	}
}

func TestPostgresSaveKeepsBan(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	profiles, moderation := NewProfileRepo(pool), NewModerationRepo(pool)

	saveProfile(t, profiles, 5)
	if err := moderation.Ban(ctx, 5, adminAction(enums.AdminActionBan)); err != nil {
		t.Fatalf("ban: %v", err)
	}

	_, err := profiles.Save(ctx, model.Profile{
		UserID:       5,
		FirstName:    "again",
		LastName:     "test",
		Class:        "9Б",
		Gender:       enums.GenderMale,
		SearchGender: enums.SearchGenderAny,
	})
	if !errors.Is(err, ErrProfileBanned) {
		t.Fatalf("expected banned, got %v", err)
	}

	got, err := profiles.Get(ctx, 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != enums.ProfileStatusBanned || got.FirstName != "user" {
		t.Fatalf("banned profile must be untouched: %+v", got)
	}
}
